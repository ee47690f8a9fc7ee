// Package fs holds the core types shared between the tbfs packages.
package fs

import "io"

// Version of tbfs
const Version = "v1.0.0"

// Record is a single key/value pair read from or written to a stored
// sequence file. The key and value are opaque to everything outside
// the codec which produced them.
type Record struct {
	Key   interface{}
	Value interface{}
}

// Decoder produces records from a byte stream.
//
// Decode returns io.EOF once the stream is cleanly exhausted; any
// other error means the stream is broken.
type Decoder interface {
	Decode() (Record, error)
}

// Encoder writes records to a byte stream. Flush must be called
// before the underlying stream is closed.
type Encoder interface {
	Encode(Record) error
	Flush() error
}

// CheckClose is a utility function used to check the return from
// Close in a defer statement.
func CheckClose(c io.Closer, err *error) {
	cerr := c.Close()
	if *err == nil {
		*err = cerr
	}
}
