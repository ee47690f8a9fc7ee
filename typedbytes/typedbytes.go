// Package typedbytes reads and writes Hadoop typed bytes streams, the
// wire format the streaming jar's dumptb and loadtb commands speak.
//
// Each value on the wire is one type code byte followed by a big
// endian payload:
//
//	0 bytes    1 byte     2 bool    3 int32    4 int64
//	5 float32  6 float64  7 string  8 vector   9 list    10 map
//
// Lists are terminated by the marker code 255 instead of carrying a
// count. Map keys must decode to comparable Go types.
package typedbytes

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"reflect"

	"github.com/pkg/errors"

	"github.com/tbfs/tbfs/fs"
)

// Type codes from the typed bytes specification.
const (
	typeBytes   = 0
	typeByte    = 1
	typeBool    = 2
	typeInt     = 3
	typeLong    = 4
	typeFloat   = 5
	typeDouble  = 6
	typeString  = 7
	typeVector  = 8
	typeList    = 9
	typeMap     = 10
	typeListEnd = 255
)

// maxPrealloc caps container pre-allocation, so a corrupt length can't
// demand gigabytes before the first element read fails.
const maxPrealloc = 4096

// Reader decodes typed bytes values from a stream.
type Reader struct {
	br *bufio.Reader
}

// NewReader makes a Reader decoding from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Check interface
var _ fs.Decoder = (*Reader)(nil)

// Decode reads the next key/value pair. It returns io.EOF at a clean
// end of stream; a stream that stops part way through a pair is an
// error.
func (r *Reader) Decode() (fs.Record, error) {
	key, err := r.ReadValue()
	if err != nil {
		if err == io.EOF {
			return fs.Record{}, io.EOF
		}
		return fs.Record{}, errors.Wrap(err, "reading key")
	}
	value, err := r.ReadValue()
	if err != nil {
		return fs.Record{}, errors.Wrap(incomplete(err), "reading value")
	}
	return fs.Record{Key: key, Value: value}, nil
}

// ReadValue reads one typed bytes value. io.EOF is only returned when
// the stream ends cleanly before the type code.
func (r *Reader) ReadValue() (interface{}, error) {
	code, err := r.br.ReadByte()
	if err != nil {
		return nil, err
	}
	return r.readPayload(code)
}

func (r *Reader) readPayload(code byte) (interface{}, error) {
	switch code {
	case typeBytes:
		return r.readRaw()
	case typeByte:
		b, err := r.br.ReadByte()
		return b, incomplete(err)
	case typeBool:
		b, err := r.br.ReadByte()
		return b != 0, incomplete(err)
	case typeInt:
		var v int32
		err := binary.Read(r.br, binary.BigEndian, &v)
		return v, incomplete(err)
	case typeLong:
		var v int64
		err := binary.Read(r.br, binary.BigEndian, &v)
		return v, incomplete(err)
	case typeFloat:
		var v uint32
		err := binary.Read(r.br, binary.BigEndian, &v)
		return math.Float32frombits(v), incomplete(err)
	case typeDouble:
		var v uint64
		err := binary.Read(r.br, binary.BigEndian, &v)
		return math.Float64frombits(v), incomplete(err)
	case typeString:
		raw, err := r.readRaw()
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	case typeVector:
		n, err := r.readLength()
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, 0, min(n, maxPrealloc))
		for i := 0; i < n; i++ {
			v, err := r.readElement()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case typeList:
		var out []interface{}
		for {
			code, err := r.br.ReadByte()
			if err != nil {
				return nil, incomplete(err)
			}
			if code == typeListEnd {
				return out, nil
			}
			v, err := r.readPayload(code)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	case typeMap:
		n, err := r.readLength()
		if err != nil {
			return nil, err
		}
		out := make(map[interface{}]interface{}, min(n, maxPrealloc))
		for i := 0; i < n; i++ {
			k, err := r.readElement()
			if err != nil {
				return nil, err
			}
			if !reflect.TypeOf(k).Comparable() {
				return nil, errors.Errorf("map key of type %T is not comparable", k)
			}
			v, err := r.readElement()
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, errors.Errorf("unknown type code %d", code)
	}
}

// readElement reads a value inside a container, where running out of
// stream is never clean.
func (r *Reader) readElement() (interface{}, error) {
	v, err := r.ReadValue()
	return v, incomplete(err)
}

func (r *Reader) readRaw() ([]byte, error) {
	n, err := r.readLength()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, min(n, maxPrealloc))
	for len(buf) < n {
		start := len(buf)
		buf = append(buf, make([]byte, min(n-start, maxPrealloc))...)
		if _, err := io.ReadFull(r.br, buf[start:]); err != nil {
			return nil, incomplete(err)
		}
	}
	return buf, nil
}

func (r *Reader) readLength() (int, error) {
	var n int32
	if err := binary.Read(r.br, binary.BigEndian, &n); err != nil {
		return 0, incomplete(err)
	}
	if n < 0 {
		return 0, errors.Errorf("negative length %d", n)
	}
	return int(n), nil
}

// incomplete maps a clean EOF in the middle of a value to
// ErrUnexpectedEOF.
func incomplete(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Writer encodes typed bytes values to a stream.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter makes a Writer encoding to w. Flush must be called once
// the last value has been written.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Check interface
var _ fs.Encoder = (*Writer)(nil)

// Encode writes one key/value pair.
func (w *Writer) Encode(rec fs.Record) error {
	if err := w.WriteValue(rec.Key); err != nil {
		return errors.Wrap(err, "writing key")
	}
	return errors.Wrap(w.WriteValue(rec.Value), "writing value")
}

// Flush sends anything still buffered to the underlying stream.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// WriteValue writes one value. Go ints are written as int32 when they
// fit and int64 otherwise. Slices go out as lists, which is what the
// streaming tools produce for them too.
func (w *Writer) WriteValue(v interface{}) error {
	switch v := v.(type) {
	case []byte:
		if err := w.writeHeader(typeBytes, len(v)); err != nil {
			return err
		}
		_, err := w.bw.Write(v)
		return err
	case byte:
		if err := w.bw.WriteByte(typeByte); err != nil {
			return err
		}
		return w.bw.WriteByte(v)
	case bool:
		if err := w.bw.WriteByte(typeBool); err != nil {
			return err
		}
		b := byte(0)
		if v {
			b = 1
		}
		return w.bw.WriteByte(b)
	case int32:
		if err := w.bw.WriteByte(typeInt); err != nil {
			return err
		}
		return binary.Write(w.bw, binary.BigEndian, v)
	case int64:
		if err := w.bw.WriteByte(typeLong); err != nil {
			return err
		}
		return binary.Write(w.bw, binary.BigEndian, v)
	case int:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return w.WriteValue(int32(v))
		}
		return w.WriteValue(int64(v))
	case float32:
		if err := w.bw.WriteByte(typeFloat); err != nil {
			return err
		}
		return binary.Write(w.bw, binary.BigEndian, math.Float32bits(v))
	case float64:
		if err := w.bw.WriteByte(typeDouble); err != nil {
			return err
		}
		return binary.Write(w.bw, binary.BigEndian, math.Float64bits(v))
	case string:
		if err := w.writeHeader(typeString, len(v)); err != nil {
			return err
		}
		_, err := w.bw.WriteString(v)
		return err
	case []interface{}:
		if err := w.bw.WriteByte(typeList); err != nil {
			return err
		}
		for _, e := range v {
			if err := w.WriteValue(e); err != nil {
				return err
			}
		}
		return w.bw.WriteByte(typeListEnd)
	case map[interface{}]interface{}:
		if err := w.writeHeader(typeMap, len(v)); err != nil {
			return err
		}
		for k, e := range v {
			if err := w.WriteValue(k); err != nil {
				return err
			}
			if err := w.WriteValue(e); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Errorf("unsupported type %T", v)
	}
}

func (w *Writer) writeHeader(code byte, n int) error {
	if err := w.bw.WriteByte(code); err != nil {
		return err
	}
	return binary.Write(w.bw, binary.BigEndian, int32(n))
}
