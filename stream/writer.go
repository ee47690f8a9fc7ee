package stream

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/tbfs/tbfs/fs"
	"github.com/tbfs/tbfs/hadoop"
	"github.com/tbfs/tbfs/typedbytes"
)

// newEncoder makes the encoder feeding one loader. Swapped out by the
// tests.
var newEncoder = func(w io.Writer) fs.Encoder {
	return typedbytes.NewWriter(w)
}

// Writer loads record sequences into stored files through the
// streaming jar, one loader process per destination.
type Writer struct {
	ci  *fs.ConfigInfo
	jar string
}

// NewWriter creates a Writer using ci, or the global config when ci
// is nil. The streaming jar is located once here rather than per
// write.
func NewWriter(ci *fs.ConfigInfo) (*Writer, error) {
	if ci == nil {
		ci = fs.Config
	}
	jar, err := hadoop.FindStreamingJar(ci)
	if err != nil {
		return nil, err
	}
	return &Writer{ci: ci, jar: jar}, nil
}

// Write streams records from src into the stored file at dest until
// src is exhausted. Records go to the loader one at a time, never
// gathered up front, so src may be arbitrarily long.
//
// Before each record the loader is polled: feeding a dead process's
// pipe would either block forever or silently drop data, so an early
// exit fails the write right away with a *fs.CommandError carrying
// whatever the loader managed to say.
func (w *Writer) Write(ctx context.Context, dest string, src fs.Decoder) error {
	cmd, err := hadoop.Start(ctx, hadoop.CommandOpt{Stdin: hadoop.IOPipe, JavaMemMB: w.ci.JavaMemMB},
		w.ci.HadoopBinary, "jar", w.jar, "loadtb", dest)
	if err != nil {
		return err
	}
	fs.Debugf(dest, "loading")
	enc := newEncoder(cmd.Stdin())
	n := 0
	for {
		rec, err := src.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			cmd.Kill()
			return err
		}
		if exited, _ := cmd.Poll(); exited {
			stdout, stderr, code, _ := cmd.Wait()
			return errors.Wrapf(
				&fs.CommandError{Cmd: cmd.String(), Code: code, Stdout: stdout, Stderr: stderr},
				"loader quit after %d records were sent", n)
		}
		if err := enc.Encode(rec); err != nil {
			cmd.Kill()
			return errors.Wrapf(err, "sending record %d to %q", n, dest)
		}
		n++
	}
	if err := enc.Flush(); err != nil {
		cmd.Kill()
		return errors.Wrapf(err, "flushing records to %q", dest)
	}
	// Closing the pipe is what tells the loader the sequence is over.
	if err := cmd.Stdin().Close(); err != nil {
		cmd.Kill()
		return err
	}
	fs.Infof(dest, "loaded %d records", n)
	return cmd.CheckedWait()
}

// Records adapts a slice of records into the fs.Decoder a Writer
// consumes.
func Records(recs []fs.Record) fs.Decoder {
	return &sliceDecoder{recs: recs}
}

type sliceDecoder struct {
	recs []fs.Record
}

func (d *sliceDecoder) Decode() (fs.Record, error) {
	if len(d.recs) == 0 {
		return fs.Record{}, io.EOF
	}
	rec := d.recs[0]
	d.recs = d.recs[1:]
	return rec, nil
}
