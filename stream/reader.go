// Package stream reads and writes typed bytes sequence files stored
// on the cluster, going through the streaming jar's dumptb and loadtb
// commands.
//
// The interesting half is the Reader: it fans out to many stored
// files through a bounded pool of dump processes and fans their
// record streams back in as one merged sequence, decoded lazily as
// the caller consumes it.
package stream

import (
	"context"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tbfs/tbfs/fs"
	"github.com/tbfs/tbfs/hadoop"
	"github.com/tbfs/tbfs/typedbytes"
)

// newDecoder makes the decoder for one dump stream. Swapped out by
// the tests.
var newDecoder = func(r io.Reader) fs.Decoder {
	return typedbytes.NewReader(r)
}

// Reader merges the records of many stored files into one sequence.
//
// At most Readers dump processes run at once; each file's records
// come out in the order the file stores them, but files are
// interleaved in whatever order their processes produce data. A
// Reader is for a single consumer making a single pass:
//
//	r, err := stream.NewReader(ctx, client, "output/")
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//	for r.Next() {
//		use(r.Record())
//	}
//	return r.Err()
type Reader struct {
	cancel  context.CancelFunc
	records chan fs.Record
	workErr error // workers' verdict, set before records is closed

	cur       fs.Record
	err       error
	done      bool
	closeOnce sync.Once
}

// NewReader enumerates the roots and starts reading every file found
// under them. A root which can't be listed fails the whole call with
// a *fs.DirNotFoundError before any dump process is spawned. Files
// whose basename starts with "_" are cluster status markers, not
// data, and are skipped unless the config says otherwise.
func NewReader(ctx context.Context, client *hadoop.Client, roots ...string) (*Reader, error) {
	ci := client.Config()
	jar, err := hadoop.FindStreamingJar(ci)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, root := range roots {
		entries, err := client.List(ctx, root)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if ci.IgnoreLogs && strings.HasPrefix(path.Base(entry), "_") {
				fs.Debugf(entry, "skipping log file")
				continue
			}
			paths = append(paths, entry)
		}
	}
	fs.Infof(nil, "reading %d files from %d roots", len(paths), len(roots))

	ctx, cancel := context.WithCancel(ctx)
	r := &Reader{
		cancel: cancel,
		// Unbuffered so the caller's pace is the only thing driving
		// the decoders: each worker holds at most the one record it
		// has just decoded.
		records: make(chan fs.Record),
	}

	pending := make(chan string, len(paths))
	for _, p := range paths {
		pending <- p
	}
	close(pending)

	workers := ci.Readers
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return r.run(gCtx, ci, jar, pending)
		})
	}
	go func() {
		r.workErr = g.Wait()
		close(r.records)
	}()
	return r, nil
}

// run drains the pending queue, dumping one file at a time. Together
// the workers keep min(Readers, files remaining) processes going.
func (r *Reader) run(ctx context.Context, ci *fs.ConfigInfo, jar string, pending <-chan string) error {
	for p := range pending {
		if err := r.dump(ctx, ci, jar, p); err != nil {
			return err
		}
	}
	return nil
}

// dump spawns one dump process for p and forwards its records until
// its stream ends.
func (r *Reader) dump(ctx context.Context, ci *fs.ConfigInfo, jar, p string) error {
	cmd, err := hadoop.Start(ctx, hadoop.CommandOpt{Stdout: hadoop.IOPipe, JavaMemMB: ci.JavaMemMB},
		ci.HadoopBinary, "jar", jar, "dumptb", p)
	if err != nil {
		return err
	}
	fs.Debugf(p, "dumping")
	dec := newDecoder(cmd.Stdout())
	for {
		rec, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			cmd.Kill()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrapf(err, "decoding %q", p)
		}
		select {
		case r.records <- rec:
		case <-ctx.Done():
			cmd.Kill()
			return ctx.Err()
		}
	}
	if ctx.Err() != nil {
		cmd.Kill()
		return ctx.Err()
	}
	// The stream is drained, so collect the exit status. A dump
	// process that failed after closing its output still counts as a
	// failure rather than a short file.
	return cmd.CheckedWait()
}

// Next advances to the next record, blocking until one has been
// decoded. It returns false when the sequence ends or breaks; Err
// tells those apart.
func (r *Reader) Next() bool {
	if r.err != nil || r.done {
		return false
	}
	rec, ok := <-r.records
	if !ok {
		r.done = true
		r.err = r.workErr
		return false
	}
	r.cur = rec
	return true
}

// Record returns the record the last call to Next arrived at.
func (r *Reader) Record() fs.Record {
	return r.cur
}

// Err returns the first error hit while reading, or nil if the
// sequence ended cleanly.
func (r *Reader) Err() error {
	return r.err
}

// Close abandons the sequence, killing and reaping any dump processes
// still running so nothing leaks. It is safe to call at any time,
// including after the sequence has finished on its own.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.cancel()
		for range r.records {
		}
		r.done = true
		if r.err == nil && r.workErr != nil && !errors.Is(r.workErr, context.Canceled) {
			r.err = r.workErr
		}
	})
	return nil
}
