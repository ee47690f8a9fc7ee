package stream

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbfs/tbfs/fs"
	"github.com/tbfs/tbfs/fstest"
)

func TestWriterRoundTrip(t *testing.T) {
	h := fstest.New(t)
	w, err := NewWriter(h.Config())
	require.NoError(t, err)

	recs := []fs.Record{
		{Key: "one", Value: int32(1)},
		{Key: "two", Value: int32(2)},
		{Key: []byte{0xDE, 0xAD}, Value: "beef"},
	}
	dest := h.Root + "/loaded"
	require.NoError(t, w.Write(context.Background(), dest, Records(recs)))

	assert.Equal(t, recs, h.ReadTB(t, dest))
}

func TestWriterEmptySequence(t *testing.T) {
	h := fstest.New(t)
	w, err := NewWriter(h.Config())
	require.NoError(t, err)

	dest := h.Root + "/empty"
	require.NoError(t, w.Write(context.Background(), dest, Records(nil)))
	assert.Empty(t, h.ReadTB(t, dest))
}

// slowDecoder paces out big records so a loader death is seen by the
// poll before the sequence runs out.
type slowDecoder struct {
	recs  []fs.Record
	delay time.Duration
	n     int
}

func (d *slowDecoder) Decode() (fs.Record, error) {
	if d.n > 0 {
		time.Sleep(d.delay)
	}
	if d.n >= len(d.recs) {
		return fs.Record{}, errors.New("ran past the end")
	}
	rec := d.recs[d.n]
	d.n++
	return rec, nil
}

func TestWriterFailsFastOnDeadLoader(t *testing.T) {
	h := fstest.New(t)
	w, err := NewWriter(h.Config())
	require.NoError(t, err)

	// records big enough to push through the encoder's buffer, so
	// the crashing loader sees input and exits while the sequence is
	// still going
	big := make([]byte, 8*1024)
	src := &slowDecoder{
		recs: []fs.Record{
			{Key: "r0", Value: big},
			{Key: "r1", Value: big},
			{Key: "r2", Value: big},
		},
		delay: 300 * time.Millisecond,
	}

	done := make(chan error, 1)
	go func() {
		done <- w.Write(context.Background(), h.Root+"/crash", src)
	}()
	select {
	case err = <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("write against a dead loader hung")
	}
	require.Error(t, err)
	var cmdErr *fs.CommandError
	require.True(t, errors.As(err, &cmdErr), "got %v", err)
	assert.Equal(t, 1, cmdErr.Code)
	assert.Contains(t, string(cmdErr.Stderr), "cannot write")
	assert.Less(t, src.n, len(src.recs), "the write should stop mid sequence")
}

func TestWriterPropagatesLoaderFailure(t *testing.T) {
	h := fstest.New(t)
	w, err := NewWriter(h.Config())
	require.NoError(t, err)

	// one small record stays in the pipe buffer until the final
	// close, so the failure only shows up in the exit status
	err = w.Write(context.Background(), h.Root+"/crash", Records([]fs.Record{{Key: "k", Value: "v"}}))
	require.Error(t, err)
	var cmdErr *fs.CommandError
	require.True(t, errors.As(err, &cmdErr), "got %v", err)
	assert.Equal(t, 1, cmdErr.Code)
}

func TestWriterSourceErrorAborts(t *testing.T) {
	h := fstest.New(t)
	w, err := NewWriter(h.Config())
	require.NoError(t, err)

	src := &slowDecoder{recs: []fs.Record{{Key: "only", Value: int32(1)}}}
	err = w.Write(context.Background(), h.Root+"/dest", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ran past the end")
}
