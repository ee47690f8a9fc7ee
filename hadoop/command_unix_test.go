//go:build unix

package hadoop

import (
	"context"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

// Starves the process of file descriptors so that making the stdout
// pipe fails after the stdin pipe already exists. Start has to release
// both ends of the stdin pipe on that path or the descriptors leak.
func TestCommandStartPipeFailureReleasesPipes(t *testing.T) {
	var lim syscall.Rlimit
	require.NoError(t, syscall.Getrlimit(syscall.RLIMIT_NOFILE, &lim))
	low := lim
	low.Cur = 64
	require.NoError(t, syscall.Setrlimit(syscall.RLIMIT_NOFILE, &low))
	defer func() {
		require.NoError(t, syscall.Setrlimit(syscall.RLIMIT_NOFILE, &lim))
	}()

	// use up every descriptor, then free exactly two so the stdin pipe
	// fits but the stdout pipe doesn't
	var hoard []*os.File
	defer func() {
		for _, f := range hoard {
			_ = f.Close()
		}
	}()
	for {
		r, w, err := os.Pipe()
		if err != nil {
			break
		}
		hoard = append(hoard, r, w)
	}
	for {
		f, err := os.Open(os.DevNull)
		if err != nil {
			break
		}
		hoard = append(hoard, f)
	}
	require.GreaterOrEqual(t, len(hoard), 2)
	for _, f := range hoard[len(hoard)-2:] {
		require.NoError(t, f.Close())
	}
	hoard = hoard[:len(hoard)-2]

	_, err := Start(context.Background(), CommandOpt{Stdin: IOPipe, Stdout: IOPipe}, "sh", "-c", "true")
	require.Error(t, err)

	// both slots the stdin pipe took must be free again
	r, w, err := os.Pipe()
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, w.Close())
}
