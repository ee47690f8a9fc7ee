package hadoop

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbfs/tbfs/fs"
)

func TestCommandWaitCapturesOutput(t *testing.T) {
	cmd, err := Start(context.Background(), CommandOpt{}, "sh", "-c", "echo out; echo err >&2; exit 3")
	require.NoError(t, err)
	stdout, stderr, code, err := cmd.Wait()
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(stdout))
	assert.Equal(t, "err\n", string(stderr))
	assert.Equal(t, 3, code)
}

func TestCommandCheckedWait(t *testing.T) {
	cmd, err := Start(context.Background(), CommandOpt{}, "sh", "-c", "echo boom >&2; exit 1")
	require.NoError(t, err)
	err = cmd.CheckedWait()
	require.Error(t, err)
	var cmdErr *fs.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Contains(t, cmdErr.Cmd, "sh -c")
	assert.Equal(t, 1, cmdErr.Code)
	assert.Equal(t, "boom\n", string(cmdErr.Stderr))

	cmd, err = Start(context.Background(), CommandOpt{}, "true")
	require.NoError(t, err)
	assert.NoError(t, cmd.CheckedWait())
}

func TestCommandPoll(t *testing.T) {
	cmd, err := Start(context.Background(), CommandOpt{}, "sleep", "60")
	require.NoError(t, err)
	exited, _ := cmd.Poll()
	assert.False(t, exited)
	cmd.Kill()
	exited, _ = cmd.Poll()
	assert.True(t, exited)

	cmd, err = Start(context.Background(), CommandOpt{}, "sh", "-c", "exit 7")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		exited, code := cmd.Poll()
		return exited && code == 7
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCommandEnvOverride(t *testing.T) {
	cmd, err := Start(context.Background(), CommandOpt{JavaMemMB: 321}, "sh", "-c", `printf %s "$HADOOP_OPTS"`)
	require.NoError(t, err)
	stdout, _, code, err := cmd.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "-Xmx321m", string(stdout))
}

func TestCommandStdinPipe(t *testing.T) {
	cmd, err := Start(context.Background(), CommandOpt{Stdin: IOPipe}, "cat")
	require.NoError(t, err)
	_, err = cmd.Stdin().Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, cmd.Stdin().Close())
	stdout, _, code, err := cmd.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello", string(stdout))
}

func TestCommandStdoutPipe(t *testing.T) {
	cmd, err := Start(context.Background(), CommandOpt{Stdout: IOPipe}, "sh", "-c", "echo streamed")
	require.NoError(t, err)
	out, err := io.ReadAll(cmd.Stdout())
	require.NoError(t, err)
	assert.Equal(t, "streamed\n", string(out))
	assert.NoError(t, cmd.CheckedWait())
}

func TestCommandKillReturnsPromptly(t *testing.T) {
	cmd, err := Start(context.Background(), CommandOpt{Stdout: IOPipe}, "sleep", "60")
	require.NoError(t, err)
	start := time.Now()
	cmd.Kill()
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCommandStartError(t *testing.T) {
	_, err := Start(context.Background(), CommandOpt{}, "/definitely/not/a/binary")
	require.Error(t, err)
	_, err = Start(context.Background(), CommandOpt{})
	require.Error(t, err)
}
