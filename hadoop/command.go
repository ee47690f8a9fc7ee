// Spawning and supervising the cluster's external tools

package hadoop

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"

	"github.com/tbfs/tbfs/fs"
)

// IOMode says where one of a spawned command's standard streams is
// connected.
type IOMode byte

// IO modes for CommandOpt. The zero value captures output streams and
// gives the command no input.
const (
	IOCapture IOMode = iota // collect into memory, returned by Wait (stdout/stderr only)
	IOPipe                  // connect a pipe for the caller to use
	IODiscard               // connect to the null device
	IOInherit               // share the parent's stream
)

// CommandOpt configures one spawned command.
type CommandOpt struct {
	Stdin     IOMode // IOCapture here behaves like IODiscard
	Stdout    IOMode
	Stderr    IOMode
	JavaMemMB int // java heap ceiling, 0 to use the configured default
}

// Command is a running external command.
//
// The pipes handed out by Stdin and Stdout belong to the Command and
// are released by Wait or Kill.
type Command struct {
	args   []string
	cmd    *exec.Cmd
	stdin  *os.File // write end of the input pipe when Stdin is IOPipe
	stdout *os.File // read end of the output pipe when Stdout is IOPipe
	outBuf bytes.Buffer
	errBuf bytes.Buffer

	done    chan struct{} // closed once the process has been reaped
	waitErr error         // from exec.Cmd.Wait, set before done is closed
}

// Start spawns args as an external command. The command runs with the
// parent's environment plus HADOOP_OPTS set to the java memory
// ceiling, which is how the hadoop launcher scripts pass -Xmx down to
// the tools they start.
func Start(ctx context.Context, opt CommandOpt, args ...string) (*Command, error) {
	if len(args) == 0 {
		return nil, errors.New("no command given")
	}
	c := &Command{
		args: args,
		done: make(chan struct{}),
	}
	c.cmd = exec.CommandContext(ctx, args[0], args[1:]...)
	memMB := opt.JavaMemMB
	if memMB <= 0 {
		memMB = fs.Config.JavaMemMB
	}
	c.cmd.Env = append(os.Environ(), fmt.Sprintf("HADOOP_OPTS=-Xmx%dm", memMB))

	// Pipes are made with os.Pipe rather than exec's StdinPipe and
	// StdoutPipe so that reaping the process in the background can't
	// snatch a pipe out from under a caller still using it. The
	// child's ends are closed once the process holds them.
	var childEnds []*os.File
	switch opt.Stdin {
	case IOPipe:
		r, w, err := os.Pipe()
		if err != nil {
			return nil, err
		}
		c.cmd.Stdin = r
		c.stdin = w
		childEnds = append(childEnds, r)
	case IOInherit:
		c.cmd.Stdin = os.Stdin
	}
	switch opt.Stdout {
	case IOCapture:
		c.cmd.Stdout = &c.outBuf
	case IOPipe:
		r, w, err := os.Pipe()
		if err != nil {
			c.closePipes()
			for _, f := range childEnds {
				_ = f.Close()
			}
			return nil, err
		}
		c.cmd.Stdout = w
		c.stdout = r
		childEnds = append(childEnds, w)
	case IOInherit:
		c.cmd.Stdout = os.Stdout
	}
	switch opt.Stderr {
	case IOCapture:
		c.cmd.Stderr = &c.errBuf
	case IOInherit:
		c.cmd.Stderr = os.Stderr
	}

	fs.Debugf(nil, "starting [%s]", c)
	err := c.cmd.Start()
	for _, f := range childEnds {
		_ = f.Close()
	}
	if err != nil {
		c.closePipes()
		return nil, errors.Wrapf(err, "failed to start [%s]", c)
	}
	go func() {
		c.waitErr = c.cmd.Wait()
		close(c.done)
	}()
	return c, nil
}

// Run starts args with captured output and waits for a clean exit.
func Run(ctx context.Context, args ...string) error {
	c, err := Start(ctx, CommandOpt{}, args...)
	if err != nil {
		return err
	}
	return c.CheckedWait()
}

// String returns the command shell quoted for display.
func (c *Command) String() string {
	return shellquote.Join(c.args...)
}

// Stdin returns the write end of the command's input pipe. Only valid
// when the command was started with Stdin: IOPipe.
func (c *Command) Stdin() io.WriteCloser {
	return c.stdin
}

// Stdout returns the read end of the command's output pipe. Only
// valid when the command was started with Stdout: IOPipe.
func (c *Command) Stdout() io.ReadCloser {
	return c.stdout
}

// Poll reports whether the command has exited yet, without blocking,
// and its exit status if it has.
func (c *Command) Poll() (exited bool, code int) {
	select {
	case <-c.done:
		return true, c.cmd.ProcessState.ExitCode()
	default:
		return false, 0
	}
}

// Wait blocks until the command exits, releases its pipes and returns
// whatever output was captured together with the exit status. err is
// only set when the command couldn't be waited for, not when it exits
// nonzero.
func (c *Command) Wait() (stdout, stderr []byte, code int, err error) {
	<-c.done
	c.closePipes()
	if c.waitErr != nil {
		if _, ok := c.waitErr.(*exec.ExitError); !ok {
			return nil, nil, -1, c.waitErr
		}
	}
	return c.outBuf.Bytes(), c.errBuf.Bytes(), c.cmd.ProcessState.ExitCode(), nil
}

// CheckedWait waits for the command to exit and turns a nonzero exit
// status into a *fs.CommandError carrying the command line and the
// captured output.
func (c *Command) CheckedWait() error {
	stdout, stderr, code, err := c.Wait()
	if err != nil {
		return err
	}
	if code != 0 {
		return &fs.CommandError{Cmd: c.String(), Code: code, Stdout: stdout, Stderr: stderr}
	}
	return nil
}

// Kill terminates the command and reaps it, releasing its pipes. Safe
// to call on a command which has already exited.
func (c *Command) Kill() {
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	c.closePipes()
	<-c.done
}

func (c *Command) closePipes() {
	if c.stdin != nil {
		_ = c.stdin.Close()
	}
	if c.stdout != nil {
		_ = c.stdout.Close()
	}
}
