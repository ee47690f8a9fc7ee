// Errors and error handling

package fs

import (
	"bytes"
	"fmt"
)

// CommandError is returned when an external command run on the
// caller's behalf exits with a nonzero status.
type CommandError struct {
	Cmd    string // the command line that was run
	Code   int    // its exit status
	Stdout []byte // captured standard output, if any
	Stderr []byte // captured standard error, if any
}

// Error interface
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("ran [%s]: exit status %d", e.Cmd, e.Code)
	if out := bytes.TrimSpace(e.Stderr); len(out) > 0 {
		msg += ": " + string(out)
	}
	return msg
}

// Check interface
var _ error = (*CommandError)(nil)

// DirNotFoundError is returned when a path can't be listed because it
// isn't there.
type DirNotFoundError struct {
	Dir string
}

// Error interface
func (e *DirNotFoundError) Error() string {
	return fmt.Sprintf("no such file or directory: %q", e.Dir)
}

// Check interface
var _ error = (*DirNotFoundError)(nil)
