package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandError(t *testing.T) {
	err := &CommandError{
		Cmd:    "hadoop fs -rmr /tmp/out",
		Code:   1,
		Stderr: []byte("rmr: cannot remove /tmp/out\n"),
	}
	assert.Equal(t, `ran [hadoop fs -rmr /tmp/out]: exit status 1: rmr: cannot remove /tmp/out`, err.Error())

	err = &CommandError{Cmd: "hadoop fs -test -e /x", Code: 255}
	assert.Equal(t, `ran [hadoop fs -test -e /x]: exit status 255`, err.Error())
}

func TestDirNotFoundError(t *testing.T) {
	err := &DirNotFoundError{Dir: "/data/missing"}
	assert.Equal(t, `no such file or directory: "/data/missing"`, err.Error())
}
