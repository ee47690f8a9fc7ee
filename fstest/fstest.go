// Package fstest provides a fake hadoop install for testing against,
// with local files standing in for the cluster.
package fstest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tbfs/tbfs/fs"
	"github.com/tbfs/tbfs/typedbytes"
)

// Harness is one fake hadoop install.
type Harness struct {
	Root   string // fake cluster namespace
	Home   string // fake HDFS home directory, under Root
	Bin    string // fake hadoop binary
	Jar    string // fake streaming jar (just a marker file)
	logDir string // where the fake binary records what it was asked
}

// fakeHadoop emulates the handful of hadoop subcommands tbfs uses.
// @LOG@ and @HOME@ are filled in per harness. Relative paths are
// resolved against the fake home directory the way the real tools
// resolve them against the HDFS home.
const fakeHadoop = `#!/bin/sh
log="@LOG@"
echo "$@" >> "$log/invocations"

remap() {
    case "$1" in
    /*) echo "$1" ;;
    .) echo "@HOME@" ;;
    *) echo "@HOME@/$1" ;;
    esac
}

cmd="$1"; shift
case "$cmd" in
fs)
    op="$1"; shift
    case "$op" in
    -test)
        flag="$1"
        path=$(remap "$2")
        case "$flag" in
        -e) test -e "$path" ;;
        -d) test -d "$path" ;;
        -z) test -d "$path" || test ! -s "$path" ;;
        *) exit 2 ;;
        esac
        exit $?
        ;;
    -ls)
        path=$(remap "$1")
        if test -d "$path"; then
            set -- "$path"/*
            if test "$1" = "$path/*"; then set --; fi
            echo "Found $# items"
            for f in "$@"; do
                echo "-rw-r--r--   3 tester supergroup          0 2026-08-29 00:00 $f"
            done
        elif test -e "$path"; then
            echo "Found 1 items"
            echo "-rw-r--r--   3 tester supergroup          0 2026-08-29 00:00 $path"
        else
            echo "ls: $path: No such file or directory" >&2
            exit 1
        fi
        ;;
    -rmr)
        path=$(remap "$1")
        test -e "$path" || { echo "rmr: $path: No such file or directory" >&2; exit 1; }
        rm -rf "$path"
        ;;
    -put)
        cp "$1" "$(remap "$2")" || exit 1
        ;;
    -get)
        cp "$(remap "$1")" "$2" || exit 1
        ;;
    *)
        echo "fake hadoop: unknown fs op $op" >&2
        exit 2
        ;;
    esac
    ;;
jar)
    op="$2"
    path=$(remap "$3")
    case "$op" in
    dumptb)
        echo "$path" >> "$log/dumps"
        cat "$path"
        ;;
    loadtb)
        case "$path" in
        *crash*)
            # consume a little input then die, like a loader whose
            # destination turned out to be unwritable
            head -c 16 > /dev/null
            echo "loadtb: cannot write $path" >&2
            exit 1
            ;;
        *)
            cat > "$path"
            ;;
        esac
        ;;
    *)
        echo "fake hadoop: unknown jar op $op" >&2
        exit 2
        ;;
    esac
    ;;
*)
    echo "fake hadoop: unknown command $cmd" >&2
    exit 2
    ;;
esac
`

// New builds a fake hadoop install under t.TempDir.
func New(t *testing.T) *Harness {
	t.Helper()
	dir := t.TempDir()
	h := &Harness{
		Root:   filepath.Join(dir, "cluster"),
		Home:   filepath.Join(dir, "cluster", "user", "tester"),
		Bin:    filepath.Join(dir, "bin", "hadoop"),
		Jar:    filepath.Join(dir, "hadoop-streaming-2.7.3.jar"),
		logDir: filepath.Join(dir, "log"),
	}
	for _, d := range []string{h.Home, filepath.Dir(h.Bin), h.logDir} {
		require.NoError(t, os.MkdirAll(d, 0777))
	}
	require.NoError(t, os.WriteFile(h.Jar, []byte("not a real jar"), 0666))
	script := strings.NewReplacer("@LOG@", h.logDir, "@HOME@", h.Home).Replace(fakeHadoop)
	require.NoError(t, os.WriteFile(h.Bin, []byte(script), 0777))
	return h
}

// Config returns a fresh config pointing at the fake install.
func (h *Harness) Config() *fs.ConfigInfo {
	ci := fs.NewConfig()
	ci.HadoopBinary = h.Bin
	ci.StreamingJar = h.Jar
	return ci
}

// WriteTB writes recs as a typed bytes file at name below Root and
// returns its path.
func (h *Harness) WriteTB(t *testing.T, name string, recs []fs.Record) string {
	t.Helper()
	p := filepath.Join(h.Root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0777))
	var buf bytes.Buffer
	w := typedbytes.NewWriter(&buf)
	for _, rec := range recs {
		require.NoError(t, w.Encode(rec))
	}
	require.NoError(t, w.Flush())
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0666))
	return p
}

// ReadTB reads a typed bytes file back as records.
func (h *Harness) ReadTB(t *testing.T, p string) []fs.Record {
	t.Helper()
	f, err := os.Open(p)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, f.Close())
	}()
	var recs []fs.Record
	r := typedbytes.NewReader(f)
	for {
		rec, err := r.Decode()
		if err != nil {
			break
		}
		recs = append(recs, rec)
	}
	return recs
}

// Invocations returns every command line the fake binary was run
// with, in order.
func (h *Harness) Invocations(t *testing.T) []string {
	t.Helper()
	return h.readLog(t, "invocations")
}

// Dumped returns the paths the fake jar was asked to dump, in order
// of spawning.
func (h *Harness) Dumped(t *testing.T) []string {
	t.Helper()
	return h.readLog(t, "dumps")
}

func (h *Harness) readLog(t *testing.T, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.logDir, name))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
