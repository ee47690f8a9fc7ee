// Package hadoop drives a cluster's command line tools - "hadoop fs"
// for path operations and "hadoop jar" for the streaming jar.
//
// Everything goes through subprocesses on purpose: the cluster's own
// tools know about its configuration, so tbfs doesn't have to.
package hadoop

import (
	"context"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/tbfs/tbfs/fs"
)

// Client is one session against a cluster's command line tools.
//
// The HDFS home directory used to resolve relative paths is looked up
// once per Client and cached on it, so callers wanting a fresh look
// make a fresh Client.
type Client struct {
	ci *fs.ConfigInfo

	homeMu sync.Mutex
	home   string
}

// NewClient creates a Client using ci, or the global config when ci
// is nil.
func NewClient(ci *fs.ConfigInfo) *Client {
	if ci == nil {
		ci = fs.Config
	}
	return &Client{ci: ci}
}

// Config returns the config the Client was made with.
func (c *Client) Config() *fs.ConfigInfo {
	return c.ci
}

func (c *Client) fsArgs(args ...string) []string {
	return append([]string{c.ci.HadoopBinary, "fs"}, args...)
}

// test runs "hadoop fs -test <flag> <path>" and reports a zero exit
// status. The exit status is the answer, so there is nothing to
// capture.
func (c *Client) test(ctx context.Context, flag, p string) bool {
	cmd, err := Start(ctx, CommandOpt{Stdout: IODiscard, Stderr: IODiscard}, c.fsArgs("-test", flag, p)...)
	if err != nil {
		fs.Debugf(p, "fs -test %s: %v", flag, err)
		return false
	}
	_, _, code, err := cmd.Wait()
	return err == nil && code == 0
}

// Exists checks whether the path exists. The path must not contain
// wildcards.
func (c *Client) Exists(ctx context.Context, p string) bool {
	return c.test(ctx, "-e", p)
}

// IsDir checks whether the path is a directory. The path must not
// contain wildcards.
func (c *Client) IsDir(ctx context.Context, p string) bool {
	return c.test(ctx, "-d", p)
}

// IsEmpty checks whether the path has zero length. Directories count
// as empty. The path must not contain wildcards.
func (c *Client) IsEmpty(ctx context.Context, p string) bool {
	return c.test(ctx, "-z", p)
}

// foundRe matches the summary line "hadoop fs -ls" prints ahead of
// its entries.
var foundRe = regexp.MustCompile(`^Found \d+ items$`)

// List lists the path, which may contain wildcards, returning the
// paths found. A path which can't be listed is reported as a
// *fs.DirNotFoundError.
func (c *Client) List(ctx context.Context, p string) ([]string, error) {
	cmd, err := Start(ctx, CommandOpt{}, c.fsArgs("-ls", p)...)
	if err != nil {
		return nil, err
	}
	stdout, _, code, err := cmd.Wait()
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return nil, &fs.DirNotFoundError{Dir: p}
	}
	var paths []string
	for _, line := range strings.Split(string(stdout), "\n") {
		if foundRe.MatchString(line) {
			continue
		}
		// the path is the last field of each listing line
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		paths = append(paths, fields[len(fields)-1])
	}
	return paths, nil
}

// Remove removes the path recursively. The path may contain
// wildcards.
func (c *Client) Remove(ctx context.Context, p string) error {
	return Run(ctx, c.fsArgs("-rmr", p)...)
}

// Put copies a local file to the cluster.
func (c *Client) Put(ctx context.Context, local, remote string) error {
	return Run(ctx, c.fsArgs("-put", local, remote)...)
}

// Get copies a file from the cluster to the local filesystem.
func (c *Client) Get(ctx context.Context, remote, local string) error {
	return Run(ctx, c.fsArgs("-get", remote, local)...)
}

// Abs returns the absolute, cleaned form of p, without a trailing
// slash and without redundant slashes. Relative paths are resolved
// against the user's HDFS home directory, which is discovered on the
// first call and cached on the Client.
func (c *Client) Abs(ctx context.Context, p string) (string, error) {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p), nil
	}
	home, err := c.homeDir(ctx)
	if err != nil {
		return "", err
	}
	return path.Clean(path.Join(home, p)), nil
}

// homeDir finds the user's home directory on the cluster. There is no
// direct query for it, but listing "." gives back absolute paths to
// its contents, so the home directory is their parent.
func (c *Client) homeDir(ctx context.Context) (string, error) {
	c.homeMu.Lock()
	defer c.homeMu.Unlock()
	if c.home != "" {
		return c.home, nil
	}
	entries, err := c.List(ctx, ".")
	if err != nil {
		if !c.Exists(ctx, ".") {
			return "", errors.New("home directory doesn't exist")
		}
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("can't resolve home directory: it has no entries to go by")
	}
	c.home = path.Dir(entries[0])
	fs.Debugf(nil, "resolved home directory as %q", c.home)
	return c.home, nil
}
