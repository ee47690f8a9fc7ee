// Finding the streaming jar

package hadoop

import (
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/tbfs/tbfs/fs"
	"github.com/tbfs/tbfs/lib/env"
)

// Places to look for a hadoop install when the environment doesn't
// say where it is.
var jarSearchRoots = []string{
	"/usr/lib/hadoop",
	"/usr/lib/hadoop-mapreduce",
	"/usr/local/hadoop",
	"/opt/hadoop",
}

// FindStreamingJar locates the cluster's streaming jar. An explicitly
// configured location wins, then $HADOOP_STREAMING_JAR, then a search
// of the hadoop install for hadoop-streaming*.jar.
func FindStreamingJar(ci *fs.ConfigInfo) (string, error) {
	if ci == nil {
		ci = fs.Config
	}
	if ci.StreamingJar != "" {
		jar := env.ShellExpand(ci.StreamingJar)
		if _, err := os.Stat(jar); err != nil {
			return "", errors.Wrap(err, "configured streaming jar not usable")
		}
		return jar, nil
	}
	if jar := os.Getenv("HADOOP_STREAMING_JAR"); jar != "" {
		return jar, nil
	}
	var roots []string
	for _, name := range []string{"HADOOP_HOME", "HADOOP_PREFIX"} {
		if dir := os.Getenv(name); dir != "" {
			roots = append(roots, env.ShellExpand(dir))
		}
	}
	roots = append(roots, jarSearchRoots...)
	for _, root := range roots {
		if jar := searchJar(root); jar != "" {
			fs.Debugf(nil, "found streaming jar %q", jar)
			return jar, nil
		}
	}
	return "", errors.New("hadoop streaming jar not found: set --streaming-jar or HADOOP_STREAMING_JAR")
}

// searchJar walks root looking for the first streaming jar. Sources
// jars live next to the real one and don't count.
func searchJar(root string) (found string) {
	_ = filepath.WalkDir(root, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.Type().IsRegular() &&
			strings.HasPrefix(name, "hadoop-streaming") &&
			strings.HasSuffix(name, ".jar") &&
			!strings.Contains(name, "sources") {
			found = p
			return iofs.SkipAll
		}
		return nil
	})
	return found
}
