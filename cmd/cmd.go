// Package cmd implements the tbfs command.
//
// It is in a sub package so its internals can be re-used elsewhere.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tbfs/tbfs/fs"
	"github.com/tbfs/tbfs/lib/exitcode"
)

// Globals
var (
	// Flags
	verbose     int
	quiet       bool
	includeLogs bool
)

// Root is the main tbfs command.
var Root = &cobra.Command{
	Use:     "tbfs",
	Short:   "Read and write typed bytes sequence files on HDFS",
	Version: fs.Version,
	Long: `
Tbfs reads and writes key/value sequence files stored on HDFS by
driving the cluster's own command line tools: "hadoop fs" for path
operations and the streaming jar for converting stored files to and
from typed bytes record streams. Reads fan out over many files at
once through a bounded pool of dump processes.
`,
}

func init() {
	flags := Root.PersistentFlags()
	flags.CountVarP(&verbose, "verbose", "v", "Print lots more stuff (repeat for more)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Print as little stuff as possible")
	flags.StringVarP(&fs.Config.HadoopBinary, "hadoop", "", fs.Config.HadoopBinary, "Hadoop binary to run")
	flags.StringVarP(&fs.Config.StreamingJar, "streaming-jar", "", "", "Location of the hadoop streaming jar")
	flags.IntVarP(&fs.Config.JavaMemMB, "java-mem-mb", "", fs.Config.JavaMemMB, "Java heap ceiling in MiB for spawned tools")
	flags.IntVarP(&fs.Config.Readers, "readers", "", fs.Config.Readers, "Number of dump processes to read with at once")
	flags.BoolVarP(&includeLogs, "include-logs", "", false, "Read cluster status files (_*) as data too")
	flags.BoolVarP(&fs.Config.UseJSONLog, "use-json-log", "", false, "Use json log format")
	cobra.OnInitialize(initConfig)
}

// initConfig finishes the global config once the flags are parsed.
func initConfig() {
	switch {
	case verbose >= 2:
		fs.Config.LogLevel = fs.LogLevelDebug
	case verbose == 1:
		fs.Config.LogLevel = fs.LogLevelInfo
	case quiet:
		fs.Config.LogLevel = fs.LogLevelError
	}
	fs.Config.IgnoreLogs = !includeLogs
	if fs.Config.UseJSONLog {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.DebugLevel)
	}
	fs.Debugf("tbfs", "version %q starting with parameters %q", fs.Version, os.Args)
}

// CheckArgs checks there are enough arguments and prints a message if
// not.
func CheckArgs(minArgs, maxArgs int, cmd *cobra.Command, args []string) {
	if len(args) < minArgs {
		_ = cmd.Usage()
		fmt.Fprintf(os.Stderr, "Command %s needs %d arguments minimum: you provided %d non flag arguments: %q\n", cmd.Name(), minArgs, len(args), args)
		os.Exit(exitcode.UsageError)
	} else if len(args) > maxArgs {
		_ = cmd.Usage()
		fmt.Fprintf(os.Stderr, "Command %s needs %d arguments maximum: you provided %d non flag arguments: %q\n", cmd.Name(), maxArgs, len(args), args)
		os.Exit(exitcode.UsageError)
	}
}

// Run runs f, reporting any error through the log and exiting with a
// status describing what went wrong.
func Run(cmd *cobra.Command, f func(ctx context.Context) error) {
	err := f(context.Background())
	if err == nil {
		return
	}
	fs.Errorf(nil, "Failed to %s: %v", cmd.Name(), err)
	var dirErr *fs.DirNotFoundError
	var cmdErr *fs.CommandError
	switch {
	case errors.As(err, &dirErr):
		os.Exit(exitcode.DirNotFound)
	case errors.As(err, &cmdErr):
		os.Exit(exitcode.CommandError)
	default:
		os.Exit(exitcode.UncategorizedError)
	}
}

// Main runs the root command. It only returns on failure to parse the
// command line.
func Main() {
	if err := Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcode.UsageError)
	}
}
