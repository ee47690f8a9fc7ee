package load

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/tbfs/tbfs/cmd"
	"github.com/tbfs/tbfs/stream"
	"github.com/tbfs/tbfs/typedbytes"
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
}

var commandDefinition = &cobra.Command{
	Use:   "load hdfs:path",
	Short: `Store typed bytes records from stdin as a sequence file.`,
	Long: `
Reads a typed bytes record stream from standard input and stores it
under the path as a sequence file, feeding the records through the
streaming jar's loader. The destination must not already exist.
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(1, 1, command, args)
		cmd.Run(command, func(ctx context.Context) error {
			w, err := stream.NewWriter(nil)
			if err != nil {
				return err
			}
			src := typedbytes.NewReader(os.Stdin)
			return w.Write(ctx, args[0], src)
		})
	},
}
