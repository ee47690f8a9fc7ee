package put

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tbfs/tbfs/cmd"
	"github.com/tbfs/tbfs/hadoop"
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
}

var commandDefinition = &cobra.Command{
	Use:   "put local:path hdfs:path",
	Short: `Copy a local file onto the cluster.`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(2, 2, command, args)
		cmd.Run(command, func(ctx context.Context) error {
			return hadoop.NewClient(nil).Put(ctx, args[0], args[1])
		})
	},
}
