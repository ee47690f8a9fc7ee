package get

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
	Use:   "get hdfs:path local:path",
	Short: `Copy a file off the cluster.`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(2, 2, command, args)
		cmd.Run(command, func(ctx context.Context) error {
			return hadoop.NewClient(nil).Get(ctx, args[0], args[1])
		})
	},
}
