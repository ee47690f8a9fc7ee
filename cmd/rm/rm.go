package rm

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
	Use:   "rm hdfs:path",
	Short: `Remove a path and everything under it.`,
	Long: `
Removes the path recursively. Removing a path that does not exist is
an error.
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(1, 1, command, args)
		cmd.Run(command, func(ctx context.Context) error {
			return hadoop.NewClient(nil).Remove(ctx, args[0])
		})
	},
}
