package ls

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbfs/tbfs/cmd"
	"github.com/tbfs/tbfs/hadoop"
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
}

var commandDefinition = &cobra.Command{
	Use:   "ls hdfs:path",
	Short: `List the contents of a path.`,
	Long: `
Lists the files under the path, one absolute path per line. Listing a
file prints the file itself.
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(1, 1, command, args)
		cmd.Run(command, func(ctx context.Context) error {
			client := hadoop.NewClient(nil)
			names, err := client.List(ctx, args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		})
	},
}
