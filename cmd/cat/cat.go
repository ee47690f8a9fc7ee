package cat

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbfs/tbfs/cmd"
	"github.com/tbfs/tbfs/hadoop"
	"github.com/tbfs/tbfs/stream"
)

var (
	count = false
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	flags := commandDefinition.Flags()
	flags.BoolVarP(&count, "count", "c", false, "Only print the number of records")
}

var commandDefinition = &cobra.Command{
	Use:   "cat hdfs:path [hdfs:path]...",
	Short: `Print the records stored under the paths.`,
	Long: `
Dumps every sequence file under the paths and prints the decoded
records, one "key<TAB>value" line each. Files are read through several
dump processes at once (see --readers) so records from different files
interleave, though each file's own records stay in order.

Status files whose names start with "_" are skipped unless
--include-logs is given.
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(1, 1e9, command, args)
		cmd.Run(command, func(ctx context.Context) error {
			client := hadoop.NewClient(nil)
			r, err := stream.NewReader(ctx, client, args...)
			if err != nil {
				return err
			}
			defer r.Close()
			n := 0
			for r.Next() {
				n++
				if !count {
					rec := r.Record()
					fmt.Printf("%v\t%v\n", rec.Key, rec.Value)
				}
			}
			if err := r.Err(); err != nil {
				return err
			}
			if count {
				fmt.Println(n)
			}
			return nil
		})
	},
}
