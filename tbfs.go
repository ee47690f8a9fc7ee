// Read and write typed bytes sequence files on HDFS
package main

import (
	"github.com/tbfs/tbfs/cmd"
	_ "github.com/tbfs/tbfs/cmd/all" // import all commands
)

func main() {
	cmd.Main()
}
