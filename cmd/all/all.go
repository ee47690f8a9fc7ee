// Package all imports all the commands
package all

import (
	// Active commands
	_ "github.com/tbfs/tbfs/cmd"
	_ "github.com/tbfs/tbfs/cmd/cat"
	_ "github.com/tbfs/tbfs/cmd/get"
	_ "github.com/tbfs/tbfs/cmd/load"
	_ "github.com/tbfs/tbfs/cmd/ls"
	_ "github.com/tbfs/tbfs/cmd/put"
	_ "github.com/tbfs/tbfs/cmd/rm"
)
