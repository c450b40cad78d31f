// Package all registers all shell commands.
package all

import (
	// transfer commands
	_ "github.com/robotalks/ledmatrix/pkg/cli/cmds/transfer"
)
