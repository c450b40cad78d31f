package main

import (
	"github.com/robotalks/ledmatrix/pkg/cli/sh"
	"github.com/robotalks/ledmatrix/pkg/config"

	_ "github.com/robotalks/ledmatrix/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupFlags()
}

func main() {
	sh.Main()
}
