package main

import (
	"os"

	gcctlcmd "github.com/telekom/gcctl/pkg/gcctl/cmd"
)

func run(args []string) int {
	root := gcctlcmd.NewRootCommand(gcctlcmd.DefaultConfig())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:]))
}
