package main

import (
	"context"
	"os"

	"github.com/grovetools/pybuild/cli"
	"github.com/grovetools/pybuild/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		cli.NewErrorHandler(verbose).Handle(err)
		os.Exit(1)
	}
}
