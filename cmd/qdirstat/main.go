package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qdirstat-go/qdirstat/pkg/appinfo"
)

func rootMain(command *cobra.Command, _ []string) {
	if rootConfiguration.version {
		fmt.Println(appinfo.Version)
		return
	}
	command.Help()
}

var rootCommand = &cobra.Command{
	Use:   "qdirstat",
	Short: "qdirstat scans a directory tree and reports where its disk space went.",
	Run:   rootMain,
}

var rootConfiguration struct {
	version bool
}

func init() {
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.version, "version", "V", false, "Show version information")

	cobra.EnableCommandSorting = false

	rootCommand.AddCommand(
		scanCommand,
		cacheCommand,
		treemapCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
