package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	appcmd "github.com/qdirstat-go/qdirstat/cmd"
	"github.com/qdirstat-go/qdirstat/pkg/cache"
	"github.com/qdirstat-go/qdirstat/pkg/exclude"
	"github.com/qdirstat-go/qdirstat/pkg/logging"
	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

var cacheCommand = &cobra.Command{
	Use:   "cache",
	Short: "Write or read a qdirstat cache file",
}

func cacheWriteMain(_ *cobra.Command, arguments []string) error {
	logger := logging.RootLogger

	_, root, err := runScan(arguments[0], logger)
	if err != nil {
		return err
	}

	if err := cache.WriteTree(arguments[1], []*tree.Node{root}, logger); err != nil {
		return errors.Wrap(err, "unable to write cache file")
	}

	fmt.Println("wrote", arguments[1])
	return nil
}

var cacheWriteCommand = &cobra.Command{
	Use:   "write <path> <out.cache.gz>",
	Short: "Scan path and serialize the result to a cache file",
	Args:  appcmd.ExactArguments(2, "a directory path and an output file"),
	Run:   appcmd.Mainify(cacheWriteMain),
}

func cacheReadMain(_ *cobra.Command, arguments []string) error {
	logger := logging.RootLogger

	tr := tree.NewTree(logger)
	reader, err := cache.NewReader(arguments[0], tr, tr.Root(), exclude.NewList(), logger)
	if err != nil {
		return errors.Wrap(err, "unable to open cache file")
	}
	defer reader.Close()

	for {
		done, err := reader.DecodeChunk()
		if err != nil {
			return errors.Wrap(err, "unable to decode cache file")
		}
		if done {
			break
		}
	}

	toplevel := tr.FirstTopLevel()
	if toplevel == nil {
		return errors.New("cache file contained no entries")
	}
	printTree(toplevel, 0)
	return nil
}

var cacheReadCommand = &cobra.Command{
	Use:   "read <in.cache.gz>",
	Short: "Decode a cache file and print its tree",
	Args:  appcmd.ExactArguments(1, "a cache file path"),
	Run:   appcmd.Mainify(cacheReadMain),
}

func init() {
	registerScanFlags(cacheWriteCommand)
	cacheCommand.AddCommand(cacheWriteCommand, cacheReadCommand)
}
