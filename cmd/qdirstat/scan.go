package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	appcmd "github.com/qdirstat-go/qdirstat/cmd"
	"github.com/qdirstat-go/qdirstat/pkg/duformat"
	"github.com/qdirstat-go/qdirstat/pkg/logging"
)

func scanMain(_ *cobra.Command, arguments []string) error {
	logger := logging.RootLogger

	_, root, err := runScan(arguments[0], logger)
	if err != nil {
		return err
	}

	agg := root.Aggregates()
	fmt.Printf("%s\n", root.Name())
	fmt.Printf("  %s total (%s allocated)\n", duformat.Size(agg.TotalSize), duformat.Size(agg.TotalAllocatedSize))
	fmt.Printf("  %s items, %s files, %s subdirectories\n",
		humanize.Comma(int64(agg.TotalItems)),
		humanize.Comma(int64(agg.TotalFiles)),
		humanize.Comma(int64(agg.TotalSubDirs)),
	)
	if agg.SparseFileCount > 0 {
		fmt.Printf("  %s sparse files\n", humanize.Comma(int64(agg.SparseFileCount)))
	}
	if agg.HardLinkedFileCount > 0 {
		fmt.Printf("  %s hard-linked files\n", humanize.Comma(int64(agg.HardLinkedFileCount)))
	}

	return nil
}

var scanCommand = &cobra.Command{
	Use:   "scan <path>",
	Short: "Scan a directory and print a disk usage summary",
	Args:  appcmd.ExactArguments(1, "a single directory path"),
	Run:   appcmd.Mainify(scanMain),
}

func init() {
	registerScanFlags(scanCommand)
}
