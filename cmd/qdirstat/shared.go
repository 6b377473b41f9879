package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/qdirstat-go/qdirstat/cmd"
	"github.com/qdirstat-go/qdirstat/pkg/cache"
	"github.com/qdirstat-go/qdirstat/pkg/configuration"
	"github.com/qdirstat-go/qdirstat/pkg/exclude"
	"github.com/qdirstat-go/qdirstat/pkg/filesystem"
	"github.com/qdirstat-go/qdirstat/pkg/logging"
	"github.com/qdirstat-go/qdirstat/pkg/mountpoints"
	"github.com/qdirstat-go/qdirstat/pkg/scan"
	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

// scanFlags holds the persistent flags shared by every subcommand that
// performs or configures a scan.
type scanFlags struct {
	exclude         []string
	crossFilesystem bool
	cacheFileName   string
}

var shared scanFlags

func registerScanFlags(command *cobra.Command) {
	flags := command.PersistentFlags()
	flags.StringArrayVar(&shared.exclude, "exclude", nil, "Glob pattern to exclude from scanning (repeatable)")
	flags.BoolVar(&shared.crossFilesystem, "cross-filesystem", false, "Descend into mount points discovered during a scan")
	flags.StringVar(&shared.cacheFileName, "cache-file", "", "Cache drop-in filename to look for while scanning")
}

// colorEnabled reports whether the current standard output is a terminal
// that should receive ANSI color, the way the teacher's CLI probes before
// emitting colored output.
func colorEnabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// buildConfig merges the on-disk configuration with the command-line flags
// that override it, and constructs the scan.Config and mount table a run
// needs.
func buildConfig(logger *logging.Logger) (*scan.Config, error) {
	loaded, err := configuration.LoadDefaultPath()
	if err != nil {
		return nil, errors.Wrap(err, "unable to load configuration")
	}

	excludeList, err := loaded.CompileExcludeRules()
	if err != nil {
		return nil, errors.Wrap(err, "unable to compile exclude rules")
	}
	for _, pattern := range shared.exclude {
		rule, err := exclude.NewRule(pattern, exclude.SyntaxGlob, exclude.ScopeFullPath)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid --exclude pattern %q", pattern)
		}
		excludeList.Add(rule)
	}

	filterList, err := loaded.CompileFilterRules()
	if err != nil {
		return nil, errors.Wrap(err, "unable to compile filter rules")
	}

	crossFilesystem := loaded.CrossFilesystem || shared.crossFilesystem

	cacheFileName := loaded.CacheFileName
	if shared.cacheFileName != "" {
		cacheFileName = shared.cacheFileName
	}

	mounts := mountpoints.NewTable(logger)
	if err := mounts.Populate(); err != nil {
		cmd.Warning("unable to read mount table: " + err.Error())
	}

	return &scan.Config{
		Mounts:          mounts,
		CrossFilesystem: crossFilesystem,
		ExcludeRules:    excludeList,
		Filters:         filterList,
		CacheFileName:   cacheFileName,
	}, nil
}

// runScan walks path to completion, via a plain tick loop since there is no
// GUI event loop here, and returns the populated tree along with the node
// for path itself.
func runScan(path string, logger *logging.Logger) (*tree.Tree, *tree.Node, error) {
	cfg, err := buildConfig(logger)
	if err != nil {
		return nil, nil, err
	}

	raw, err := filesystem.Lstat(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to stat %s", path)
	}

	tr := tree.NewTree(logger)
	root := tree.NewDir(path, raw)
	if err := tr.InsertChild(tr.Root(), root); err != nil {
		return nil, nil, errors.Wrap(err, "unable to insert scan root")
	}

	queue := scan.NewQueue(tr, logger)
	opener := cache.Opener(tr, cfg.ExcludeRules, logger)
	queue.Enqueue(scan.NewLocalDirReadJob(queue, tr, root, cfg, opener, logger))

	for !queue.Idle() {
		ran, err := queue.Tick()
		if err != nil {
			logger.Warnf("scan: %v", err)
		}
		if !ran {
			break
		}
	}

	return tr, root, nil
}
