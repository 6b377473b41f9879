package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// ConfigurationName is the name of the qdirstat configuration file
	// inside the user's home directory.
	ConfigurationName = ".qdirstat.toml"

	// DefaultCacheFileName is the conventional name a directory read job
	// looks for when deciding whether an entry is a drop-in cache file for
	// the directory being scanned (see CacheCodec §4.3).
	DefaultCacheFileName = ".qdirstat.cache.gz"
)

// HomeDirectory is the cached path to the current user's home directory.
var HomeDirectory string

// ConfigurationPath is the path to the user's qdirstat configuration file.
var ConfigurationPath string

// init performs global initialization.
func init() {
	h, err := os.UserHomeDir()
	if err != nil {
		panic(errors.Wrap(err, "unable to query user's home directory"))
	} else if h == "" {
		panic(errors.New("home directory path empty"))
	}
	HomeDirectory = h
	ConfigurationPath = filepath.Join(HomeDirectory, ConfigurationName)
}
