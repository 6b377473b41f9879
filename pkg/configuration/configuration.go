// Package configuration loads and saves the user's qdirstat preferences: a
// single TOML file resolved from pkg/filesystem.ConfigurationPath, holding
// exclude/filter rule patterns and the scan and treemap options a CLI
// session needs before it can build a scan.Config or a treemap.Options.
package configuration

import (
	"os"

	"github.com/pkg/errors"

	"github.com/qdirstat-go/qdirstat/pkg/encoding"
	"github.com/qdirstat-go/qdirstat/pkg/exclude"
	"github.com/qdirstat-go/qdirstat/pkg/filesystem"
	"github.com/qdirstat-go/qdirstat/pkg/logging"
)

// RulePattern is the on-disk representation of one exclude.Rule: a pattern
// plus its syntax and scope, spelled out as lowercase words in the config
// file rather than exclude.Syntax/exclude.Scope's numeric values.
type RulePattern struct {
	Pattern string `toml:"pattern"`
	// Syntax is "glob" (default) or "regexp".
	Syntax string `toml:"syntax,omitempty"`
	// Scope is "full_path" (default) or "base_name".
	Scope string `toml:"scope,omitempty"`
}

// compile resolves p into an exclude.Rule.
func (p RulePattern) compile() (*exclude.Rule, error) {
	syntax := exclude.SyntaxGlob
	if p.Syntax == "regexp" {
		syntax = exclude.SyntaxRegexp
	}
	scope := exclude.ScopeFullPath
	if p.Scope == "base_name" {
		scope = exclude.ScopeBaseName
	}
	return exclude.NewRule(p.Pattern, syntax, scope)
}

// Configuration is the full set of user preferences persisted to
// ~/.qdirstat.toml.
type Configuration struct {
	// ExcludeRules lists directories to skip entirely (read state
	// OnRequestOnly), matched against either the full path or basename.
	ExcludeRules []RulePattern `toml:"exclude_rules,omitempty"`
	// FilterRules lists entries to route to their parent's Attic instead of
	// their normal place in the tree.
	FilterRules []RulePattern `toml:"filter_rules,omitempty"`
	// CrossFilesystem enables recursing into a directory that is itself a
	// mount point, rather than leaving it OnRequestOnly.
	CrossFilesystem bool `toml:"cross_filesystem"`
	// MinTileSize is the minimum longer-side length, in treemap layout
	// units, a tile must have to be materialized.
	MinTileSize float64 `toml:"min_tile_size"`
	// CushionShading enables cushion-shaded treemap rendering.
	CushionShading bool `toml:"cushion_shading"`
	// CacheFileName is the filename a scan looks for as a cache drop-in
	// candidate, and the default name used when writing one.
	CacheFileName string `toml:"cache_file_name"`
}

// Default returns the configuration a fresh installation starts from.
func Default() Configuration {
	return Configuration{
		CrossFilesystem: false,
		MinTileSize:     3,
		CushionShading:  true,
		CacheFileName:   filesystem.DefaultCacheFileName,
	}
}

// Load reads the configuration from path, returning Default() unmodified if
// the file does not exist.
func Load(path string) (Configuration, error) {
	config := Default()
	if err := encoding.LoadAndUnmarshalTOML(path, &config); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Configuration{}, errors.Wrap(err, "unable to load configuration")
	}
	return config, nil
}

// LoadDefaultPath loads the configuration from pkg/filesystem.ConfigurationPath.
func LoadDefaultPath() (Configuration, error) {
	return Load(filesystem.ConfigurationPath)
}

// Save writes c to path atomically, via pkg/encoding.MarshalAndSave.
func (c Configuration) Save(path string, logger *logging.Logger) error {
	return encoding.MarshalAndSaveTOML(path, logger, c)
}

// CompileExcludeRules resolves ExcludeRules into an exclude.List, stopping
// at (and reporting) the first pattern that fails to compile.
func (c Configuration) CompileExcludeRules() (*exclude.List, error) {
	return compileRules(c.ExcludeRules)
}

// CompileFilterRules resolves FilterRules into an exclude.List.
func (c Configuration) CompileFilterRules() (*exclude.List, error) {
	return compileRules(c.FilterRules)
}

func compileRules(patterns []RulePattern) (*exclude.List, error) {
	list := exclude.NewList()
	for _, p := range patterns {
		rule, err := p.compile()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid rule %q", p.Pattern)
		}
		list.Add(rule)
	}
	return list, nil
}
