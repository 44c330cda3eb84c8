package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the per-project directory holding config.yml.
const DirName = ".specmodel"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader reading an explicit config file instead of
// searching the root directory.
func NewFileLoader(path string) Loader {
	return &loader{
		rootDir:    filepath.Dir(path),
		configFile: path,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (SPECMODEL_*)
// 2. Config file (.specmodel/config.yml or .specmodel/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, DirName))
	}

	// Replace . with _ in env var names (e.g., SPECMODEL_PARSING_ROOT_CLASS)
	v.SetEnvPrefix("SPECMODEL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"extraction.y_tolerance",
		"extraction.header_lookahead",
		"parsing.path_delimiter",
		"parsing.root_class",
		"parsing.index_tag_keys",
		"parsing.standard_pattern",
		"output.dir",
		"output.name",
		"output.formats",
		"watch.debounce",
		"workers",
		"cache_size",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("extraction.y_tolerance", defaults.Extraction.YTolerance)
	v.SetDefault("extraction.header_lookahead", defaults.Extraction.HeaderLookahead)

	v.SetDefault("parsing.path_delimiter", defaults.Parsing.PathDelimiter)
	v.SetDefault("parsing.root_class", defaults.Parsing.RootClass)
	v.SetDefault("parsing.index_tag_keys", defaults.Parsing.IndexTagKeys)
	v.SetDefault("parsing.noise_patterns", defaults.Parsing.NoisePatterns)
	v.SetDefault("parsing.standard_pattern", defaults.Parsing.StandardPattern)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.name", defaults.Output.Name)
	v.SetDefault("output.formats", defaults.Output.Formats)

	v.SetDefault("watch.debounce", defaults.Watch.Debounce)

	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("cache_size", defaults.CacheSize)
}
