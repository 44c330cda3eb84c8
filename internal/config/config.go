package config

import (
	"runtime"
	"time"

	"github.com/mvp-joe/specmodel/internal/export"
	"github.com/mvp-joe/specmodel/internal/lines"
	"github.com/mvp-joe/specmodel/internal/model"
	"github.com/mvp-joe/specmodel/internal/parser"
	"github.com/mvp-joe/specmodel/internal/resolve"
	"github.com/mvp-joe/specmodel/internal/watcher"
)

// Config represents the complete specmodel configuration.
// It can be loaded from .specmodel/config.yml with environment variable overrides.
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Parsing    ParsingConfig    `yaml:"parsing" mapstructure:"parsing"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Watch      WatchConfig      `yaml:"watch" mapstructure:"watch"`
	Workers    int              `yaml:"workers" mapstructure:"workers"`       // parallel document units
	CacheSize  int              `yaml:"cache_size" mapstructure:"cache_size"` // text buffers kept across watch runs
}

// ExtractionConfig tunes line reconstruction.
type ExtractionConfig struct {
	YTolerance      float64 `yaml:"y_tolerance" mapstructure:"y_tolerance"`           // vertical distance joining words into one line
	HeaderLookahead int     `yaml:"header_lookahead" mapstructure:"header_lookahead"` // lines searched for a confirming package line
}

// ParsingConfig tunes the construct parsers and the resolver.
type ParsingConfig struct {
	PathDelimiter   string   `yaml:"path_delimiter" mapstructure:"path_delimiter"`
	RootClass       string   `yaml:"root_class" mapstructure:"root_class"`
	IndexTagKeys    []string `yaml:"index_tag_keys" mapstructure:"index_tag_keys"`
	NoisePatterns   []string `yaml:"noise_patterns" mapstructure:"noise_patterns"`     // running headers and footers to drop
	StandardPattern string   `yaml:"standard_pattern" mapstructure:"standard_pattern"` // needs named groups name and release
}

// PathsConfig defines which inputs to read and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for input documents
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// OutputConfig defines where and how the model is written.
type OutputConfig struct {
	Dir     string   `yaml:"dir" mapstructure:"dir"`
	Name    string   `yaml:"name" mapstructure:"name"`       // base file name without extension
	Formats []string `yaml:"formats" mapstructure:"formats"` // json, msgpack, sqlite
}

// WatchConfig tunes --watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"` // quiet period before a batch of changes re-extracts
}

// Output formats.
const (
	FormatJSON    = export.FormatJSON
	FormatMsgpack = export.FormatMsgpack
	FormatSQLite  = export.FormatSQLite
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	p := parser.DefaultOptions()
	return &Config{
		Extraction: ExtractionConfig{
			YTolerance:      lines.DefaultTolerance,
			HeaderLookahead: p.HeaderLookahead,
		},
		Parsing: ParsingConfig{
			PathDelimiter:   model.DefaultPathDelimiter,
			RootClass:       p.RootClass,
			IndexTagKeys:    p.IndexTagKeys,
			NoisePatterns:   p.NoisePatterns,
			StandardPattern: p.StandardPattern,
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.words.jsonl",
				"**/*.txt",
			},
			Ignore: []string{
				".git/**",
				".specmodel/**",
				"node_modules/**",
				"vendor/**",
			},
		},
		Output: OutputConfig{
			Dir:     ".specmodel/out",
			Name:    "model",
			Formats: []string{FormatJSON},
		},
		Watch: WatchConfig{
			Debounce: watcher.DefaultDebounce,
		},
		Workers:   runtime.GOMAXPROCS(0),
		CacheSize: 64,
	}
}

// ParserOptions returns the parser options described by c.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{
		PathDelimiter:   c.Parsing.PathDelimiter,
		RootClass:       c.Parsing.RootClass,
		IndexTagKeys:    append([]string(nil), c.Parsing.IndexTagKeys...),
		HeaderLookahead: c.Extraction.HeaderLookahead,
		NoisePatterns:   append([]string(nil), c.Parsing.NoisePatterns...),
		StandardPattern: c.Parsing.StandardPattern,
	}
}

// ResolveOptions returns the resolver options described by c.
func (c *Config) ResolveOptions() resolve.Options {
	return resolve.Options{RootClass: c.Parsing.RootClass}
}
