package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidTolerance indicates a negative line grouping tolerance
	ErrInvalidTolerance = errors.New("invalid y tolerance")

	// ErrInvalidLookahead indicates a header lookahead below one line
	ErrInvalidLookahead = errors.New("invalid header lookahead")

	// ErrEmptyDelimiter indicates a missing package path delimiter
	ErrEmptyDelimiter = errors.New("empty path delimiter")

	// ErrInvalidPattern indicates a noise, standard or path pattern that does not compile
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrEmptyOutputName indicates a missing output base name
	ErrEmptyOutputName = errors.New("empty output name")

	// ErrInvalidWorkers indicates a worker count below one
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidCacheSize indicates a negative cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidDebounce indicates a non-positive watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateExtraction(&cfg.Extraction); err != nil {
		errs = append(errs, err)
	}
	if err := validateParsing(&cfg.Parsing); err != nil {
		errs = append(errs, err)
	}
	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}
	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}
	if cfg.Watch.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("%w: watch.debounce must be positive, got %s", ErrInvalidDebounce, cfg.Watch.Debounce))
	}
	if cfg.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Workers))
	}
	// zero disables the cache
	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.CacheSize))
	}

	return errors.Join(errs...)
}

func validateExtraction(cfg *ExtractionConfig) error {
	var errs []error
	if cfg.YTolerance < 0 {
		errs = append(errs, fmt.Errorf("%w: y_tolerance cannot be negative, got %g", ErrInvalidTolerance, cfg.YTolerance))
	}
	if cfg.HeaderLookahead < 1 {
		errs = append(errs, fmt.Errorf("%w: header_lookahead must be positive, got %d", ErrInvalidLookahead, cfg.HeaderLookahead))
	}
	return errors.Join(errs...)
}

func validateParsing(cfg *ParsingConfig) error {
	var errs []error
	if strings.TrimSpace(cfg.PathDelimiter) == "" {
		errs = append(errs, fmt.Errorf("%w: path_delimiter is required", ErrEmptyDelimiter))
	}
	for _, p := range cfg.NoisePatterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("%w: noise pattern %q: %v", ErrInvalidPattern, p, err))
		}
	}
	if cfg.StandardPattern != "" {
		re, err := regexp.Compile(cfg.StandardPattern)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%w: standard pattern: %v", ErrInvalidPattern, err))
		case re.SubexpIndex("name") < 0 || re.SubexpIndex("release") < 0:
			errs = append(errs, fmt.Errorf("%w: standard pattern needs named groups 'name' and 'release'", ErrInvalidPattern))
		}
	}
	return errors.Join(errs...)
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error
	for _, p := range append(append([]string(nil), cfg.Include...), cfg.Ignore...) {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: path pattern %q: %v", ErrInvalidPattern, p, err))
		}
	}
	return errors.Join(errs...)
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error
	if strings.TrimSpace(cfg.Name) == "" {
		errs = append(errs, fmt.Errorf("%w: output name is required", ErrEmptyOutputName))
	}
	for _, f := range cfg.Formats {
		if !ValidFormat(f) {
			errs = append(errs, fmt.Errorf("%w: must be one of json, msgpack, sqlite, got '%s'", ErrInvalidFormat, f))
		}
	}
	return errors.Join(errs...)
}

// ValidFormat reports whether f names a supported output format.
func ValidFormat(f string) bool {
	switch strings.ToLower(f) {
	case FormatJSON, FormatMsgpack, FormatSQLite:
		return true
	}
	return false
}
