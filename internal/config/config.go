// Package config handles application configuration and command-line argument parsing.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"runtime"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/joe/dupes/pkg/fileops"
	"github.com/joe/dupes/pkg/formatters"
)

// Exported variables.
var (
	ErrInvalidValue   = errors.New("invalid value")
	ErrNoRoots        = errors.New("no directories given")
	ErrInvalidExclude = errors.New("invalid exclude pattern")
	ErrInvalidPattern = errors.New("invalid include pattern")
	ErrNeedsTerminal  = errors.New("interactive keep policy needs a terminal on stdin")
)

// Config holds the application configuration
type Config struct {
	Roots       []string              `arg:"positional" yaml:"roots" help:"directories to scan (local paths or sftp://user@host[:port]/path)"`
	Method      Method                `arg:"-m,--method" yaml:"method" help:"duplicate detection method: hash|size|name"`
	Algorithm   fileops.HashAlgorithm `arg:"--algorithm" yaml:"algorithm" help:"hash algorithm for --method hash: sha256|sha1|md5|blake3"`
	Keep        KeepPolicy            `arg:"-k,--keep" yaml:"keep" help:"which file to keep: first|newest|oldest|largest|smallest|interactive"`
	Action      Action                `arg:"-a,--action" yaml:"action" help:"what to do with duplicates: none|remove|hardlink"`
	DryRun      bool                  `arg:"-n,--dry-run" yaml:"dry_run" help:"report what would be removed or linked without touching anything"`
	Verify      bool                  `arg:"--verify" yaml:"verify" help:"byte-compare each duplicate with the kept file before acting"`
	MinSize     string                `arg:"--min-size" yaml:"min_size" help:"ignore files smaller than this (e.g. 1K, 10MB)"`
	Extensions  string                `arg:"-e,--extensions" yaml:"extensions" help:"comma-separated extensions to include (e.g. jpg,png)"`
	Exclude     string                `arg:"-x,--exclude" yaml:"exclude" help:"regular expression; matching paths are skipped"`
	Pattern     string                `arg:"-p,--pattern" yaml:"pattern" help:"glob on the path relative to its root (e.g. '**/*.{jpg,png}')"`
	Format      Format                `arg:"-f,--format" yaml:"format" help:"report format: text|json|csv"`
	Output      string                `arg:"-o,--output" yaml:"output" help:"write the report to this file instead of stdout"`
	Workers     int                   `arg:"-w,--workers" yaml:"workers" help:"number of fingerprint workers"`
	MaxReadRate string                `arg:"--max-read-rate" yaml:"max_read_rate" help:"cap hashing reads per second (e.g. 50MB); 0 = unlimited"`
	Cache       bool                  `arg:"--cache" yaml:"cache" help:"remember file hashes between runs and skip unchanged files"`
	CacheFile   string                `arg:"--cache-file" yaml:"cache_file" help:"hash cache location (implies --cache; default: user cache directory)"`
	NoColor     bool                  `arg:"--no-color" yaml:"no_color" help:"disable colored text output"`
	Verbose     bool                  `arg:"-v,--verbose" yaml:"verbose" help:"debug logging on stderr"`
	LogFile     string                `arg:"--log-file" yaml:"log_file" help:"also write logs to this file"`
	ConfigFile  string                `arg:"--config" yaml:"-" help:"YAML file with default values for any flag"`

	// Derived by PostProcessConfig.
	MinSizeBytes     int64          `arg:"-" yaml:"-"`
	ReadRateBytes    int64          `arg:"-" yaml:"-"`
	ExtensionList    []string       `arg:"-" yaml:"-"`
	ExcludeRegexp    *regexp.Regexp `arg:"-" yaml:"-"`
	StdinIsTerminal  bool           `arg:"-" yaml:"-"`
	StdoutIsTerminal bool           `arg:"-" yaml:"-"`
}

// Defaults returns a Config with every default applied.
func Defaults() *Config {
	return &Config{
		Method:    MethodHash,
		Algorithm: fileops.SHA256,
		Keep:      KeepFirst,
		Action:    ActionNone,
		Format:    FormatText,
		Workers:   runtime.NumCPU(),
		MinSize:   "0",
	}
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Find duplicate files by content, size or name, and optionally remove or hard-link them"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "dupes 1.0.0"
}

// ParseFlags parses command-line arguments (without the program name).
// When --config is given, the YAML file supplies defaults and the
// command line is applied again on top of it.
// Help and version requests are written to stdout and returned as
// arg.ErrHelp / arg.ErrVersion.
func ParseFlags(args []string, stdout io.Writer) (*Config, error) {
	cfg := Defaults()

	err := parseArgs(cfg, args, stdout)
	if err != nil {
		return nil, err
	}

	if cfg.ConfigFile != "" {
		fromFile := Defaults()

		err = LoadFile(cfg.ConfigFile, fromFile)
		if err != nil {
			return nil, err
		}

		fromFile.ConfigFile = cfg.ConfigFile

		err = parseArgs(fromFile, args, stdout)
		if err != nil {
			return nil, err
		}

		cfg = fromFile
	}

	return PostProcessConfig(cfg)
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) // #nosec G304 - path given by the user
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// PostProcessConfig validates a parsed config and fills the derived fields.
func PostProcessConfig(cfg *Config) (*Config, error) {
	if len(cfg.Roots) == 0 {
		return nil, ErrNoRoots
	}

	minSize, err := formatters.ParseSize(cfg.MinSize)
	if err != nil {
		return nil, fmt.Errorf("%w: --min-size: %w", ErrInvalidValue, err)
	}

	cfg.MinSizeBytes = minSize

	readRate, err := formatters.ParseSize(cfg.MaxReadRate)
	if err != nil {
		return nil, fmt.Errorf("%w: --max-read-rate: %w", ErrInvalidValue, err)
	}

	cfg.ReadRateBytes = readRate

	if cfg.Exclude != "" {
		cfg.ExcludeRegexp, err = regexp.Compile(cfg.Exclude)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidExclude, cfg.Exclude, err)
		}
	}

	err = ValidateFilePattern(cfg.Pattern)
	if err != nil {
		return nil, err
	}

	cfg.ExtensionList = ParseExtensions(cfg.Extensions)

	if cfg.CacheFile != "" {
		cfg.Cache = true
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	return cfg, nil
}

// CheckTerminal rejects the interactive keep policy when stdin is not a terminal.
func (cfg *Config) CheckTerminal() error {
	if cfg.Keep == KeepInteractive && !cfg.StdinIsTerminal {
		return ErrNeedsTerminal
	}

	return nil
}

// UseColor reports whether the text report should be colored.
func (cfg *Config) UseColor() bool {
	return !cfg.NoColor && cfg.Output == "" && cfg.StdoutIsTerminal
}

// ParseExtensions splits a comma-separated allow-list into lowercase
// extensions without leading dots. Empty entries are dropped.
func ParseExtensions(list string) []string {
	var exts []string

	for _, ext := range strings.Split(list, ",") {
		ext = strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}

	return exts
}

// ValidateFilePattern checks a doublestar include pattern. Empty is valid.
func ValidateFilePattern(pattern string) error {
	if pattern == "" {
		return nil
	}

	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	return nil
}

func parseArgs(cfg *Config, args []string, stdout io.Writer) error {
	parser, err := arg.NewParser(arg.Config{Program: "dupes"}, cfg)
	if err != nil {
		return fmt.Errorf("failed to build argument parser: %w", err)
	}

	err = parser.Parse(args)

	switch {
	case errors.Is(err, arg.ErrHelp):
		parser.WriteHelp(stdout)
		return err //nolint:wrapcheck // sentinel checked by main
	case errors.Is(err, arg.ErrVersion):
		_, _ = fmt.Fprintln(stdout, cfg.Version())
		return err //nolint:wrapcheck // sentinel checked by main
	case err != nil:
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	return nil
}
