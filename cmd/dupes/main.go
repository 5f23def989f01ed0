// Package main is the entry point for the dupes application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/dupes/internal/cache"
	"github.com/joe/dupes/internal/config"
	"github.com/joe/dupes/internal/dupes"
	"github.com/joe/dupes/internal/report"
	"github.com/joe/dupes/internal/tui"
	"github.com/joe/dupes/pkg/filesystem"
)

// Exit statuses.
const (
	exitOK      = 0
	exitFatal   = 1
	exitPartial = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], streams{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	})

	stop()
	os.Exit(code)
}

// streams are the process's standard files. Terminal detection only
// succeeds when they are *os.File values attached to a TTY.
type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, std streams) int {
	cfg, err := config.ParseFlags(args, std.stdout)

	switch {
	case errors.Is(err, arg.ErrHelp), errors.Is(err, arg.ErrVersion):
		return exitOK
	case err != nil:
		fmt.Fprintf(std.stderr, "Error: %v\n", err)
		return exitFatal
	}

	cfg.StdinIsTerminal = isTerminal(std.stdin)
	cfg.StdoutIsTerminal = isTerminal(std.stdout)

	err = cfg.CheckTerminal()
	if err != nil {
		fmt.Fprintf(std.stderr, "Error: %v\n", err)
		return exitFatal
	}

	logger, err := newLogger(cfg, std.stderr)
	if err != nil {
		fmt.Fprintf(std.stderr, "Failed to initialize logger: %v\n", err)
		return exitFatal
	}

	defer func() { _ = logger.Sync() }()

	result, runErr := scan(ctx, cfg, logger, std)
	if result == nil {
		fmt.Fprintf(std.stderr, "Error: %v\n", runErr)
		return exitFatal
	}

	err = writeReport(cfg, result, std.stdout)
	if err != nil {
		fmt.Fprintf(std.stderr, "Error: %v\n", err)
		return exitFatal
	}

	switch {
	case runErr != nil:
		fmt.Fprintf(std.stderr, "Error: %v\n", runErr)
		return exitFatal
	case result.Summary.Failures > 0, result.Summary.GroupsFailed > 0:
		return exitPartial
	default:
		return exitOK
	}
}

// scan opens the roots and runs the engine. A nil result means nothing
// ran; a non-nil result with an error is a partial run worth reporting.
func scan(ctx context.Context, cfg *config.Config, logger *zap.Logger, std streams) (*dupes.Result, error) {
	fsys, paths, closeFS, err := filesystem.OpenRoots(cfg.Roots, cfg.Workers+1)
	if err != nil {
		return nil, fmt.Errorf("failed to open roots: %w", err)
	}
	defer closeFS()

	var chooser dupes.Chooser
	if cfg.Keep == config.KeepInteractive {
		chooser = tui.NewChooser(std.stdin, std.stderr, !cfg.NoColor)
	}

	engine, err := dupes.NewEngine(fsys, paths, cfg, chooser, logger)
	if err != nil {
		return nil, err //nolint:wrapcheck // engine errors already name the problem
	}

	if isTerminal(std.stderr) {
		engine.SetEventEmitter(tui.NewProgressPrinter(std.stderr, !cfg.NoColor))
	}

	digests := openCache(cfg, logger)
	if digests != nil {
		engine.SetCache(digests)

		defer saveCache(digests, logger)
	}

	result, err := engine.Run(ctx)
	if err != nil && errors.Is(err, dupes.ErrNoExistingRoots) {
		return nil, err //nolint:wrapcheck // sentinel is the whole message
	}

	return result, err //nolint:wrapcheck // already wrapped by the engine
}

// openCache loads the hash cache when --cache is on and the method reads
// content. Cache problems are logged and never fail the run.
func openCache(cfg *config.Config, logger *zap.Logger) *cache.HashCache {
	if !cfg.Cache || cfg.Method != config.MethodHash {
		return nil
	}

	path := cfg.CacheFile
	if path == "" {
		dir, err := cache.DefaultDir()
		if err != nil {
			logger.Warn("hash cache disabled", zap.Error(err))
			return nil
		}

		endpoint := "local"
		if loc, err := filesystem.ParseLocation(cfg.Roots[0]); err == nil && loc.Remote { //nolint:noinlineerr // roots were already validated
			endpoint = loc.Endpoint()
		}

		path = filepath.Join(dir, cache.FileName(endpoint, cfg.Algorithm.String()))
	}

	digests, err := cache.Load(path, cfg.Algorithm.String())
	if err != nil {
		logger.Warn("starting with an empty hash cache", zap.String("path", path), zap.Error(err))
	}

	logger.Debug("hash cache loaded", zap.String("path", path), zap.Int("entries", digests.Len()))

	return digests
}

func saveCache(digests *cache.HashCache, logger *zap.Logger) {
	pruned := digests.Prune(cache.DefaultMaxAge)

	err := digests.Save()
	if err != nil {
		logger.Warn("failed to save hash cache", zap.Error(err))
		return
	}

	logger.Debug("hash cache saved", zap.Int("entries", digests.Len()), zap.Int("pruned", pruned))
}

func writeReport(cfg *config.Config, result *dupes.Result, stdout io.Writer) error {
	reporter, err := report.New(cfg.Format, report.Options{Color: cfg.UseColor()})
	if err != nil {
		return err //nolint:wrapcheck // carries config.ErrInvalidValue
	}

	if cfg.Output == "" {
		return reporter.Write(stdout, result) //nolint:wrapcheck // reporters wrap their own errors
	}

	file, err := os.Create(cfg.Output) // #nosec G304 - path given by the user
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", cfg.Output, err)
	}

	err = reporter.Write(file, result)
	if err != nil {
		_ = file.Close()
		return err //nolint:wrapcheck // reporters wrap their own errors
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("failed to close report file %s: %w", cfg.Output, err)
	}

	return nil
}

// newLogger logs to stderr (debug with --verbose, warnings otherwise)
// and additionally to --log-file when given.
func newLogger(cfg *config.Config, stderr io.Writer) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	encoderConfig := zap.NewProductionEncoderConfig()

	if cfg.Verbose {
		level = zapcore.DebugLevel
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(stderr), level),
	}

	if cfg.LogFile != "" {
		file, _, err := zap.Open(cfg.LogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.LogFile, err)
		}

		fileConfig := zap.NewProductionEncoderConfig()
		fileConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileConfig), file, zapcore.DebugLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	if cfg.Verbose {
		logger = logger.WithOptions(zap.Development(), zap.AddCaller())
	}

	return logger, nil
}

func isTerminal(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(file.Fd())) //nolint:gosec // fd fits in int
}
