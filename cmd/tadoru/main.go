// Package main is the tadoru CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/tadoru/internal/aggregate"
	"github.com/hyperjump/tadoru/internal/cli"
	"github.com/hyperjump/tadoru/internal/config"
	"github.com/hyperjump/tadoru/internal/corpus"
	"github.com/hyperjump/tadoru/internal/models"
	"github.com/hyperjump/tadoru/internal/pattern"
	"github.com/hyperjump/tadoru/internal/scan"
	"github.com/hyperjump/tadoru/internal/server"
	"github.com/hyperjump/tadoru/internal/sink"
	"github.com/hyperjump/tadoru/internal/storage"
	"github.com/hyperjump/tadoru/internal/watcher"
	"github.com/hyperjump/tadoru/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/tadoru/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "tadoru scan" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "scan":
		runScan()
	case "serve":
		runServe()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("tadoru version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// newSinks builds the output sinks for a run: the configured file sink, plus
// the SQLite sink when a database path is set. Unknown formats are an error.
func newSinks(cfg *config.Config, store *storage.Store, runID string) ([]sink.Sink, error) {
	var sinks []sink.Sink
	switch cfg.Results.Format {
	case config.FormatCSV:
		sinks = append(sinks, sink.NewCSVSink(cfg.Results.Dir))
	case config.FormatXLSX:
		sinks = append(sinks, sink.NewXLSXSink(cfg.Results.Dir))
	default:
		return nil, fmt.Errorf("unknown results format %q; use %s or %s",
			cfg.Results.Format, config.FormatCSV, config.FormatXLSX)
	}
	if store != nil {
		sinks = append(sinks, storage.NewRunSink(store, runID))
	}
	return sinks, nil
}

// scanOnce runs a full scan with the given config and writes all outputs.
func scanOnce(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*models.RunSummary, error) {
	patterns, err := pattern.CompileSet(cfg.Patterns)
	if err != nil {
		return nil, fmt.Errorf("compile patterns: %w", err)
	}
	files, err := corpus.Discover(cfg.Corpus.Root)
	if err != nil {
		return nil, err
	}
	logger.Info("scan starting",
		zap.Int("files", len(files)),
		zap.Int("patterns", len(patterns)),
		zap.String("root", cfg.Corpus.Root))

	runner := scan.NewRunner(patterns, scan.Config{
		ContextWidth:     cfg.Scan.ContextWidth,
		Workers:          cfg.Scan.Workers,
		SuppressOverlaps: cfg.Scan.SuppressOverlaps,
	}, scan.WithRunnerLogger(logger))

	groups, summary, err := runner.Run(ctx, files)
	if err != nil {
		return nil, err
	}

	var store *storage.Store
	if cfg.Results.DatabasePath != "" {
		store, err = storage.Open(cfg.Results.DatabasePath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		if err := store.SaveRun(ctx, summary); err != nil {
			return nil, err
		}
	}
	sinks, err := newSinks(cfg, store, summary.RunID)
	if err != nil {
		return nil, err
	}
	if err := writeGroups(ctx, groups, sinks); err != nil {
		return nil, err
	}
	return summary, nil
}

func writeGroups(ctx context.Context, groups *aggregate.Groups, sinks []sink.Sink) error {
	for _, s := range sinks {
		if err := groups.Each(func(key models.GroupKey, rows []*models.Row) error {
			return s.WriteGroup(ctx, key, rows)
		}); err != nil {
			return err
		}
		if err := s.Close(); err != nil {
			return err
		}
	}
	return nil
}

func runScan() {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (per-file parse and match counts)")
	outputFormat := fs.String("output", "text", "summary format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	summary, err := scanOnce(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Scan failed", zap.Error(err))
	}

	format := cli.OutputText
	if *outputFormat == "json" {
		format = cli.OutputJSON
	}
	if err := cli.WriteRunSummary(os.Stdout, summary, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Results.DatabasePath == "" {
		fmt.Println("serve requires results.database_path to be set")
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	store, err := storage.Open(cfg.Results.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()

	srv := server.NewServer(store, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (watch events, rescan triggers)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	ctx := context.Background()
	rescan := func() {
		// Config edits take effect on the next rescan.
		cfg, _, err := loadConfig(resolvedConfigPath)
		if err != nil {
			logger.Warn("config reload failed, keeping watch alive", zap.Error(err))
			return
		}
		summary, err := scanOnce(ctx, cfg, logger)
		if err != nil {
			logger.Warn("rescan failed", zap.Error(err))
			return
		}
		_ = cli.WriteRunSummary(os.Stdout, summary, cli.OutputText)
	}

	// Initial scan before watching for changes.
	summary, err := scanOnce(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Scan failed", zap.Error(err))
	}
	_ = cli.WriteRunSummary(os.Stdout, summary, cli.OutputText)

	watchOpts := []watcher.WatcherOption{watcher.WithExtraFiles(resolvedConfigPath)}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	w := watcher.NewWatcher(cfg.Corpus.Root, rescan, watchOpts...)
	watchCtx, watchCancel := context.WithCancel(ctx)
	defer watchCancel()
	if err := w.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	logger.Info("watching for changes", zap.String("root", cfg.Corpus.Root))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down...")
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 10, "number of runs to show")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Results.DatabasePath == "" {
		fmt.Println("status requires results.database_path to be set")
		os.Exit(1)
	}
	store, err := storage.Open(cfg.Results.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	runs, err := store.ListRuns(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List runs failed: %v\n", err)
		os.Exit(1)
	}
	totalRows, err := store.CountRows(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count rows failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		out := struct {
			Rows int64                `json:"rows"`
			Runs []*models.RunSummary `json:"runs"`
		}{Rows: totalRows, Runs: runs}
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("database: %s\n", cfg.Results.DatabasePath)
		fmt.Printf("rows:     %d\n", totalRows)
		fmt.Printf("runs:     %d shown\n\n", len(runs))
		for _, r := range runs {
			fmt.Printf("  %s  %s  %d file(s)  %d match(es)\n",
				r.RunID, r.StartedAt.Format(time.RFC3339), r.Files, r.TotalMatches)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tadoru - Diachronic corpus pattern scanner

Usage:
  tadoru scan [flags]       Scan the corpus once and write results
  tadoru serve [flags]      Serve stored runs over HTTP
  tadoru watch [flags]      Scan, then rescan when the corpus changes
  tadoru status [flags]     Show stored runs
  tadoru version            Show version
  tadoru help               Show this help

Scan Flags:
  --config string    Config file path (default: /usr/local/etc/tadoru/config.yaml)
  --debug            Enable debug logging (per-file parse and match counts)
  --output string    Summary format: text or json (default: text)

Serve Flags:
  --config string    Config file path
  --debug            Enable debug logging

Watch Flags:
  --config string    Config file path
  --debug            Enable debug logging (watch events, rescan triggers)

Status Flags:
  --config string    Config file path
  --limit int        Number of runs to show (default: 10)
  --output string    Output format: text or json (default: text)

Examples:
  tadoru scan
  tadoru scan --output json
  tadoru serve
  tadoru watch
  tadoru status --limit 5`)
}
