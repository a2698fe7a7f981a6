package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/nordkart/ratsit-atlas/internal/config"
	"github.com/nordkart/ratsit-atlas/internal/ingest"
	"github.com/nordkart/ratsit-atlas/internal/logging"
	"github.com/nordkart/ratsit-atlas/internal/store"
	"github.com/nordkart/ratsit-atlas/internal/web"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// runIngest parses every PDF in the configured directory and replaces the
// database contents with the extracted records.
func runIngest(ctx context.Context, cfg *config.Config, st *store.Store, logger *zap.Logger) error {
	ing := ingest.New(cfg.MaxFileSize, st, logger)
	summary, err := ing.Run(ctx, cfg.PDFDirectory)
	if err != nil {
		return err
	}

	fmt.Printf("Parsed %d of %d files, stored %d records (%d with salary)\n",
		summary.FilesParsed, summary.FilesFound, summary.Records, summary.RecordsWithSalary)
	return nil
}

// runServe starts the dashboard and blocks until a shutdown signal arrives.
func runServe(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, st *store.Store, logger *zap.Logger) error {
	server, err := web.NewServer(cfg, st, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
		if err := <-serverErrCh; err != nil {
			return err
		}
	case err := <-serverErrCh:
		if err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsDebug() {
		logger.Debug("starting", zap.String("config", cfg.String()))
	}

	st, err := store.NewStore(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer func() { _ = st.Close() }()
	logger.Debug("database opened", zap.String("path", st.Path()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch {
	case cfg.IsIngestMode():
		err = runIngest(ctx, cfg, st, logger)
	default:
		err = runServe(ctx, cancel, cfg, st, logger)
	}
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Ratsit Atlas\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
