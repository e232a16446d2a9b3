package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/a3tai/mcp-pdf-fetcher/internal/config"
	"github.com/a3tai/mcp-pdf-fetcher/internal/contract"
	"github.com/a3tai/mcp-pdf-fetcher/internal/export"
	"github.com/a3tai/mcp-pdf-fetcher/internal/logger"
	"github.com/a3tai/mcp-pdf-fetcher/internal/mcp"
	"github.com/a3tai/mcp-pdf-fetcher/internal/pdf"
	"github.com/a3tai/mcp-pdf-fetcher/internal/pipeline"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// loggerOptions maps configuration onto logger settings.
// In stdio mode stdout carries the protocol, so the console is only used when debugging.
func loggerOptions(cfg *config.Config) logger.Options {
	return logger.Options{
		Level:        cfg.LogLevel,
		Pretty:       cfg.LogPretty,
		Console:      !cfg.IsStdioMode() || cfg.IsDebug() || cfg.IsOneShot(),
		File:         cfg.LogFile,
		AxiomToken:   cfg.AxiomToken,
		AxiomOrgID:   cfg.AxiomOrg,
		AxiomDataset: cfg.AxiomDataset,
	}
}

// pipelineConfig gives each stage its own slice of the configuration
func pipelineConfig(cfg *config.Config) pipeline.Config {
	contractCfg := contract.DefaultConfig()
	contractCfg.MinConfidence = cfg.ContractMinConfidence

	return pipeline.Config{
		Document: pdf.ServiceOptions{
			MaxFileSize:  cfg.MaxFileSize,
			FetchTimeout: cfg.Timeout,
			UserAgent:    cfg.UserAgent,
		},
		Contract: contractCfg,
		Export: export.Config{
			SchemaPath:  cfg.ExportSchema,
			ConfigDir:   cfg.ConfigDir,
			Destination: cfg.ExportDest,
		},
	}
}

// runOneShot processes a single URL and writes the export JSON to w
func runOneShot(ctx context.Context, p *pipeline.Pipeline, url string, w io.Writer) error {
	result, err := p.Run(ctx, url)
	if err != nil {
		return err
	}

	if result.Export.Location != "" {
		log.Info().Str("location", result.Export.Location).Msg("export saved")
	}

	if _, err := w.Write(append(result.Export.Data, '\n')); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Error().Err(err).Msg("server shutdown with error")
			exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Error().Err(err).Msg("server error")
			exit(1)
		}
	}

	log.Info().Msg("server stopped successfully")
}

// runStdioMode handles stdio mode execution; the parent process controls our lifecycle
func runStdioMode(ctx context.Context, server *mcp.Server) {
	if err := server.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server error")
		exit(1)
	}
}

// exit flushes forwarded logs before leaving
func exit(code int) {
	logger.Close()
	os.Exit(code)
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if version != "dev" {
		cfg.Version = version
	}

	if err := logger.Init(loggerOptions(cfg)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	log.Debug().Str("config", cfg.String()).Msg("starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := pipeline.New(ctx, pipelineConfig(cfg))
	if err != nil {
		log.Error().Err(err).Msg("failed to build pipeline")
		exit(1)
	}

	if cfg.IsOneShot() {
		if err := runOneShot(ctx, p, cfg.URL, os.Stdout); err != nil {
			log.Error().Err(err).Str("url", cfg.URL).Msg("processing failed")
			exit(1)
		}
		return
	}

	server, err := mcp.NewServer(cfg, p)
	if err != nil {
		log.Error().Err(err).Msg("failed to create MCP server")
		exit(1)
	}

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, server)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP PDF Fetcher\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
