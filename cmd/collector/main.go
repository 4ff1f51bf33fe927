package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-libraff-books/config"
	"github.com/aluiziolira/go-libraff-books/logging"
	"github.com/aluiziolira/go-libraff-books/models"
	"github.com/aluiziolira/go-libraff-books/pipeline"
	"github.com/aluiziolira/go-libraff-books/scraper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("collection failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "collector [output.csv]",
		Short:         "Collect the libraff.az book catalog into a CSV file",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Collector.OutputFile = args[0]
			}
			if err := logging.Setup(cfg.LogLevel); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(cmd.Context(), &cfg.Collector)
		},
	}
}

func run(ctx context.Context, cfg *config.CollectorConfig) error {
	s, err := scraper.NewScraper(cfg)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}

	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(cfg.MetricsAddr, s.Metrics)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	p := pipeline.NewPipeline()
	result, err := s.Run(ctx, p)
	switch {
	case errors.Is(err, context.Canceled):
		slog.Warn("collection interrupted, saving what was gathered",
			slog.Int("books", len(result.Books)))
	case err != nil:
		return fmt.Errorf("collecting catalog: %w", err)
	}

	if err := pipeline.Persist(result.Books, cfg.OutputFile); err != nil {
		if errors.Is(err, pipeline.ErrEmptyCatalog) {
			return fmt.Errorf("no data to save: %w", err)
		}
		return err
	}

	printSummary(result, cfg.OutputFile)
	return nil
}

func startMetricsServer(addr string, m *scraper.Metrics) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return srv
}

func printSummary(result *models.CollectionResult, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Collection complete")
	fmt.Printf("  Pages fetched: %d\n", result.PageCount)
	fmt.Printf("  Empty pages:   %d\n", result.EmptyPages)
	fmt.Printf("  Records seen:  %d\n", result.RawCount)
	fmt.Printf("  Unique books:  %d\n", len(result.Books))
	fmt.Printf("  Duplicates:    %d\n", result.Duplicates)
	if result.Invalid > 0 {
		fmt.Printf("  Invalid:       %d\n", result.Invalid)
	}
	if len(result.FailedPages) > 0 {
		fmt.Printf("  Failed pages:  %v\n", result.FailedPages)
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Duration:      %v\n", result.EndTime.Sub(result.StartTime).Round(time.Millisecond))

	fmt.Printf("  Output file:   %s\n", absPath(outputFile))
	if info, err := os.Stat(outputFile); err == nil {
		fmt.Printf("  File size:     %d bytes (%.2f KB)\n", info.Size(), float64(info.Size())/1024)
	}
	fmt.Println(separator)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
