package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aluiziolira/go-libraff-books/charts"
	"github.com/aluiziolira/go-libraff-books/config"
	"github.com/aluiziolira/go-libraff-books/logging"
	"github.com/aluiziolira/go-libraff-books/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("report failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "reporter",
		Short:         "Render catalog charts and an insight digest from the collected CSV",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			if err := logging.Setup(cfg.LogLevel); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(&cfg.Report)
		},
	}
}

func run(cfg *config.ReportConfig) error {
	slog.Info("loading catalog", slog.String("path", cfg.InputFile))
	table, err := report.Load(cfg.InputFile)
	if err != nil {
		return err
	}
	slog.Info("catalog loaded", slog.Int("books", table.Len()))

	agg := report.Aggregate(table, cfg)
	printSummary(agg.Summary, cfg.Currency)

	renderErr := charts.RenderAll(cfg.OutputDir, charts.NewRenderer(cfg.Currency).Jobs(agg))

	text := report.Insights(agg)
	fmt.Println(text)
	path, err := report.WriteInsights(cfg.OutputDir, text)
	if err != nil {
		return err
	}
	slog.Info("insights saved", slog.String("path", path))

	if renderErr != nil {
		return fmt.Errorf("some charts were not rendered: %w", renderErr)
	}
	slog.Info("all charts saved", slog.String("dir", cfg.OutputDir))
	return nil
}

func printSummary(s report.Summary, currency string) {
	p := message.NewPrinter(language.English)
	fmt.Println("\nData Summary:")
	p.Printf("Total books: %d\n", s.Books)
	if s.PricedBooks > 0 {
		p.Printf("Price range: %.2f - %.2f %s\n", s.PriceMin, s.PriceMax, currency)
		p.Printf("Average price: %.2f %s\n", s.PriceMean, currency)
	}
	p.Printf("Total stock: %d units\n", s.TotalUnits)
}
