package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meridian-erp/meridian-consol/internal/consol"
	"github.com/meridian-erp/meridian-consol/internal/shared"
)

func main() {
	inputPath := flag.String("input", "", "path to a consolidation input JSON file")
	outputPath := flag.String("output", "", "write the full result JSON here instead of stdout")
	flag.Parse()

	cfg, err := consol.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(1)
	}
	logger := consol.NewLogger(cfg)
	slog.SetDefault(logger)

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: meridian -input run.json [-output result.json]")
		os.Exit(2)
	}

	if err := run(context.Background(), cfg, logger, *inputPath, *outputPath); err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *consol.Config, logger *slog.Logger, inputPath, outputPath string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	var input consol.Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	orch := consol.NewOrchestrator(cfg, shared.DefaultChartRefs(), logger)
	result, err := orch.Run(ctx, input)
	if err != nil {
		return err
	}

	logger.Info("consolidation finished",
		slog.String("run_id", result.RunID),
		slog.String("period", result.Period.String()),
		slog.String("state", string(result.State)),
		slog.Bool("valid", result.Report.Valid),
		slog.Float64("accuracy", result.Report.AccuracyScore),
		slog.Int("findings", len(result.Report.Findings)))

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if outputPath == "" {
		fmt.Println(string(encoded))
		return nil
	}
	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
