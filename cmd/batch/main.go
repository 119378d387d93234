package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"cardscan-go/internal/aggregator"
	"cardscan-go/internal/app"
	"cardscan-go/internal/config"
	"cardscan-go/internal/dataset"
	"cardscan-go/internal/export"
	"cardscan-go/internal/logger"
	"cardscan-go/internal/processor"
	"cardscan-go/internal/types"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

type options struct {
	input   string
	out     string
	workers int
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "batch: %v\n", err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "batch: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: go run ./cmd/batch -input <sheet.xlsx|dir> [flags]\n")
		flag.PrintDefaults()
	}
	flag.StringVar(&opts.input, "input", "", "XLSX of transcripts or a directory of card images")
	flag.StringVar(&opts.out, "out", "contacts.xlsx", "Report path (.xlsx or .json)")
	flag.IntVar(&opts.workers, "workers", 4, "Concurrent extractions")
	flag.Parse()

	if opts.input == "" {
		flag.Usage()
		return opts, fmt.Errorf("missing -input")
	}
	if opts.workers < 1 {
		opts.workers = 1
	}
	if _, err := reportFormat(opts.out); err != nil {
		return opts, err
	}
	return opts, nil
}

func reportFormat(path string) (export.Format, error) {
	return export.ParseFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New().Component("batch")

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	info, err := os.Stat(opts.input)
	if err != nil {
		return err
	}
	var results []types.BatchResult
	if info.IsDir() {
		results, err = processImages(ctx, application.Processor, opts, log)
	} else {
		results, err = processSheet(ctx, application.Processor, opts, log)
	}
	if err != nil {
		return err
	}
	if err := writeReport(opts.out, results); err != nil {
		return err
	}
	summary := aggregator.Aggregate(results)
	weakest, coverage := summary.Weakest()
	log.WithField("rows", summary.Rows).
		WithField("failed", summary.Failed).
		WithField("weakest_field", weakest).
		WithField("weakest_coverage", fmt.Sprintf("%.0f%%", coverage*100)).
		WithField("out", opts.out).
		Info("report written")
	return nil
}

func processSheet(ctx context.Context, proc *processor.Processor, opts options, log *logger.Logger) ([]types.BatchResult, error) {
	rows, err := dataset.Load(opts.input)
	if err != nil {
		return nil, err
	}
	log.WithField("rows", len(rows)).WithField("input", opts.input).Info("transcripts loaded")
	return proc.ProcessRows(ctx, rows, opts.workers)
}

func processImages(ctx context.Context, proc *processor.Processor, opts options, log *logger.Logger) ([]types.BatchResult, error) {
	entries, err := os.ReadDir(opts.input)
	if err != nil {
		return nil, err
	}
	var rows []types.TranscriptRow
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		rows = append(rows, types.TranscriptRow{RowID: e.Name(), Source: filepath.Join(opts.input, e.Name())})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RowID < rows[j].RowID })
	log.WithField("images", len(rows)).WithField("input", opts.input).Info("images found")

	return processor.RunBatch(ctx, rows, opts.workers, func(ctx context.Context, row types.TranscriptRow) (types.CardResult, error) {
		data, err := os.ReadFile(row.Source)
		if err != nil {
			return types.CardResult{Error: err.Error()}, err
		}
		return proc.ProcessImage(ctx, data, row.RowID)
	})
}

func writeReport(path string, results []types.BatchResult) error {
	format, err := reportFormat(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if format == export.FormatXLSX {
		err = export.WriteBatchXLSX(f, results)
	} else {
		err = export.WriteJSON(f, results)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
