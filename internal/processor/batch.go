package processor

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"cardscan-go/internal/extractor"
	"cardscan-go/internal/types"
)

// RowFunc produces the result for one batch row.
type RowFunc func(ctx context.Context, row types.TranscriptRow) (types.CardResult, error)

// RunBatch runs fn over rows with at most workers in flight. Results keep the
// input order. A row failure is recorded on its result; a missing model
// cancels the remaining rows and fails the batch.
func RunBatch(ctx context.Context, rows []types.TranscriptRow, workers int, fn RowFunc) ([]types.BatchResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]types.BatchResult, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, row := range rows {
		g.Go(func() error {
			res, err := fn(gctx, row)
			if errors.Is(err, extractor.ErrModelUnavailable) {
				return fmt.Errorf("row %s: %w", row.RowID, err)
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			row.Transcript = res.Transcript
			results[i] = types.BatchResult{TranscriptRow: row, Record: res.Record, Error: res.Error}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ProcessRows extracts a record from every transcript row.
func (p *Processor) ProcessRows(ctx context.Context, rows []types.TranscriptRow, workers int) ([]types.BatchResult, error) {
	results, err := RunBatch(ctx, rows, workers, func(ctx context.Context, row types.TranscriptRow) (types.CardResult, error) {
		return p.ProcessTranscript(ctx, row.Transcript)
	})
	if err != nil {
		return nil, err
	}
	p.log.WithField("rows", len(rows)).WithField("workers", workers).Info("batch processed")
	return results, nil
}
