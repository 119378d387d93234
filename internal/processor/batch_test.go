package processor

import (
	"context"
	"errors"
	"testing"

	"cardscan-go/internal/extractor"
	"cardscan-go/internal/ner"
	"cardscan-go/internal/types"
)

func TestRunBatchKeepsRowFailures(t *testing.T) {
	rows := []types.TranscriptRow{{RowID: "1"}, {RowID: "2"}, {RowID: "3"}}
	results, err := RunBatch(context.Background(), rows, 2, func(_ context.Context, row types.TranscriptRow) (types.CardResult, error) {
		if row.RowID == "2" {
			return types.CardResult{Error: "ocr: blurry"}, errors.New("ocr: blurry")
		}
		return types.CardResult{Record: types.ContactRecord{Name: "Row " + row.RowID}}, nil
	})
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d", len(results))
	}
	if results[0].Record.Name != "Row 1" || results[2].Record.Name != "Row 3" {
		t.Fatalf("results out of order: %+v", results)
	}
	if results[1].Error != "ocr: blurry" || !results[1].Record.IsEmpty() {
		t.Fatalf("row 2 = %+v", results[1])
	}
}

func TestRunBatchAbortsOnModelUnavailable(t *testing.T) {
	rows := []types.TranscriptRow{{RowID: "1"}, {RowID: "2"}}
	_, err := RunBatch(context.Background(), rows, 1, func(context.Context, types.TranscriptRow) (types.CardResult, error) {
		return types.CardResult{}, extractor.ErrModelUnavailable
	})
	if !errors.Is(err, extractor.ErrModelUnavailable) {
		t.Fatalf("error = %v, want ErrModelUnavailable", err)
	}
}

func TestProcessRows(t *testing.T) {
	p := newProcessor(t, ner.NewGazetteer(nil))
	rows := []types.TranscriptRow{
		{RowID: "a", Transcript: "Jane Doe\njane@globex.com"},
		{RowID: "b", Transcript: "  "},
	}
	results, err := p.ProcessRows(context.Background(), rows, 0)
	if err != nil {
		t.Fatalf("ProcessRows() error = %v", err)
	}
	if results[0].Record.Email != "jane@globex.com" || results[0].RowID != "a" {
		t.Fatalf("row a = %+v", results[0])
	}
	if !results[1].Record.IsEmpty() || results[1].Error != "" {
		t.Fatalf("blank row = %+v", results[1])
	}
}
