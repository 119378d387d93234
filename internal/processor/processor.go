package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cardscan-go/internal/extractor"
	"cardscan-go/internal/logger"
	"cardscan-go/internal/ocr"
	"cardscan-go/internal/types"
)

// Processor runs one card image end to end: preprocess -> OCR -> extract.
type Processor struct {
	engine     ocr.Engine
	pipeline   *extractor.Pipeline
	preprocess ocr.PreprocessOptions
	log        *logger.Logger
}

func New(engine ocr.Engine, pipeline *extractor.Pipeline, opts ocr.PreprocessOptions, log *logger.Logger) *Processor {
	return &Processor{engine: engine, pipeline: pipeline, preprocess: opts, log: log.Component("processor")}
}

// ProcessImage returns a CardResult even on failure; Error carries the cause
// and the returned error can be inspected with errors.Is.
func (p *Processor) ProcessImage(ctx context.Context, image []byte, fileName string) (types.CardResult, error) {
	start := time.Now()
	res := types.CardResult{ID: uuid.NewString(), FileName: fileName}
	log := p.log.With("card_id", res.ID).With("file_name", fileName)

	fail := func(stage string, err error) (types.CardResult, error) {
		err = fmt.Errorf("%s: %w", stage, err)
		res.Error = err.Error()
		res.DurationMs = time.Since(start).Milliseconds()
		log.WithError(err).Warn("card processing failed")
		return res, err
	}

	normalized, err := ocr.Preprocess(image, p.preprocess)
	if err != nil {
		return fail("preprocess", err)
	}
	tr, err := p.engine.Transcribe(ctx, normalized)
	if err != nil {
		return fail("ocr", err)
	}
	res.Transcript = tr.Text
	log.WithField("ocr_engine", p.engine.Name()).WithField("words", len(tr.Words)).Debug("transcript ready")

	trace, err := p.pipeline.Trace(ctx, tr.Text)
	if err != nil {
		return fail("extract", err)
	}
	res.Record = trace.Record
	res.Sources = trace.Sources

	res.DurationMs = time.Since(start).Milliseconds()
	log.WithField("duration_ms", res.DurationMs).Info("card processed")
	return res, nil
}

// ProcessTranscript extracts a record from text that was already recognized.
func (p *Processor) ProcessTranscript(ctx context.Context, transcript string) (types.CardResult, error) {
	start := time.Now()
	res := types.CardResult{ID: uuid.NewString(), Transcript: transcript}
	trace, err := p.pipeline.Trace(ctx, transcript)
	if err != nil {
		res.Error = fmt.Sprintf("extract: %v", err)
		res.DurationMs = time.Since(start).Milliseconds()
		return res, fmt.Errorf("extract: %w", err)
	}
	res.Record = trace.Record
	res.Sources = trace.Sources
	res.DurationMs = time.Since(start).Milliseconds()
	return res, nil
}
