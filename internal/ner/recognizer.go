// Package ner provides the entity model handles consumed by the extractor:
// a local ONNX token-classification model, a remote spaCy-style service and
// a gazetteer used for offline demos.
package ner

import (
	"context"
	"fmt"
	"time"

	"cardscan-go/internal/extractor"
	"cardscan-go/internal/logger"
	"cardscan-go/internal/types"
)

// Recognizer is a long-lived model handle. Recognize must be safe for
// concurrent use; Close releases the model.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]types.EntitySpan, error)
	Close() error
}

// CoNLLLabels is the tag table of the common English BERT NER checkpoints.
var CoNLLLabels = []string{"O", "B-MISC", "I-MISC", "B-PER", "I-PER", "B-ORG", "I-ORG", "B-LOC", "I-LOC"}

type Config struct {
	Backend string

	ModelPath     string
	TokenizerPath string
	OrtLibPath    string
	Labels        []string
	MaxSeqLen     int
	TokenTypeIDs  bool

	RemoteURL    string
	APIKey       string
	Timeout      time.Duration
	MaxRetryTime time.Duration
}

// Open loads the configured backend. Load failures wrap
// extractor.ErrModelUnavailable.
func Open(cfg Config, log *logger.Logger) (Recognizer, error) {
	log = log.Component("ner").With("backend", cfg.Backend)
	var (
		rec Recognizer
		err error
	)
	switch cfg.Backend {
	case "onnx":
		rec, err = NewONNXRecognizer(cfg)
	case "remote":
		rec, err = NewRemoteRecognizer(cfg, log)
	case "mock":
		log.Info("mock NER mode ON - using built-in gazetteer")
		rec = NewGazetteer(nil)
	default:
		err = fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		log.WithError(err).Error("entity model load failed")
		return nil, fmt.Errorf("%w: %w", extractor.ErrModelUnavailable, err)
	}
	log.Info("entity model ready")
	return rec, nil
}
