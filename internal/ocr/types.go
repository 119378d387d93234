// Package ocr turns a photographed card into a transcript: image cleanup
// followed by an OCR engine.
package ocr

import (
	"context"
	"image"
)

// Word is one recognized token with its pixel box.
type Word struct {
	Text       string          `json:"text"`
	Box        image.Rectangle `json:"box"`
	Confidence float64         `json:"confidence"`
}

// Result is the engine output for one normalized image.
type Result struct {
	Text  string `json:"text"`
	Words []Word `json:"words,omitempty"`
}

// Engine transcribes a normalized (preprocessed) image.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, image []byte) (Result, error)
}
