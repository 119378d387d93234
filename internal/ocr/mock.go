package ocr

import "context"

// MockTranscript is returned by the mock engine when none is given.
const MockTranscript = "Jane Doe\nGlobex Corporation\nMarketing Manager\n+1 415 555 0132\njane.doe@globex.com\n500 Market Street"

// MockEngine returns a fixed transcript; used with USE_MOCK_OCR=true.
type MockEngine struct {
	text string
}

func NewMockEngine(text string) *MockEngine {
	if text == "" {
		text = MockTranscript
	}
	return &MockEngine{text: text}
}

func (m *MockEngine) Name() string { return "mock" }

func (m *MockEngine) Transcribe(ctx context.Context, _ []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{Text: m.text}, nil
}
