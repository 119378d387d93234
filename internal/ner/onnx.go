package ner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"

	"cardscan-go/internal/types"
)

// ONNXRecognizer runs a BERT-style token classification model locally.
type ONNXRecognizer struct {
	session    *ort.DynamicAdvancedSession
	tk         *tokenizer.Tokenizer
	labels     []string
	maxLen     int
	tokenTypes bool

	// one inference at a time on the shared session and tokenizer
	mu sync.Mutex
}

var ortInit sync.Mutex

func initEnvironment(libPath string) error {
	ortInit.Lock()
	defer ortInit.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("init onnxruntime: %w", err)
	}
	return nil
}

// NewONNXRecognizer loads the tokenizer and model once; the handle is shared
// by every extraction.
func NewONNXRecognizer(cfg Config) (*ONNXRecognizer, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, errors.New("onnx backend needs model and tokenizer paths")
	}
	labels := cfg.Labels
	if len(labels) == 0 {
		labels = CoNLLLabels
	}
	maxLen := cfg.MaxSeqLen
	if maxLen <= 2 {
		maxLen = 256
	}
	if err := initEnvironment(cfg.OrtLibPath); err != nil {
		return nil, err
	}
	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	inputs := []string{"input_ids", "attention_mask"}
	if cfg.TokenTypeIDs {
		inputs = append(inputs, "token_type_ids")
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, inputs, []string{"logits"}, nil)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", cfg.ModelPath, err)
	}
	return &ONNXRecognizer{
		session:    session,
		tk:         tk,
		labels:     labels,
		maxLen:     maxLen,
		tokenTypes: cfg.TokenTypeIDs,
	}, nil
}

func (o *ONNXRecognizer) Recognize(_ context.Context, text string) ([]types.EntitySpan, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil, errors.New("onnx recognizer is closed")
	}

	enc, err := o.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	n := len(enc.Ids)
	if n > o.maxLen {
		n = o.maxLen
	}
	if n == 0 {
		return nil, nil
	}

	ids := make([]int64, n)
	mask := make([]int64, n)
	typeIDs := make([]int64, n)
	for i := 0; i < n; i++ {
		ids[i] = int64(enc.Ids[i])
		mask[i] = 1
		if i < len(enc.AttentionMask) {
			mask[i] = int64(enc.AttentionMask[i])
		}
		if i < len(enc.TypeIds) {
			typeIDs[i] = int64(enc.TypeIds[i])
		}
	}

	shape := ort.NewShape(1, int64(n))
	idT, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer idT.Destroy()
	maskT, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer maskT.Destroy()
	in := []ort.Value{idT, maskT}
	if o.tokenTypes {
		typeT, err := ort.NewTensor(shape, typeIDs)
		if err != nil {
			return nil, fmt.Errorf("token_type_ids tensor: %w", err)
		}
		defer typeT.Destroy()
		in = append(in, typeT)
	}
	logits, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(n), int64(len(o.labels))))
	if err != nil {
		return nil, fmt.Errorf("logits tensor: %w", err)
	}
	defer logits.Destroy()

	if err := o.session.Run(in, []ort.Value{logits}); err != nil {
		return nil, fmt.Errorf("run model: %w", err)
	}

	tokens := make([]Token, n)
	scores := logits.GetData()
	for i := 0; i < n; i++ {
		tok := Token{Tag: o.labels[argmax(scores[i*len(o.labels) : (i+1)*len(o.labels)])]}
		if i < len(enc.Offsets) && len(enc.Offsets[i]) == 2 {
			tok.Start, tok.End = enc.Offsets[i][0], enc.Offsets[i][1]
		}
		if i < len(enc.SpecialTokenMask) {
			tok.Special = enc.SpecialTokenMask[i] == 1
		}
		tokens[i] = tok
	}
	return DecodeBIO(text, tokens), nil
}

func (o *ONNXRecognizer) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	err := o.session.Destroy()
	o.session = nil
	return err
}

func argmax(v []float32) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
