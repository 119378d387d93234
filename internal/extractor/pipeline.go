package extractor

import (
	"context"
	"errors"
	"strings"

	"cardscan-go/internal/logger"
	"cardscan-go/internal/types"
)

// Pipeline turns an OCR transcript into a ContactRecord:
// patterns -> entity model -> line scan -> merge.
// A Pipeline is read-only after New and may be shared across goroutines.
type Pipeline struct {
	patterns *PatternStage
	entities *EntityStage
	lines    *LineStage
	policy   MergePolicy
	log      *logger.Logger
}

type Option func(*Pipeline)

// WithPatterns replaces the ordered pattern set.
func WithPatterns(p []FieldPattern) Option {
	return func(pl *Pipeline) { pl.patterns = NewPatternStage(p) }
}

// WithJobTitles replaces the job-title keyword list.
func WithJobTitles(keywords []string) Option {
	return func(pl *Pipeline) { pl.lines = NewLineStage(keywords) }
}

func WithMergePolicy(p MergePolicy) Option {
	return func(pl *Pipeline) { pl.policy = p }
}

func WithLogger(l *logger.Logger) Option {
	return func(pl *Pipeline) { pl.log = l }
}

// New builds a pipeline around an already loaded entity model.
func New(rec Recognizer, opts ...Option) (*Pipeline, error) {
	if rec == nil {
		return nil, errors.Join(ErrModelUnavailable, errors.New("nil recognizer"))
	}
	p := &Pipeline{
		patterns: NewPatternStage(nil),
		entities: NewEntityStage(rec),
		lines:    NewLineStage(nil),
		policy:   PolicyOverwrite,
	}
	for _, o := range opts {
		o(p)
	}
	if p.log == nil {
		p.log = logger.New()
	}
	p.log = p.log.Component("extractor")
	return p, nil
}

// Trace is an extraction together with the candidates that produced it.
type Trace struct {
	Record     types.ContactRecord
	Candidates []types.Candidate
	Sources    map[types.FieldKey]types.Stage
}

// Extract returns the record for one transcript. On ErrModelUnavailable no
// record is returned.
func (p *Pipeline) Extract(ctx context.Context, transcript string) (types.ContactRecord, error) {
	t, err := p.Trace(ctx, transcript)
	if err != nil {
		return types.ContactRecord{}, err
	}
	return t.Record, nil
}

// Trace runs every stage and keeps all candidates.
func (p *Pipeline) Trace(ctx context.Context, transcript string) (Trace, error) {
	if strings.TrimSpace(transcript) == "" {
		p.log.Debug("blank transcript, returning empty record")
		return Trace{Sources: map[types.FieldKey]types.Stage{}}, nil
	}

	candidates := p.patterns.Candidates(transcript)

	ents, err := p.entities.Candidates(ctx, transcript)
	if err != nil {
		p.log.WithError(err).Error("entity recognition failed")
		return Trace{}, err
	}
	candidates = append(candidates, ents...)
	candidates = append(candidates, p.lines.Candidates(Lines(transcript))...)

	rec, sources := Resolve(p.policy, candidates)
	p.log.WithField("candidates", len(candidates)).
		WithField("filled", len(sources)).
		WithField("policy", string(p.policy)).
		Debug("extraction resolved")
	return Trace{Record: rec, Candidates: candidates, Sources: sources}, nil
}
