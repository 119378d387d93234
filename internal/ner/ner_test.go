package ner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cardscan-go/internal/extractor"
	"cardscan-go/internal/logger"
	"cardscan-go/internal/types"
)

func TestDecodeBIO(t *testing.T) {
	text := "John Smith works at Acme Corp in Berlin"
	tokens := []Token{
		{Tag: "O", Special: true},
		{Tag: "B-PER", Start: 0, End: 4},
		{Tag: "I-PER", Start: 5, End: 10},
		{Tag: "O", Start: 11, End: 16},
		{Tag: "O", Start: 17, End: 19},
		{Tag: "B-ORG", Start: 20, End: 24},
		{Tag: "I-ORG", Start: 25, End: 29},
		{Tag: "O", Start: 30, End: 32},
		{Tag: "B-LOC", Start: 33, End: 36},
		{Tag: "I-LOC", Start: 36, End: 39},
		{Tag: "O", Special: true},
	}
	got := DecodeBIO(text, tokens)
	want := []types.EntitySpan{
		{Label: "PER", Text: "John Smith"},
		{Label: "ORG", Text: "Acme Corp"},
		{Label: "LOC", Text: "Berlin"},
	}
	if len(got) != len(want) {
		t.Fatalf("DecodeBIO() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("span %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDecodeBIOAdjacentBegins(t *testing.T) {
	text := "Ann Bob"
	got := DecodeBIO(text, []Token{
		{Tag: "B-PER", Start: 0, End: 3},
		{Tag: "B-PER", Start: 4, End: 7},
	})
	if len(got) != 2 || got[0].Text != "Ann" || got[1].Text != "Bob" {
		t.Fatalf("DecodeBIO() = %+v", got)
	}
}

func TestDecodeBIOByteOffsets(t *testing.T) {
	text := "Zoë Ng, Müller Labs"
	tests := []struct {
		name   string
		tokens []Token
		want   []string
	}{
		{"multibyte name", []Token{{Tag: "B-PER", Start: 0, End: 4}, {Tag: "I-PER", Start: 5, End: 7}}, []string{"Zoë Ng"}},
		{"after multibyte text", []Token{{Tag: "B-ORG", Start: 9, End: 21}}, []string{"Müller Labs"}},
		{"cut inside character dropped", []Token{{Tag: "B-PER", Start: 0, End: 3}}, nil},
		{"past end dropped", []Token{{Tag: "B-ORG", Start: 9, End: 99}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeBIO(text, tt.tokens)
			if len(got) != len(tt.want) {
				t.Fatalf("DecodeBIO() = %+v, want %q", got, tt.want)
			}
			for i, w := range tt.want {
				if got[i].Text != w {
					t.Fatalf("span %d = %q, want %q", i, got[i].Text, w)
				}
			}
		})
	}
}

func TestGazetteerOrder(t *testing.T) {
	g := NewGazetteer(map[string]string{"Paris": "GPE", "Acme": "ORG"})
	spans, err := g.Recognize(context.Background(), "Acme Paris office, Acme HQ")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	want := []string{"Acme", "Paris", "Acme"}
	if len(spans) != len(want) {
		t.Fatalf("spans = %+v", spans)
	}
	for i, w := range want {
		if spans[i].Text != w {
			t.Fatalf("span %d = %+v, want %s", i, spans[i], w)
		}
	}
}

func newRemote(t *testing.T, url string) *RemoteRecognizer {
	t.Helper()
	r, err := NewRemoteRecognizer(Config{RemoteURL: url, Timeout: time.Second, MaxRetryTime: 2 * time.Second}, logger.Discard())
	if err != nil {
		t.Fatalf("NewRemoteRecognizer() error = %v", err)
	}
	return r
}

func TestRemoteRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ents":[{"label":"PERSON","text":"Jane Doe"},{"label":"EMAIL","text":"j@d.io"}]}`))
	}))
	defer srv.Close()

	spans, err := newRemote(t, srv.URL).Recognize(context.Background(), "Jane Doe j@d.io")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(spans) != 2 || spans[0].Label != "PERSON" || spans[1].Text != "j@d.io" {
		t.Fatalf("spans = %+v", spans)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestRemoteClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := newRemote(t, srv.URL).Recognize(context.Background(), "x"); err == nil {
		t.Fatalf("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestParseEntitiesFenced(t *testing.T) {
	spans, err := parseEntities([]byte("```json\n{\"entities\":[{\"label\":\"ORG\",\"text\":\"Acme\"}]}\n```"))
	if err != nil {
		t.Fatalf("parseEntities() error = %v", err)
	}
	if len(spans) != 1 || spans[0].Text != "Acme" {
		t.Fatalf("spans = %+v", spans)
	}
	if _, err := parseEntities([]byte("nothing here")); err == nil {
		t.Fatalf("expected error without JSON")
	}
}

func TestOpen(t *testing.T) {
	rec, err := Open(Config{Backend: "mock"}, logger.Discard())
	if err != nil {
		t.Fatalf("Open(mock) error = %v", err)
	}
	defer rec.Close()

	_, err = Open(Config{Backend: "nope"}, logger.Discard())
	if !errors.Is(err, extractor.ErrModelUnavailable) {
		t.Fatalf("Open(unknown) error = %v, want ErrModelUnavailable", err)
	}
	_, err = Open(Config{Backend: "onnx"}, logger.Discard())
	if !errors.Is(err, extractor.ErrModelUnavailable) {
		t.Fatalf("Open(onnx without paths) error = %v, want ErrModelUnavailable", err)
	}
}
