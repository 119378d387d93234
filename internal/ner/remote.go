package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"cardscan-go/internal/logger"
	"cardscan-go/internal/types"
)

// RemoteRecognizer calls an HTTP NER service (spaCy-style) that answers
// {"ents":[{"label":"PERSON","text":"..."}]}.
type RemoteRecognizer struct {
	url          string
	apiKey       string
	client       *http.Client
	maxRetryTime time.Duration
	log          *logger.Logger
}

func NewRemoteRecognizer(cfg Config, log *logger.Logger) (*RemoteRecognizer, error) {
	if cfg.RemoteURL == "" {
		return nil, errors.New("NER_REMOTE_URL not configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetry := cfg.MaxRetryTime
	if maxRetry <= 0 {
		maxRetry = 20 * time.Second
	}
	return &RemoteRecognizer{
		url:          cfg.RemoteURL,
		apiKey:       cfg.APIKey,
		client:       &http.Client{Timeout: timeout},
		maxRetryTime: maxRetry,
		log:          log.Component("ner-remote"),
	}, nil
}

type remoteEntity struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type remoteResponse struct {
	Ents     []remoteEntity `json:"ents"`
	Entities []remoteEntity `json:"entities"`
}

func (r *RemoteRecognizer) Recognize(ctx context.Context, text string) ([]types.EntitySpan, error) {
	data, _ := json.Marshal(map[string]string{"text": text})

	var spans []types.EntitySpan
	var lastErr error

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if r.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+r.apiKey)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			lastErr = err
			r.log.WithError(err).Warn("ner request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		r.log.WithField("http_status", resp.StatusCode).Debug("ner raw:\n" + string(body))

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("ner server error: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
			return lastErr
		}
		if resp.StatusCode >= 400 {
			// Permanent: don't retry on client errors
			lastErr = fmt.Errorf("ner request rejected: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
			return backoff.Permanent(lastErr)
		}

		parsed, err := parseEntities(body)
		if err != nil {
			lastErr = err
			return lastErr
		}
		spans = parsed
		lastErr = nil
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = r.maxRetryTime
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, fmt.Errorf("remote ner failed: %w", lastErr)
	}
	return spans, nil
}

func (r *RemoteRecognizer) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// parseEntities accepts the bare response object or one embedded in noise
// (proxies that wrap the payload, markdown fences).
func parseEntities(body []byte) ([]types.EntitySpan, error) {
	var resp remoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		raw := extractJSON(string(body))
		if raw == "" {
			return nil, fmt.Errorf("no JSON found in ner output")
		}
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			return nil, fmt.Errorf("decode ner output: %w", err)
		}
	}
	ents := resp.Ents
	if len(ents) == 0 {
		ents = resp.Entities
	}
	out := make([]types.EntitySpan, 0, len(ents))
	for _, e := range ents {
		out = append(out, types.EntitySpan{Label: e.Label, Text: e.Text})
	}
	return out, nil
}

// extractJSON finds the first balanced JSON object in a string and returns it.
// It strips common markdown fences first.
func extractJSON(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, r := range []string{"```json", "```", "`"} {
		s = strings.ReplaceAll(s, r, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}
