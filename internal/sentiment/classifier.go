package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Result is one classification outcome. The three class scores are
// probabilities; Label is the winning class and Score its probability.
type Result struct {
	Label    string  `json:"label"`
	Score    float64 `json:"score"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Classifier scores a piece of Tamil text
type Classifier interface {
	Classify(ctx context.Context, text string) (*Result, error)
}

// HTTPClassifier calls an inference sidecar that serves the multilingual
// sentiment model over a small JSON API.
type HTTPClassifier struct {
	addr     string
	maxChars int
	client   *http.Client
}

// NewHTTPClassifier creates a classifier against addr, e.g.
// http://localhost:8500. Inputs longer than maxChars are truncated.
func NewHTTPClassifier(addr string, maxChars int) *HTTPClassifier {
	return &HTTPClassifier{
		addr:     strings.TrimRight(addr, "/"),
		maxChars: maxChars,
		client:   &http.Client{Timeout: 90 * time.Second},
	}
}

// LazyClassifier defers construction of the underlying classifier until the
// first Classify call. The model connection is process-wide and expensive to
// warm, so nothing pays for it unless sentiment actually runs.
type LazyClassifier struct {
	build func() Classifier
	once  sync.Once
	inner Classifier
}

// NewLazyClassifier wraps build, calling it at most once
func NewLazyClassifier(build func() Classifier) *LazyClassifier {
	return &LazyClassifier{build: build}
}

// Classify initializes the inner classifier on first use and delegates
func (l *LazyClassifier) Classify(ctx context.Context, text string) (*Result, error) {
	l.once.Do(func() { l.inner = l.build() })
	return l.inner.Classify(ctx, text)
}

type classifyRequest struct {
	Text string `json:"text"`
}

// Classify sends the text to the model server
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (*Result, error) {
	if c.maxChars > 0 {
		if runes := []rune(text); len(runes) > c.maxChars {
			text = string(runes[:c.maxChars])
		}
	}

	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.addr+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("classifier unexpected response: %s", string(raw))
	}

	result.Label = strings.ToLower(strings.TrimSpace(result.Label))
	if result.Positive == 0 && result.Negative == 0 && result.Neutral == 0 {
		// Label-only servers; attribute the whole score to the winning class
		switch result.Label {
		case "positive":
			result.Positive = result.Score
		case "negative":
			result.Negative = result.Score
		case "neutral":
			result.Neutral = result.Score
		}
	}
	return &result, nil
}
