package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClassifier(t *testing.T) {
	var received classifyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/classify", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(Result{
			Label:    "POSITIVE",
			Score:    0.87,
			Positive: 0.87,
			Negative: 0.08,
			Neutral:  0.05,
		})
	}))
	defer server.Close()

	classifier := NewHTTPClassifier(server.URL, 0)
	result, err := classifier.Classify(context.Background(), "சென்னை செய்தி")
	require.NoError(t, err)

	assert.Equal(t, "சென்னை செய்தி", received.Text)
	assert.Equal(t, "positive", result.Label)
	assert.InDelta(t, 0.87, result.Score, 0.001)
	assert.InDelta(t, 0.08, result.Negative, 0.001)
}

func TestHTTPClassifier_DerivesClassScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Label-only server response, no per-class probabilities
		json.NewEncoder(w).Encode(map[string]interface{}{"label": "negative", "score": 0.72})
	}))
	defer server.Close()

	classifier := NewHTTPClassifier(server.URL, 0)
	result, err := classifier.Classify(context.Background(), "ஏதோ ஒரு உரை")
	require.NoError(t, err)

	assert.InDelta(t, 0.72, result.Negative, 0.001)
	assert.Zero(t, result.Positive)
	assert.Zero(t, result.Neutral)
}

func TestHTTPClassifier_TruncatesLongInput(t *testing.T) {
	var received classifyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(Result{Label: "neutral", Score: 1})
	}))
	defer server.Close()

	long := ""
	for i := 0; i < 100; i++ {
		long += "சென்னை "
	}
	classifier := NewHTTPClassifier(server.URL, 50)
	_, err := classifier.Classify(context.Background(), long)
	require.NoError(t, err)

	assert.Equal(t, 50, utf8.RuneCountInString(received.Text))
}

func TestLazyClassifier_BuildsOnceOnFirstUse(t *testing.T) {
	builds := 0
	lazy := NewLazyClassifier(func() Classifier {
		builds++
		return &fakeClassifier{}
	})
	assert.Zero(t, builds)

	_, err := lazy.Classify(context.Background(), "சென்னை")
	require.NoError(t, err)
	_, err = lazy.Classify(context.Background(), "மதுரை")
	require.NoError(t, err)
	assert.Equal(t, 1, builds)
}

func TestHTTPClassifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	classifier := NewHTTPClassifier(server.URL, 0)
	_, err := classifier.Classify(context.Background(), "உரை")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
