package inference

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-api/internal/classifier"
	"moderation-api/internal/pkg/errors"
)

func TestScoreTextEnglishSkipsTranslation(t *testing.T) {
	translateCalled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/language/detect":
			json.NewEncoder(w).Encode(map[string]string{"language": "en"})
		case "/v1/language/translate":
			translateCalled = true
			w.WriteHeader(http.StatusOK)
		case "/v1/text/scores":
			json.NewEncoder(w).Encode(map[string]float64{"toxicity": 12.5, "threat": 3})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	signal, err := client.ScoreText(context.Background(), "hello there")
	require.NoError(t, err)

	assert.Equal(t, "en", signal.Language)
	assert.False(t, translateCalled)
	assert.InDelta(t, 12.5, signal.Scores.Toxicity, 1e-9)
}

func TestScoreTextTranslatesForeignText(t *testing.T) {
	var scoredText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/language/detect":
			json.NewEncoder(w).Encode(map[string]string{"language": "es"})
		case "/v1/language/translate":
			var req struct {
				Text   string `json:"text"`
				Source string `json:"source"`
				Target string `json:"target"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "es", req.Source)
			assert.Equal(t, "en", req.Target)
			json.NewEncoder(w).Encode(map[string]string{"text": "i will hurt you"})
		case "/v1/text/scores":
			var req struct {
				Text string `json:"text"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			scoredText = req.Text
			json.NewEncoder(w).Encode(map[string]float64{"threat": 82})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	signal, err := client.ScoreText(context.Background(), "te voy a hacer daño")
	require.NoError(t, err)

	// Scores must describe the translated text, the reported language
	// stays the detected one.
	assert.Equal(t, "i will hurt you", scoredText)
	assert.Equal(t, "es", signal.Language)
	assert.InDelta(t, 82, signal.Scores.Threat, 1e-9)
}

func TestScoreTextTranslationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/language/detect":
			json.NewEncoder(w).Encode(map[string]string{"language": "de"})
		case "/v1/language/translate":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.ScoreText(context.Background(), "ich werde dich finden")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTranslationUnavailable))
}

func TestScoreTextServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.ScoreText(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAdapterUnavailable))
}

func TestDetectNudityPostsJPEG(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/image/nudity", r.URL.Path)
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"detections": []map[string]interface{}{
				{"class": "FEMALE_BREAST_EXPOSED", "score": 0.91},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	detections, err := client.DetectNudity(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	require.NoError(t, err)

	require.Len(t, detections, 1)
	assert.Equal(t, "FEMALE_BREAST_EXPOSED", detections[0].Class)
	assert.InDelta(t, 0.91, detections[0].Score, 1e-9)
}

func TestClassifyImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/image/category", r.URL.Path)
		json.NewEncoder(w).Encode(classifier.LabelPrediction{
			Label:         "hentai",
			Score:         0.77,
			Probabilities: map[string]float64{"hentai": 0.77, "neutral": 0.23},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	prediction, err := client.ClassifyImage(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	require.NoError(t, err)

	assert.Equal(t, "hentai", prediction.Label)
	assert.InDelta(t, 0.77, prediction.Score, 1e-9)
}

func TestKeywords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/text/keywords", r.URL.Path)
		json.NewEncoder(w).Encode(map[string][]string{"keywords": {"kill", "threat"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	words, err := client.Keywords(context.Background(), "killing threats")
	require.NoError(t, err)
	assert.Equal(t, []string{"kill", "threat"}, words)
}
