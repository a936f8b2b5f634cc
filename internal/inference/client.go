// Package inference implements the classifier adapter interfaces against
// the HTTP model server that hosts the toxicity, nudity and image
// category models.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"
	"time"

	"moderation-api/internal/classifier"
	"moderation-api/internal/pkg/errors"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type textRequest struct {
	Text string `json:"text"`
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	Text string `json:"text"`
}

type detectLanguageResponse struct {
	Language string `json:"language"`
}

type keywordsResponse struct {
	Keywords []string `json:"keywords"`
}

type nudityResponse struct {
	Detections []classifier.Detection `json:"detections"`
}

// ScoreText detects the language of the text, translates it to English
// when needed, and scores the English text on every toxicity dimension.
func (c *Client) ScoreText(ctx context.Context, text string) (classifier.TextSignal, error) {
	signal := classifier.TextSignal{Language: "en"}

	var detected detectLanguageResponse
	if err := c.postJSON(ctx, "/v1/language/detect", textRequest{Text: text}, &detected); err != nil {
		return signal, err
	}
	if detected.Language != "" {
		signal.Language = detected.Language
	}

	scored := text
	if signal.Language != "en" {
		var translated translateResponse
		err := c.postJSON(ctx, "/v1/language/translate", translateRequest{
			Text:   text,
			Source: signal.Language,
			Target: "en",
		}, &translated)
		if err != nil {
			return signal, errors.Wrap(errors.ErrTranslationUnavailable,
				fmt.Sprintf("failed to translate %s text: %v", signal.Language, err))
		}
		scored = translated.Text
	}

	if err := c.postJSON(ctx, "/v1/text/scores", textRequest{Text: scored}, &signal.Scores); err != nil {
		return signal, err
	}
	return signal, nil
}

// Keywords returns the root words of the text.
func (c *Client) Keywords(ctx context.Context, text string) ([]string, error) {
	var resp keywordsResponse
	if err := c.postJSON(ctx, "/v1/text/keywords", textRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Keywords, nil
}

// DetectNudity runs the nudity detector over the image.
func (c *Client) DetectNudity(ctx context.Context, img image.Image) ([]classifier.Detection, error) {
	var resp nudityResponse
	if err := c.postImage(ctx, "/v1/image/nudity", img, &resp); err != nil {
		return nil, err
	}
	return resp.Detections, nil
}

// ClassifyImage predicts the dominant content category of the image.
func (c *Client) ClassifyImage(ctx context.Context, img image.Image) (classifier.LabelPrediction, error) {
	var prediction classifier.LabelPrediction
	if err := c.postImage(ctx, "/v1/image/category", img, &prediction); err != nil {
		return classifier.LabelPrediction{}, err
	}
	return prediction, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode model server request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build model server request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, path, out)
}

func (c *Client) postImage(ctx context.Context, path string, img image.Image, out interface{}) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return errors.Wrap(err, "failed to encode image for model server")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return errors.Wrap(err, "failed to build model server request")
	}
	req.Header.Set("Content-Type", "image/jpeg")

	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrAdapterUnavailable,
			fmt.Sprintf("model server unreachable on %s: %v", path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrap(errors.ErrAdapterUnavailable,
			fmt.Sprintf("model server returned %d on %s", resp.StatusCode, path))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrAdapterUnavailable,
			fmt.Sprintf("failed to decode model server response from %s: %v", path, err))
	}
	return nil
}
