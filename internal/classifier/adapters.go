// Package classifier holds the moderation domain logic: the signal types
// produced by the model adapters, the category rules applied to them, and
// the frame aggregation for video. It talks to no backend itself, the
// adapters in internal/inference satisfy the interfaces defined here.
package classifier

import (
	"context"
	"image"
)

// TextScores are the per-dimension toxicity signals for one piece of
// text, each on a 0 to 100 scale.
type TextScores struct {
	Toxicity       float64 `json:"toxicity"`
	SevereToxicity float64 `json:"severe_toxicity"`
	Obscenity      float64 `json:"obscene"`
	IdentityAttack float64 `json:"identity_attack"`
	Insult         float64 `json:"insult"`
	Threat         float64 `json:"threat"`
	SexualExplicit float64 `json:"sexual_explicit"`
}

// TextSignal is the full scoring result for a text, including the
// language the text was detected to be in before any translation.
type TextSignal struct {
	Scores   TextScores
	Language string
}

// Detection is one localized finding from the nudity detector.
type Detection struct {
	Class string    `json:"class"`
	Score float64   `json:"score"`
	Box   []float64 `json:"box,omitempty"`
}

// LabelPrediction is the whole-image category guess with the full class
// distribution behind it.
type LabelPrediction struct {
	Label         string             `json:"label"`
	Score         float64            `json:"score"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

// TextScorer scores a text on every toxicity dimension. Implementations
// handle language detection and translation internally so the scores
// always describe English input.
type TextScorer interface {
	ScoreText(ctx context.Context, text string) (TextSignal, error)
}

// KeywordExtractor pulls the root words out of a text. It is best
// effort, callers tolerate failures.
type KeywordExtractor interface {
	Keywords(ctx context.Context, text string) ([]string, error)
}

// NudityDetector locates exposed-skin classes in an image.
type NudityDetector interface {
	DetectNudity(ctx context.Context, img image.Image) ([]Detection, error)
}

// ImageLabeler predicts the dominant content category of an image.
type ImageLabeler interface {
	ClassifyImage(ctx context.Context, img image.Image) (LabelPrediction, error)
}
