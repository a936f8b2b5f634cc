package services

import (
	"context"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-api/internal/classifier"
)

type fakeTextScorer struct {
	signal classifier.TextSignal
	err    error
}

func (f *fakeTextScorer) ScoreText(ctx context.Context, text string) (classifier.TextSignal, error) {
	return f.signal, f.err
}

type fakeKeywordExtractor struct {
	words []string
	err   error
}

func (f *fakeKeywordExtractor) Keywords(ctx context.Context, text string) ([]string, error) {
	return f.words, f.err
}

type fakeNudityDetector struct {
	detections []classifier.Detection
	err        error
}

func (f *fakeNudityDetector) DetectNudity(ctx context.Context, img image.Image) ([]classifier.Detection, error) {
	return f.detections, f.err
}

type fakeImageLabeler struct {
	prediction classifier.LabelPrediction
	err        error
}

func (f *fakeImageLabeler) ClassifyImage(ctx context.Context, img image.Image) (classifier.LabelPrediction, error) {
	return f.prediction, f.err
}

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}

func TestClassifyTextFlagsViolentContent(t *testing.T) {
	scorer := &fakeTextScorer{
		signal: classifier.TextSignal{
			Scores:   classifier.TextScores{Threat: 80, Toxicity: 40},
			Language: "en",
		},
	}
	svc := NewClassificationService(scorer, &fakeKeywordExtractor{words: []string{"hurt"}}, nil, nil)

	verdict, err := svc.ClassifyText(context.Background(), "I will hurt you")
	require.NoError(t, err)

	assert.True(t, verdict.Flagged)
	assert.Equal(t, []string{"Violence"}, verdict.Categories)
	assert.Equal(t, []string{"hurt"}, verdict.Result["root_words"])
	assert.Equal(t, "en", verdict.Result["detected_language"])
	assert.Equal(t, "The text contains illicit content related to: Violence.", verdict.Result["conclusion"])
}

func TestClassifyTextCleanContent(t *testing.T) {
	scorer := &fakeTextScorer{
		signal: classifier.TextSignal{
			Scores:   classifier.TextScores{Toxicity: 5},
			Language: "en",
		},
	}
	svc := NewClassificationService(scorer, &fakeKeywordExtractor{words: []string{"weather", "nice"}}, nil, nil)

	verdict, err := svc.ClassifyText(context.Background(), "the weather is nice")
	require.NoError(t, err)

	assert.False(t, verdict.Flagged)
	assert.Empty(t, verdict.Categories)
	assert.Equal(t, "The text appears clean with no significant illicit content detected.", verdict.Result["conclusion"])
}

func TestClassifyTextToleratesKeywordFailure(t *testing.T) {
	scorer := &fakeTextScorer{
		signal: classifier.TextSignal{Scores: classifier.TextScores{}, Language: "en"},
	}
	keywords := &fakeKeywordExtractor{err: errors.New("extractor down")}
	svc := NewClassificationService(scorer, keywords, nil, nil)

	verdict, err := svc.ClassifyText(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, []string{}, verdict.Result["root_words"])
}

func TestClassifyTextPropagatesScorerFailure(t *testing.T) {
	scorer := &fakeTextScorer{err: errors.New("model server down")}
	svc := NewClassificationService(scorer, &fakeKeywordExtractor{}, nil, nil)

	_, err := svc.ClassifyText(context.Background(), "hello")
	assert.Error(t, err)
}

func TestClassifyImageExplicitContent(t *testing.T) {
	nudity := &fakeNudityDetector{
		detections: []classifier.Detection{
			{Class: "FEMALE_BREAST_EXPOSED", Score: 0.91},
		},
	}
	labeler := &fakeImageLabeler{
		prediction: classifier.LabelPrediction{
			Label: "porn",
			Score: 0.97,
			Probabilities: map[string]float64{
				"porn":    0.97,
				"neutral": 0.03,
			},
		},
	}
	svc := NewClassificationService(nil, nil, nudity, labeler)

	verdict, err := svc.ClassifyImage(context.Background(), testImage())
	require.NoError(t, err)

	assert.True(t, verdict.Flagged)
	assert.Equal(t, []string{"Nudity", "Detected Category → porn"}, verdict.Categories)

	nudityResult, ok := verdict.Result["nudity"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, nudityResult["is_explicit"])
	assert.InDelta(t, 0.91, nudityResult["score"], 0.001)

	categoryResult, ok := verdict.Result["category"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "porn", categoryResult["label"])
}

func TestClassifyImageNeutralStillCarriesLabel(t *testing.T) {
	nudity := &fakeNudityDetector{}
	labeler := &fakeImageLabeler{
		prediction: classifier.LabelPrediction{Label: "neutral", Score: 0.99},
	}
	svc := NewClassificationService(nil, nil, nudity, labeler)

	verdict, err := svc.ClassifyImage(context.Background(), testImage())
	require.NoError(t, err)

	assert.True(t, verdict.Flagged)
	assert.Equal(t, []string{"Detected Category → neutral"}, verdict.Categories)
}

func TestClassifyImagePropagatesDetectorFailure(t *testing.T) {
	nudity := &fakeNudityDetector{err: errors.New("detector down")}
	svc := NewClassificationService(nil, nil, nudity, &fakeImageLabeler{})

	_, err := svc.ClassifyImage(context.Background(), testImage())
	assert.Error(t, err)
}

func TestClassifyVideoAggregatesFrames(t *testing.T) {
	nudity := &fakeNudityDetector{
		detections: []classifier.Detection{
			{Class: "EXPOSED_BUTTOCKS", Score: 0.88},
		},
	}
	labeler := &fakeImageLabeler{
		prediction: classifier.LabelPrediction{Label: "porn", Score: 0.9},
	}
	svc := NewClassificationService(nil, nil, nudity, labeler)

	src := &stubFrameSource{frames: framesUpTo(100), total: 100}
	verdict, err := svc.ClassifyVideo(context.Background(), src, 50)
	require.NoError(t, err)

	assert.True(t, verdict.Flagged)
	assert.Contains(t, verdict.Categories, "Nudity")
	assert.Equal(t, 100, verdict.Result["total_frames"])
	assert.Equal(t, 2, verdict.Result["processed_frames"])
}

type stubFrameSource struct {
	frames []classifier.Frame
	total  int
	pos    int
}

func (s *stubFrameSource) Next() (*classifier.Frame, error) {
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return &f, nil
}

func (s *stubFrameSource) TotalFrames() int { return s.total }
func (s *stubFrameSource) Close() error     { return nil }

func framesUpTo(n int) []classifier.Frame {
	frames := make([]classifier.Frame, 0, n)
	for i := 1; i <= n; i++ {
		frames = append(frames, classifier.Frame{Index: i, Image: testImage()})
	}
	return frames
}
