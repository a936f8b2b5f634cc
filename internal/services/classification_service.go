package services

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/sirupsen/logrus"

	"moderation-api/internal/classifier"
	"moderation-api/internal/logger"
	"moderation-api/internal/models"
)

// Verdict is the outcome of classifying one piece of content. Flagged
// follows directly from the category set.
type Verdict struct {
	Categories []string
	Flagged    bool
	Result     models.JSON
}

type ClassificationService interface {
	ClassifyText(ctx context.Context, text string) (*Verdict, error)
	ClassifyImage(ctx context.Context, img image.Image) (*Verdict, error)
	ClassifyVideo(ctx context.Context, src classifier.FrameSource, stride int) (*Verdict, error)
}

type classificationService struct {
	textScorer classifier.TextScorer
	keywords   classifier.KeywordExtractor
	nudity     classifier.NudityDetector
	labeler    classifier.ImageLabeler
}

func NewClassificationService(
	textScorer classifier.TextScorer,
	keywords classifier.KeywordExtractor,
	nudity classifier.NudityDetector,
	labeler classifier.ImageLabeler,
) ClassificationService {
	return &classificationService{
		textScorer: textScorer,
		keywords:   keywords,
		nudity:     nudity,
		labeler:    labeler,
	}
}

func (s *classificationService) ClassifyText(ctx context.Context, text string) (*Verdict, error) {
	signal, err := s.textScorer.ScoreText(ctx, text)
	if err != nil {
		return nil, err
	}

	categories := classifier.TextCategories(signal.Scores, text)

	// Root word extraction is best effort, a failure never sinks the
	// verdict.
	rootWords, err := s.keywords.Keywords(ctx, text)
	if err != nil {
		logger.LogEvent(logrus.WarnLevel, "Root word extraction failed", logrus.Fields{
			"error": err.Error(),
		})
		rootWords = nil
	}
	if rootWords == nil {
		rootWords = []string{}
	}

	return &Verdict{
		Categories: categories,
		Flagged:    len(categories) > 0,
		Result: models.JSON{
			"scores":            signal.Scores,
			"root_words":        rootWords,
			"detected_language": signal.Language,
			"conclusion":        textConclusion(categories),
		},
	}, nil
}

func (s *classificationService) ClassifyImage(ctx context.Context, img image.Image) (*Verdict, error) {
	detections, err := s.nudity.DetectNudity(ctx, img)
	if err != nil {
		return nil, err
	}

	label, err := s.labeler.ClassifyImage(ctx, img)
	if err != nil {
		return nil, err
	}

	categories := classifier.ImageCategories(detections, label)
	explicit, explicitScore := classifier.ExplicitNudity(detections)
	if detections == nil {
		detections = []classifier.Detection{}
	}

	return &Verdict{
		Categories: categories,
		Flagged:    len(categories) > 0,
		Result: models.JSON{
			"nudity": map[string]interface{}{
				"is_explicit": explicit,
				"score":       explicitScore,
				"detections":  detections,
			},
			"category": map[string]interface{}{
				"label":         label.Label,
				"score":         label.Score,
				"probabilities": label.Probabilities,
			},
		},
	}, nil
}

func (s *classificationService) ClassifyVideo(ctx context.Context, src classifier.FrameSource, stride int) (*Verdict, error) {
	summary, err := classifier.AggregateFrames(ctx, src, stride, s.frameCategories)
	if err != nil {
		return nil, err
	}

	return &Verdict{
		Categories: summary.DominantCategories,
		Flagged:    len(summary.DominantCategories) > 0,
		Result: models.JSON{
			"dominant_categories": summary.DominantCategories,
			"category_counts":     summary.CategoryCounts,
			"total_frames":        summary.TotalFrames,
			"processed_frames":    summary.ProcessedFrames,
		},
	}, nil
}

// frameCategories runs the full image pipeline over one video frame.
func (s *classificationService) frameCategories(ctx context.Context, img image.Image) ([]string, error) {
	detections, err := s.nudity.DetectNudity(ctx, img)
	if err != nil {
		return nil, err
	}

	label, err := s.labeler.ClassifyImage(ctx, img)
	if err != nil {
		return nil, err
	}

	return classifier.ImageCategories(detections, label), nil
}

func textConclusion(categories []string) string {
	if len(categories) == 0 {
		return "The text appears clean with no significant illicit content detected."
	}
	return fmt.Sprintf("The text contains illicit content related to: %s.", strings.Join(categories, ", "))
}
