package classifier

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/sirupsen/logrus"

	"moderation-api/internal/logger"
)

// DefaultFrameStride selects every 50th frame when the caller does not
// ask for a different sampling rate.
const DefaultFrameStride = 50

// Frame is one decoded video frame. Index is 1-based within the source
// video. A nil Image marks a frame that was selected but could not be
// decoded, it still counts as processed.
type Frame struct {
	Index int
	Image image.Image
}

// FrameSource yields the frames of one video in order. Next returns
// io.EOF after the last frame. Sources are allowed to pre-filter to the
// sampled frames only, as long as Index is preserved.
type FrameSource interface {
	Next() (*Frame, error)
	TotalFrames() int
	Close() error
}

// VideoSummary is the aggregated verdict over the sampled frames.
type VideoSummary struct {
	DominantCategories []string       `json:"dominant_categories"`
	CategoryCounts     map[string]int `json:"category_counts"`
	TotalFrames        int            `json:"total_frames"`
	ProcessedFrames    int            `json:"processed_frames"`
}

// AggregateFrames runs classify over every frame whose 1-based index is
// divisible by stride and tallies the categories. A frame that fails to
// decode or classify is logged and skipped, it never aborts the scan. A
// video shorter than the stride yields an empty summary, not an error.
func AggregateFrames(ctx context.Context, src FrameSource, stride int, classify func(context.Context, image.Image) ([]string, error)) (*VideoSummary, error) {
	if stride < 1 {
		return nil, fmt.Errorf("frame stride must be at least 1, got %d", stride)
	}

	summary := &VideoSummary{
		DominantCategories: []string{},
		CategoryCounts:     make(map[string]int),
		TotalFrames:        src.TotalFrames(),
	}
	firstSeen := make(map[string]int)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if frame.Index%stride != 0 {
			continue
		}
		summary.ProcessedFrames++

		if frame.Image == nil {
			logger.LogEvent(logrus.WarnLevel, "Skipping undecodable video frame", logrus.Fields{
				"frame_index": frame.Index,
			})
			continue
		}

		categories, err := classify(ctx, frame.Image)
		if err != nil {
			logger.LogEvent(logrus.WarnLevel, "Frame classification failed, skipping frame", logrus.Fields{
				"frame_index": frame.Index,
				"error":       err.Error(),
			})
			continue
		}

		for _, category := range categories {
			if summary.CategoryCounts[category] == 0 {
				firstSeen[category] = len(firstSeen)
			}
			summary.CategoryCounts[category]++
		}
	}

	summary.DominantCategories = dominantCategories(summary.CategoryCounts, firstSeen, 3)
	return summary, nil
}

// dominantCategories ranks categories by occurrence count, breaking ties
// by which category was seen first, and returns the top n.
func dominantCategories(counts map[string]int, firstSeen map[string]int, n int) []string {
	ranked := make([]string, 0, len(counts))
	for category := range counts {
		ranked = append(ranked, category)
	}

	// Insertion sort keeps the ordering rule explicit for the small
	// category sets involved here.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0; j-- {
			a, b := ranked[j-1], ranked[j]
			if counts[b] > counts[a] || (counts[b] == counts[a] && firstSeen[b] < firstSeen[a]) {
				ranked[j-1], ranked[j] = b, a
			} else {
				break
			}
		}
	}

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
