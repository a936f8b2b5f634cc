package media

import (
	"context"
	"fmt"
	"image/jpeg"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"moderation-api/internal/classifier"
	"moderation-api/internal/logger"
	"moderation-api/internal/pkg/errors"
)

// VideoSampler extracts every nth frame of a video file through ffmpeg
// and exposes them as a classifier.FrameSource.
type VideoSampler struct {
	ffmpegPath  string
	ffprobePath string
}

func NewVideoSampler() *VideoSampler {
	return &VideoSampler{
		ffmpegPath:  pathFromEnv("FFMPEG_PATH", "ffmpeg"),
		ffprobePath: pathFromEnv("FFPROBE_PATH", "ffprobe"),
	}
}

func pathFromEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Open probes the video and extracts the frames whose 1-based index is
// divisible by stride into a temp directory. The returned source owns
// that directory and removes it on Close.
func (s *VideoSampler) Open(ctx context.Context, path string, stride int) (classifier.FrameSource, error) {
	if stride < 1 {
		return nil, errors.Wrap(errors.ErrInvalidInput, fmt.Sprintf("frame stride must be at least 1, got %d", stride))
	}

	total, err := s.probeFrameCount(ctx, path)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "moderation-frames-")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create frame directory")
	}

	// ffmpeg numbers frames from 0, so n+1 is the 1-based index.
	selectExpr := fmt.Sprintf("select=not(mod(n+1\\,%d))", stride)
	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-i", path,
		"-vf", selectExpr,
		"-vsync", "vfr",
		filepath.Join(dir, "frame_%06d.jpg"),
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(dir)
		logger.LogEvent(logrus.WarnLevel, "ffmpeg frame extraction failed", logrus.Fields{
			"video":  path,
			"error":  err.Error(),
			"output": truncate(string(output), 512),
		})
		return nil, errors.Wrap(errors.ErrInvalidInput, "unreadable video container")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrap(err, "failed to list extracted frames")
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".jpg") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	return &frameDirSource{dir: dir, files: files, stride: stride, total: total}, nil
}

func (s *VideoSampler) probeFrameCount(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, s.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_frames",
		"-show_entries", "stream=nb_read_frames",
		"-of", "default=nokey=1:noprint_wrappers=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, errors.Wrap(errors.ErrInvalidInput, "unreadable video container")
	}

	count, err := strconv.Atoi(strings.TrimSpace(string(output)))
	if err != nil {
		// Some containers report N/A, the scan still works without a
		// total.
		return 0, nil
	}
	return count, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// frameDirSource walks the extracted frame files in order. Extraction
// pre-filtered to the sampled frames, so the ith file carries the
// original index (i+1)*stride.
type frameDirSource struct {
	dir    string
	files  []string
	stride int
	total  int
	pos    int
}

func (f *frameDirSource) Next() (*classifier.Frame, error) {
	if f.pos >= len(f.files) {
		return nil, io.EOF
	}

	path := f.files[f.pos]
	f.pos++
	frame := &classifier.Frame{Index: f.pos * f.stride}

	file, err := os.Open(path)
	if err != nil {
		return frame, nil
	}
	defer file.Close()

	img, err := jpeg.Decode(file)
	if err != nil {
		// Leave Image nil, the aggregator counts the frame and moves on.
		return frame, nil
	}
	frame.Image = img
	return frame, nil
}

func (f *frameDirSource) TotalFrames() int {
	return f.total
}

func (f *frameDirSource) Close() error {
	return os.RemoveAll(f.dir)
}
