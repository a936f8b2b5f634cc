// Package media handles remote content retrieval and decoding for the
// moderation pipeline: fetching submitted URLs, decoding images, and
// sampling video frames through ffmpeg.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"moderation-api/internal/pkg/errors"
)

const (
	// ImageFetchTimeout bounds the download of a submitted image URL.
	ImageFetchTimeout = 10 * time.Second
	// VideoFetchTimeout bounds the download of a submitted video URL.
	VideoFetchTimeout = 30 * time.Second

	maxFetchBytes = 100 << 20
)

type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	// The per-call context carries the deadline, the client itself
	// stays unbounded.
	return &Fetcher{client: &http.Client{}}
}

// Fetch downloads the content behind url within the given timeout. A
// deadline hit maps to ErrFetchTimeout, other transport failures map to
// ErrAdapterUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, fmt.Sprintf("invalid content URL: %v", err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrFetchTimeout,
				fmt.Sprintf("fetching %s exceeded %s", url, timeout))
		}
		return nil, errors.Wrap(errors.ErrAdapterUnavailable,
			fmt.Sprintf("failed to fetch content from %s: %v", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrap(errors.ErrAdapterUnavailable,
			fmt.Sprintf("content host returned %d for %s", resp.StatusCode, url))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrFetchTimeout,
				fmt.Sprintf("fetching %s exceeded %s", url, timeout))
		}
		return nil, errors.Wrap(errors.ErrAdapterUnavailable,
			fmt.Sprintf("failed to read content from %s: %v", url, err))
	}
	if len(data) > maxFetchBytes {
		return nil, errors.Wrap(errors.ErrInvalidInput, "remote content exceeds the size limit")
	}

	return data, nil
}
