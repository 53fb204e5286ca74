package meme

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"mememaker/internal/domain"
)

// Fetcher downloads source images to local files.
type Fetcher struct {
	Client   *http.Client
	Timeout  time.Duration
	MaxBytes int64
}

// Fetch downloads imageURL into path. The body is written as-is.
// path must not exist yet.
func (f Fetcher) Fetch(ctx context.Context, imageURL, path string) error {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", domain.ErrFetch, err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: download %s: %w", domain.ErrFetch, imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: download %s: unexpected status %d", domain.ErrFetch, imageURL, resp.StatusCode)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrIO, path, err)
	}

	body := io.Reader(resp.Body)
	if f.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBytes+1)
	}

	n, copyErr := io.Copy(file, body)
	closeErr := file.Close()

	switch {
	case copyErr != nil:
		return fmt.Errorf("%w: read body of %s: %w", domain.ErrFetch, imageURL, copyErr)
	case f.MaxBytes > 0 && n > f.MaxBytes:
		return fmt.Errorf("%w: image exceeds %d bytes", domain.ErrFetch, f.MaxBytes)
	case closeErr != nil:
		return fmt.Errorf("%w: write %s: %w", domain.ErrIO, path, closeErr)
	}
	return nil
}
