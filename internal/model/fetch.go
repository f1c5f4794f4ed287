package model

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Fetcher streams a remote artifact to a local path, reporting fractional
// progress as bytes arrive. Implementations must respect ctx cancellation;
// the caller supplies any retry/timeout ceiling through the context.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string, sizeHint int64, onProgress func(pct float64)) error
}

// HTTPFetcher is the default Fetcher over net/http.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with no overall timeout; large artifacts
// can take arbitrarily long, so lifetime is governed by the caller's ctx.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{}}
}

const progressChunk = 256 * 1024

// Fetch downloads url to dest, overwriting any previous partial file.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string, sizeHint int64, onProgress func(pct float64)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = sizeHint
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	var written int64
	buf := make([]byte, progressChunk)
	lastReport := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			out.Close()
			return err
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				out.Close()
				return fmt.Errorf("write: %w", writeErr)
			}
			written += int64(n)
			if onProgress != nil && total > 0 && time.Since(lastReport) > 50*time.Millisecond {
				onProgress(min(100, float64(written)/float64(total)*100))
				lastReport = time.Now()
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			return fmt.Errorf("read: %w", readErr)
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if onProgress != nil {
		onProgress(100)
	}
	return nil
}
