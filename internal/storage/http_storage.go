package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (*DecodedImage, error)
}

const (
	defaultFetchAttempts = 3
	defaultMaxImageBytes = 20 * 1024 * 1024
)

// HTTPImageFetcher implements ImageFetcher over plain HTTP(S)
type HTTPImageFetcher struct {
	client   *http.Client
	attempts int
	backoff  time.Duration
	maxBytes int64
}

// HTTPOption customizes an HTTPImageFetcher
type HTTPOption func(*HTTPImageFetcher)

// WithTimeout sets the overall client timeout per attempt
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTPImageFetcher) {
		if d > 0 {
			h.client.Timeout = d
		}
	}
}

// WithBackoff sets the base delay between retries. Attempt n waits n*base.
func WithBackoff(base time.Duration) HTTPOption {
	return func(h *HTTPImageFetcher) {
		h.backoff = base
	}
}

// WithMaxBytes caps how much encoded data is read per image
func WithMaxBytes(n int64) HTTPOption {
	return func(h *HTTPImageFetcher) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

// NewHTTPImageFetcher creates an HTTP image fetcher
func NewHTTPImageFetcher(opts ...HTTPOption) *HTTPImageFetcher {
	transport := &http.Transport{
		// Connection pooling optimized for image fetching
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	h := &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		attempts: defaultFetchAttempts,
		backoff:  time.Second,
		maxBytes: defaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (*DecodedImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "Photo-Inspector/1.0")

	var lastErr error
	attempt := 0
	for attempt < h.attempts {
		attempt++

		img, retry, err := h.fetchOnce(req)
		if err == nil {
			return img, nil
		}
		lastErr = err
		if !retry || attempt == h.attempts {
			break
		}

		// linear backoff, abandoned when the caller gives up
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to fetch image: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * h.backoff):
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", attempt, lastErr)
}

// fetchOnce performs a single attempt and reports whether a failure is worth retrying
func (h *HTTPImageFetcher) fetchOnce(req *http.Request) (*DecodedImage, bool, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		// a cancelled caller is final
		if req.Context().Err() != nil {
			return nil, false, req.Context().Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("client error: status code %d: %w", resp.StatusCode, ErrImageNotFound)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if resp.ContentLength > h.maxBytes {
		return nil, false, fmt.Errorf("%w: content length %d > %d", ErrImageTooLarge, resp.ContentLength, h.maxBytes)
	}

	img, err := decodeLimited(resp.Body, h.maxBytes)
	if err != nil {
		return nil, false, err
	}
	return img, false, nil
}
