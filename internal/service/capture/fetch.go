package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher downloads the audio bytes behind a recording reference.
type Fetcher interface {
	Fetch(ctx context.Context, recordingURL string) ([]byte, error)
}

// HTTPFetcher pulls recordings over plain HTTP. Provider recording URLs
// require the account's basic-auth credentials.
type HTTPFetcher struct {
	httpClient *http.Client
	username   string
	password   string
}

// NewHTTPFetcher builds a recording fetcher. username/password may be empty
// for unauthenticated sources.
func NewHTTPFetcher(username, password string) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		username:   username,
		password:   password,
	}
}

// Fetch downloads one recording. Any transport error or non-2xx response is
// returned as a retryable error.
func (f *HTTPFetcher) Fetch(ctx context.Context, recordingURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build recording request: %w", err)
	}
	if f.username != "" {
		req.SetBasicAuth(f.username, f.password)
	}
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch recording: unexpected status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read recording body: %w", err)
	}
	return audio, nil
}
