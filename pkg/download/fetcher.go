package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/ravel-run/ravel/pkg/auth"
	"github.com/ravel-run/ravel/pkg/errors"
	"github.com/ravel-run/ravel/pkg/fsutil"
)

// DefaultTimeout bounds one fetch attempt when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// HTTPFetcher downloads files over HTTP(S). Exactly one attempt is made per
// call; there are no retries.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	auth      auth.Authenticator
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithAuth sets the authenticator applied to every request.
func WithAuth(a auth.Authenticator) FetcherOption {
	return func(f *HTTPFetcher) { f.auth = a }
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// NewHTTPFetcher creates a fetcher whose requests are bounded by timeout.
func NewHTTPFetcher(timeout time.Duration, opts ...FetcherOption) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: "ravel/1.0",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch streams the response body for u into stagingPath and returns the
// byte count. The staging file is removed on any failure after creation.
func (f *HTTPFetcher) Fetch(ctx context.Context, u *url.URL, stagingPath string) (int64, error) {
	resp, err := f.doRequest(ctx, u)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	out, err := os.OpenFile(stagingPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fsutil.FileModeSecure)
	if err != nil {
		return 0, errors.Wrap(err, "could not create staging file")
	}

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(stagingPath)
		return 0, errors.Wrap(err, "could not write staging file")
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(stagingPath)
		return 0, errors.Wrap(err, "could not sync staging file")
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(stagingPath)
		return 0, errors.Wrap(err, "could not close staging file")
	}

	return n, nil
}

func (f *HTTPFetcher) doRequest(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	if f.auth != nil {
		if err := f.auth.Apply(req); err != nil {
			return nil, errors.Wrap(err, "failed to apply authentication")
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDownloadFailed, err.Error())
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, errors.ErrDownloadFailed)
	}
	return resp, nil
}
