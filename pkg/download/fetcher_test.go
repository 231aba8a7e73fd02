package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ravel-run/ravel/pkg/auth"
	"github.com/ravel-run/ravel/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectError    bool
		expectErrorMsg string
		expectContent  string
	}{
		{
			name: "successful download",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("test content"))
			},
			expectContent: "test content",
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expectError:    true,
			expectErrorMsg: "unexpected status code: 404",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectError:    true,
			expectErrorMsg: "unexpected status code: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			u, err := url.Parse(server.URL + "/lib.js")
			require.NoError(t, err)

			staged := filepath.Join(t.TempDir(), "lib.js")
			f := NewHTTPFetcher(time.Second)

			n, err := f.Fetch(context.Background(), u, staged)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErrorMsg)
				assert.ErrorIs(t, err, errors.ErrDownloadFailed)
				_, statErr := os.Stat(staged)
				assert.True(t, os.IsNotExist(statErr), "no staging file should remain after a failed fetch")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.expectContent)), n)

			content, err := os.ReadFile(staged)
			require.NoError(t, err)
			assert.Equal(t, tt.expectContent, string(content))
		})
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	f := NewHTTPFetcher(50 * time.Millisecond)
	_, err = f.Fetch(context.Background(), u, filepath.Join(t.TempDir(), "slow.bin"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDownloadFailed)
}

func TestHTTPFetcher_SingleAttempt(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	f := NewHTTPFetcher(time.Second)
	_, err = f.Fetch(context.Background(), u, filepath.Join(t.TempDir(), "once.bin"))
	require.Error(t, err)
	assert.Equal(t, 1, calls, "exactly one attempt per file per run")
}

func TestHTTPFetcher_AppliesAuthAndUserAgent(t *testing.T) {
	var gotAuth, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	f := NewHTTPFetcher(time.Second,
		WithAuth(auth.BearerAuth{Token: "secret"}),
		WithUserAgent("ravel-test/1.0"),
	)
	_, err = f.Fetch(context.Background(), u, filepath.Join(t.TempDir(), "auth.bin"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "ravel-test/1.0", gotUA)
}
