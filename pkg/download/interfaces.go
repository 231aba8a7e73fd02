// Package download implements the batch download engine: per-file option
// resolution, fetching into a per-run staging area, integrity verification
// and atomic promotion to the destination path.
//
//go:generate mockgen -destination=./mocks/download.go . Fetcher,Unpacker
package download

import (
	"context"
	"net/url"
)

// Fetcher retrieves the raw bytes for one URL into a staging file. It
// returns the number of bytes written. Transport failures (connection,
// timeout, non-2xx status, staging write errors) are returned as errors;
// integrity checking is not the fetcher's concern.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL, stagingPath string) (int64, error)
}

// Unpacker extracts a committed archive into a directory. Used for file
// specs with unpack enabled.
type Unpacker interface {
	ExtractAll(ctx context.Context, archivePath, destDir string) error
}
