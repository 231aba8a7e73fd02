// Package integrity implements subresource-integrity style digest
// declarations of the form "<algorithm>-<base64>" and verifies file content
// against them. Supported algorithms are sha256, sha384 and sha512.
package integrity

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/ravel-run/ravel/pkg/errors"
	"github.com/ravel-run/ravel/pkg/model"
)

// Supported algorithm tokens. Matching is case-sensitive: "SHA256-..." is
// rejected rather than normalized.
const (
	AlgoSHA256 = "sha256"
	AlgoSHA384 = "sha384"
	AlgoSHA512 = "sha512"
)

func newHash(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case AlgoSHA256:
		return sha256.New(), nil
	case AlgoSHA384:
		return sha512.New384(), nil
	case AlgoSHA512:
		return sha512.New(), nil
	default:
		return nil, errors.Wrapf(errors.ErrIntegrityMalformed, "unsupported algorithm %q", algorithm)
	}
}

// Parse splits an SRI string on the first "-" and decodes the digest part
// from standard base64. The returned spec carries the raw digest bytes.
func Parse(integrity string) (*model.IntegritySpec, error) {
	algorithm, encoded, found := strings.Cut(integrity, "-")
	if !found || algorithm == "" || encoded == "" {
		return nil, errors.Wrapf(errors.ErrIntegrityMalformed, "expected <algorithm>-<base64>, got %q", integrity)
	}

	h, err := newHash(algorithm)
	if err != nil {
		return nil, err
	}

	digest, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrIntegrityMalformed, "invalid base64 digest in %q: %v", integrity, err)
	}
	if len(digest) != h.Size() {
		return nil, errors.Wrapf(errors.ErrIntegrityMalformed,
			"digest length %d does not match %s (want %d)", len(digest), algorithm, h.Size())
	}

	return &model.IntegritySpec{Algorithm: algorithm, Digest: digest}, nil
}

// Format renders a digest in the display encoding used in project files.
func Format(algorithm string, digest []byte) string {
	return fmt.Sprintf("%s-%s", algorithm, base64.StdEncoding.EncodeToString(digest))
}

// ComputeFile computes the digest of a file's full content with the named
// algorithm and returns the raw digest bytes.
func ComputeFile(path, algorithm string) ([]byte, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s for hashing", path)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(h, f); err != nil {
		return nil, errors.Wrapf(err, "hashing %s", path)
	}
	return h.Sum(nil), nil
}

// Result reports the outcome of one verification with both digests rendered
// in the configured display encoding for diagnostics.
type Result struct {
	OK       bool
	Expected string
	Actual   string
}

// VerifyFile computes the file's digest with the declared algorithm and
// compares it byte-for-byte to the expected digest.
func VerifyFile(path string, spec *model.IntegritySpec) (Result, error) {
	actual, err := ComputeFile(path, spec.Algorithm)
	if err != nil {
		return Result{}, err
	}

	return Result{
		OK:       bytes.Equal(actual, spec.Digest),
		Expected: Format(spec.Algorithm, spec.Digest),
		Actual:   Format(spec.Algorithm, actual),
	}, nil
}
