// Package model provides the data structures shared between the project
// configuration, the download engine and the CLI.
package model

import "net/url"

// DownloadGroup is a named set of files sharing default download options.
// Groups are built by the project loader and are immutable for the duration
// of one invocation.
type DownloadGroup struct {
	Name         string      `yaml:"-"`
	Destination  string      `yaml:"destination"`
	Overwrite    bool        `yaml:"overwrite"`
	Verbose      *bool       `yaml:"verbose"` // nil means the default (true)
	RaiseOnError bool        `yaml:"raise_on_error"`
	Auth         *AuthConfig `yaml:"auth"`
	Hooks        *HookConfig `yaml:"hooks"`
	Files        []FileSpec  `yaml:"files"`
}

// IsVerbose resolves the verbose flag, which defaults to true when unset.
func (g *DownloadGroup) IsVerbose() bool {
	return g.Verbose == nil || *g.Verbose
}

// FileSpec describes one file to download, owned by exactly one group.
// Destination and Overwrite, when present, override the group-level values.
type FileSpec struct {
	URL         string `yaml:"url"`
	Name        string `yaml:"name"`
	Filename    string `yaml:"filename"`
	Destination string `yaml:"destination"`
	Overwrite   *bool  `yaml:"overwrite"`
	Integrity   string `yaml:"integrity"`
	Unpack      bool   `yaml:"unpack"`
}

// LocalName returns the configured local file name; Name and Filename are
// interchangeable in the project file, Name wins when both are set.
func (f *FileSpec) LocalName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Filename
}

// AuthConfig selects one authentication scheme for a group's requests.
type AuthConfig struct {
	Bearer   string            `yaml:"bearer"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Headers  map[string]string `yaml:"headers"`
}

// HookConfig carries optional inline Tengo scripts run around a batch.
type HookConfig struct {
	PreDownload  string `yaml:"pre_download"`
	PostDownload string `yaml:"post_download"`
}

// ResolvedFileTask is a fully concrete download task computed from a FileSpec
// plus its owning group. It is created fresh per run and never mutated.
type ResolvedFileTask struct {
	URL       *url.URL
	Filename  string
	Dir       string // absolute destination directory
	DestPath  string // Dir joined with Filename
	Overwrite bool
	Integrity *IntegritySpec // nil when no integrity was declared
	Unpack    bool
}

// IntegritySpec is a parsed SRI-style integrity declaration.
type IntegritySpec struct {
	Algorithm string // sha256, sha384 or sha512
	Digest    []byte // raw expected digest bytes
}

// OutcomeKind enumerates the possible results of attempting one file.
type OutcomeKind string

// Outcome kinds. Exactly one applies per file per run.
const (
	OutcomeDownloaded         OutcomeKind = "downloaded"
	OutcomeSkippedExisting    OutcomeKind = "skipped"
	OutcomeVerificationFailed OutcomeKind = "verification_failed"
	OutcomeFetchFailed        OutcomeKind = "fetch_failed"
)

// FileOutcome is the result of attempting one resolved file task.
type FileOutcome struct {
	Kind         OutcomeKind
	BytesWritten int64  // set for OutcomeDownloaded
	Expected     string // display-encoded digest, set for OutcomeVerificationFailed
	Actual       string // display-encoded digest, set for OutcomeVerificationFailed
	Err          error  // cause, set for OutcomeFetchFailed
}

// FileResult pairs a file's identity with its outcome.
type FileResult struct {
	URL      string
	Filename string
	Outcome  FileOutcome
}

// BatchResult is the ordered record of one download group run. It is
// immutable once returned; the CLI only reads it.
type BatchResult struct {
	Group   string
	Results []FileResult
	Aborted bool // true when raise_on_error terminated the batch early
}

// Downloaded returns the number of files that were fetched and committed.
func (b *BatchResult) Downloaded() int { return b.count(OutcomeDownloaded) }

// Skipped returns the number of files skipped because they already existed.
func (b *BatchResult) Skipped() int { return b.count(OutcomeSkippedExisting) }

// Failed returns the number of files that failed to fetch or verify.
func (b *BatchResult) Failed() int {
	return b.count(OutcomeFetchFailed) + b.count(OutcomeVerificationFailed)
}

func (b *BatchResult) count(kind OutcomeKind) int {
	n := 0
	for _, r := range b.Results {
		if r.Outcome.Kind == kind {
			n++
		}
	}
	return n
}
