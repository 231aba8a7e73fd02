package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ravel-run/ravel/pkg/errors"
	"github.com/ravel-run/ravel/pkg/integrity"
	"github.com/ravel-run/ravel/pkg/model"
)

// Event represents a simple progress notification emitted while a batch
// runs. Rendering is entirely the caller's concern.
type Event struct {
	Phase    string // resolving|skipped|downloading|verifying|downloaded|failed|done
	Filename string
	Msg      string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Manager drives one download group at a time: resolve options, check
// existence, fetch to staging, verify, commit, and aggregate outcomes.
// Files are processed strictly sequentially in declaration order.
type Manager struct {
	fetcher   Fetcher
	committer Committer
	unpacker  Unpacker
	hooks     Hooks
}

// Option configures a Manager.
type Option func(*Manager)

// WithUnpacker enables archive extraction for tasks with unpack set.
func WithUnpacker(u Unpacker) Option {
	return func(m *Manager) { m.unpacker = u }
}

// WithHooks installs progress callbacks.
func WithHooks(h Hooks) Option {
	return func(m *Manager) { m.hooks = h }
}

// NewManager creates a download manager around a fetcher.
func NewManager(fetcher Fetcher, opts ...Option) *Manager {
	m := &Manager{fetcher: fetcher}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) emit(e Event) {
	if m.hooks.OnEvent != nil {
		m.hooks.OnEvent(e)
	}
}

// RunGroup executes a download group and returns its batch result. The whole
// group is resolved before any network activity; a single invalid file spec
// fails the group closed. When the group's raise_on_error flag is set, the
// first fetch or verification failure records its outcome, marks the result
// aborted and returns a non-nil error; remaining files are not attempted.
// Otherwise every file is attempted and the error return is nil even when
// individual files failed.
func (m *Manager) RunGroup(ctx context.Context, group *model.DownloadGroup) (*model.BatchResult, error) {
	m.emit(Event{Phase: "resolving", Msg: group.Name})
	tasks, err := ResolveGroup(group)
	if err != nil {
		return nil, err
	}

	stagingDir, err := os.MkdirTemp("", "ravel-dl-*")
	if err != nil {
		return nil, errors.Wrap(err, "could not create staging directory")
	}
	defer func() { _ = os.RemoveAll(stagingDir) }()

	result := &model.BatchResult{Group: group.Name}
	for i := range tasks {
		task := &tasks[i]
		outcome := m.runTask(ctx, task, stagingDir, i)
		result.Results = append(result.Results, model.FileResult{
			URL:      task.URL.String(),
			Filename: task.Filename,
			Outcome:  outcome,
		})

		failed := outcome.Kind == model.OutcomeFetchFailed || outcome.Kind == model.OutcomeVerificationFailed
		if failed && group.RaiseOnError {
			result.Aborted = true
			return result, errors.Wrapf(errors.ErrBatchAborted, "%s: %s", task.Filename, outcome.Kind)
		}
	}

	m.emit(Event{Phase: "done", Msg: group.Name})
	return result, nil
}

// runTask processes one resolved file through the skip/fetch/verify/commit
// progression and maps every failure mode to an outcome variant.
func (m *Manager) runTask(ctx context.Context, task *model.ResolvedFileTask, stagingDir string, index int) model.FileOutcome {
	if m.committer.ShouldSkip(task) {
		m.emit(Event{Phase: "skipped", Filename: task.Filename})
		return model.FileOutcome{Kind: model.OutcomeSkippedExisting}
	}

	m.emit(Event{Phase: "downloading", Filename: task.Filename, Msg: task.URL.String()})

	// The index prefix keeps staging paths unique even when two specs in a
	// group share a filename.
	stagedPath := filepath.Join(stagingDir, fmt.Sprintf("%03d-%s", index, task.Filename))
	written, err := m.fetcher.Fetch(ctx, task.URL, stagedPath)
	if err != nil {
		m.emit(Event{Phase: "failed", Filename: task.Filename, Msg: err.Error()})
		return model.FileOutcome{Kind: model.OutcomeFetchFailed, Err: err}
	}

	if task.Integrity != nil {
		m.emit(Event{Phase: "verifying", Filename: task.Filename})
		outcome, ok := m.verifyStaged(stagedPath, task)
		if !ok {
			return outcome
		}
	}

	if err := m.committer.Promote(stagedPath, task); err != nil {
		m.committer.Discard(stagedPath)
		m.emit(Event{Phase: "failed", Filename: task.Filename, Msg: err.Error()})
		return model.FileOutcome{Kind: model.OutcomeFetchFailed, Err: err}
	}

	if task.Unpack && m.unpacker != nil {
		if err := m.unpacker.ExtractAll(ctx, task.DestPath, task.Dir); err != nil {
			m.emit(Event{Phase: "failed", Filename: task.Filename, Msg: err.Error()})
			return model.FileOutcome{Kind: model.OutcomeFetchFailed, Err: errors.Wrap(err, "unpack failed")}
		}
	}

	m.emit(Event{Phase: "downloaded", Filename: task.Filename})
	return model.FileOutcome{Kind: model.OutcomeDownloaded, BytesWritten: written}
}

// verifyStaged checks the staged file against the declared digest. The
// second return value is false when the caller should stop with the returned
// outcome. Any failure discards the staged file and leaves the destination
// exactly as it was.
func (m *Manager) verifyStaged(stagedPath string, task *model.ResolvedFileTask) (model.FileOutcome, bool) {
	res, err := integrity.VerifyFile(stagedPath, task.Integrity)
	if err != nil {
		m.committer.Discard(stagedPath)
		m.emit(Event{Phase: "failed", Filename: task.Filename, Msg: err.Error()})
		return model.FileOutcome{Kind: model.OutcomeFetchFailed, Err: err}, false
	}
	if !res.OK {
		m.committer.Discard(stagedPath)
		m.emit(Event{Phase: "failed", Filename: task.Filename, Msg: "integrity mismatch"})
		return model.FileOutcome{
			Kind:     model.OutcomeVerificationFailed,
			Expected: res.Expected,
			Actual:   res.Actual,
		}, false
	}
	return model.FileOutcome{}, true
}
