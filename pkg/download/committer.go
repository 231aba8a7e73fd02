package download

import (
	"os"

	"github.com/ravel-run/ravel/pkg/errors"
	"github.com/ravel-run/ravel/pkg/fsutil"
	"github.com/ravel-run/ravel/pkg/model"
)

// Committer owns the promote-or-discard step of the staged download
// protocol. A destination path is only ever touched by Promote, never by
// direct streaming writes, so it is always either absent, its prior content,
// or the complete new content.
type Committer struct{}

// ShouldSkip reports whether the task's destination already exists and the
// effective overwrite flag is false. The orchestrator consults this before
// fetching so no transfer is wasted on a file that would be skipped.
func (Committer) ShouldSkip(task *model.ResolvedFileTask) bool {
	if task.Overwrite {
		return false
	}
	_, err := os.Stat(task.DestPath)
	return err == nil
}

// Promote moves the staged file to the task's destination path, creating
// parent directories as needed. The move is a rename where possible, so the
// destination either gains the full new content or keeps its prior state.
func (Committer) Promote(stagedPath string, task *model.ResolvedFileTask) error {
	if err := os.MkdirAll(task.Dir, fsutil.DirModeDefault); err != nil {
		return errors.Wrapf(err, "could not create destination directory %s", task.Dir)
	}
	if err := fsutil.Move(stagedPath, task.DestPath); err != nil {
		return errors.Wrap(err, "could not promote staged file")
	}
	if err := os.Chmod(task.DestPath, fsutil.FileModeDefault); err != nil {
		return errors.Wrap(err, "could not set permissions")
	}
	return nil
}

// Discard deletes a staged file that failed verification or will not be
// promoted. The destination is left untouched. A missing staged file is not
// an error.
func (Committer) Discard(stagedPath string) {
	_ = os.Remove(stagedPath)
}
