package download

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/ravel-run/ravel/pkg/errors"
	"github.com/ravel-run/ravel/pkg/integrity"
	"github.com/ravel-run/ravel/pkg/model"
)

// ResolveGroup resolves every file spec of a group into a concrete task,
// applying the file-over-group precedence for destination and overwrite.
// It fails on the first invalid spec so that a bad entry prevents the whole
// group from starting; no network activity happens here.
func ResolveGroup(group *model.DownloadGroup) ([]model.ResolvedFileTask, error) {
	tasks := make([]model.ResolvedFileTask, 0, len(group.Files))
	for i := range group.Files {
		task, err := resolveFile(group, &group.Files[i])
		if err != nil {
			return nil, errors.Wrapf(err, "group %q file %d (%s)", group.Name, i+1, group.Files[i].URL)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// resolveFile merges one file spec with its owning group's defaults. It is a
// pure function of its inputs.
func resolveFile(group *model.DownloadGroup, spec *model.FileSpec) (model.ResolvedFileTask, error) {
	if spec.URL == "" {
		return model.ResolvedFileTask{}, errors.Wrap(errors.ErrConfigValidation, "url is required")
	}

	u, err := url.Parse(spec.URL)
	if err != nil {
		return model.ResolvedFileTask{}, errors.Wrapf(errors.ErrConfigValidation, "invalid url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return model.ResolvedFileTask{}, errors.Wrapf(errors.ErrConfigValidation, "unsupported url scheme %q", u.Scheme)
	}

	dir := group.Destination
	if spec.Destination != "" {
		dir = spec.Destination
	}
	if dir == "" {
		return model.ResolvedFileTask{}, errors.Wrap(errors.ErrConfigValidation, "destination missing at both file and group level")
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return model.ResolvedFileTask{}, errors.Wrapf(errors.ErrConfigValidation, "invalid destination %q: %v", dir, err)
	}

	filename := spec.LocalName()
	if filename == "" {
		filename = path.Base(u.Path)
		if filename == "." || filename == "/" || strings.HasSuffix(u.Path, "/") {
			return model.ResolvedFileTask{}, errors.Wrapf(errors.ErrConfigValidation, "cannot derive filename from url %q", spec.URL)
		}
	}

	overwrite := group.Overwrite
	if spec.Overwrite != nil {
		overwrite = *spec.Overwrite
	}

	var integritySpec *model.IntegritySpec
	if spec.Integrity != "" {
		integritySpec, err = integrity.Parse(spec.Integrity)
		if err != nil {
			return model.ResolvedFileTask{}, errors.Wrap(errors.ErrConfigValidation, err.Error())
		}
	}

	return model.ResolvedFileTask{
		URL:       u,
		Filename:  filename,
		Dir:       absDir,
		DestPath:  filepath.Join(absDir, filename),
		Overwrite: overwrite,
		Integrity: integritySpec,
		Unpack:    spec.Unpack,
	}, nil
}
