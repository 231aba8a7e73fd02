package cli

import (
	"github.com/ravel-run/ravel/pkg/project"
)

// These variables will be set by the main package
var (
	ProjectFile *string
	Verbose     *bool
	LogLevel    *string
)

func projectPath() string {
	if ProjectFile != nil && *ProjectFile != "" {
		return *ProjectFile
	}
	return project.DefaultProjectFile
}

func verbose() bool {
	return Verbose != nil && *Verbose
}

// loadProject loads the active project file and enforces its optional
// `requires` version constraint.
func loadProject() (*project.Project, error) {
	p, err := project.Load(projectPath())
	if err != nil {
		return nil, err
	}
	if err := p.CheckRequires(Version); err != nil {
		return nil, err
	}
	return p, nil
}
