// Package project loads ravel.yaml project files: named shortcut scripts,
// variables, and download groups.
package project

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	version "github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"

	"github.com/ravel-run/ravel/pkg/errors"
	"github.com/ravel-run/ravel/pkg/model"
)

// DefaultProjectFile is the project file name looked up in the working
// directory when none is given.
const DefaultProjectFile = "ravel.yaml"

// Project is a parsed and validated project file.
type Project struct {
	Name      string
	Requires  string
	Vars      map[string]string
	Scripts   map[string]*ScriptEntry
	Downloads map[string]*model.DownloadGroup

	// Path is the absolute path the project was loaded from, empty when
	// loaded from a reader.
	Path string
}

// document mirrors the raw YAML shape, including the accepted key aliases.
// ravel/rav/scripts/commands are interchangeable script keys; rav is kept so
// existing rav project files load unchanged.
type document struct {
	Name      string                          `yaml:"name"`
	Requires  string                          `yaml:"requires"`
	Vars      map[string]string               `yaml:"vars"`
	Variables map[string]string               `yaml:"variables"`
	Ravel     map[string]*ScriptEntry         `yaml:"ravel"`
	Rav       map[string]*ScriptEntry         `yaml:"rav"`
	Scripts   map[string]*ScriptEntry         `yaml:"scripts"`
	Commands  map[string]*ScriptEntry         `yaml:"commands"`
	Downloads map[string]*model.DownloadGroup `yaml:"downloads"`
}

// Load reads and validates the project file at path.
func Load(path string) (*Project, error) {
	if path == "" {
		return nil, errors.ErrEmptyProjectPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrProjectNotFound, path)
		}
		return nil, errors.Wrapf(err, "failed to open project file: %s", path)
	}
	defer func() { _ = file.Close() }()

	project, err := LoadFromReader(file)
	if err != nil {
		return nil, err
	}
	project.Path = absPath
	return project, nil
}

// LoadFromReader loads a project from an io.Reader.
func LoadFromReader(reader io.Reader) (*Project, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read project data")
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrProjectParse, err.Error())
	}

	project := &Project{
		Name:      doc.Name,
		Requires:  doc.Requires,
		Vars:      doc.Vars,
		Scripts:   firstScripts(doc.Ravel, doc.Rav, doc.Scripts, doc.Commands),
		Downloads: doc.Downloads,
	}

	if project.Vars == nil {
		project.Vars = doc.Variables
	}
	if project.Downloads == nil {
		project.Downloads = map[string]*model.DownloadGroup{}
	}
	for name, group := range project.Downloads {
		group.Name = name
	}

	if err := project.validate(); err != nil {
		return nil, err
	}
	return project, nil
}

// firstScripts picks the first declared script map among the alias keys.
func firstScripts(candidates ...map[string]*ScriptEntry) map[string]*ScriptEntry {
	for _, scripts := range candidates {
		if scripts != nil {
			return scripts
		}
	}
	return map[string]*ScriptEntry{}
}

func (p *Project) validate() error {
	for name, group := range p.Downloads {
		if group == nil {
			return errors.Wrapf(errors.ErrConfigValidation, "download group %q is empty", name)
		}
		if len(group.Files) == 0 {
			return errors.Wrapf(errors.ErrConfigValidation, "download group %q has no files", name)
		}
		// A group destination is only required for files that don't carry
		// their own.
		if group.Destination == "" {
			for i := range group.Files {
				if group.Files[i].Destination == "" {
					return errors.Wrapf(errors.ErrConfigValidation,
						"download group %q file %d: destination missing at both file and group level", name, i+1)
				}
			}
		}
	}
	return nil
}

// CheckRequires verifies the running version against the project's optional
// `requires` constraint.
func (p *Project) CheckRequires(current string) error {
	if p.Requires == "" {
		return nil
	}

	constraints, err := version.NewConstraint(p.Requires)
	if err != nil {
		return errors.Wrapf(errors.ErrConfigValidation, "invalid requires constraint %q: %v", p.Requires, err)
	}
	running, err := version.NewVersion(current)
	if err != nil {
		return errors.Wrapf(errors.ErrConfigValidation, "invalid running version %q: %v", current, err)
	}
	if !constraints.Check(running) {
		return errors.Wrapf(errors.ErrVersionConstraint, "project requires ravel %s, running %s", p.Requires, current)
	}
	return nil
}

// DownloadGroup resolves a download group by name, substituting variables in
// its destination, URLs and auth material. The returned group is a copy.
func (p *Project) DownloadGroup(name string) (*model.DownloadGroup, error) {
	src, ok := p.Downloads[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrGroupNotFound, "download group %q", name)
	}

	group := *src
	group.Name = name

	var err error
	if group.Destination, err = p.Substitute(src.Destination); err != nil {
		return nil, err
	}

	if src.Auth != nil {
		auth := *src.Auth
		if auth.Bearer, err = p.Substitute(auth.Bearer); err != nil {
			return nil, err
		}
		if auth.Username, err = p.Substitute(auth.Username); err != nil {
			return nil, err
		}
		if auth.Password, err = p.Substitute(auth.Password); err != nil {
			return nil, err
		}
		if len(auth.Headers) > 0 {
			headers := make(map[string]string, len(auth.Headers))
			for k, v := range auth.Headers {
				if headers[k], err = p.Substitute(v); err != nil {
					return nil, err
				}
			}
			auth.Headers = headers
		}
		group.Auth = &auth
	}

	files := make([]model.FileSpec, len(src.Files))
	for i, file := range src.Files {
		if file.URL, err = p.Substitute(file.URL); err != nil {
			return nil, err
		}
		if file.Destination, err = p.Substitute(file.Destination); err != nil {
			return nil, err
		}
		files[i] = file
	}
	group.Files = files

	return &group, nil
}

// ScriptNames returns all shortcut names in sorted order.
func (p *Project) ScriptNames() []string {
	names := make([]string, 0, len(p.Scripts))
	for name := range p.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DownloadGroupNames returns all download group names in sorted order.
func (p *Project) DownloadGroupNames() []string {
	names := make([]string, 0, len(p.Downloads))
	for name := range p.Downloads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
