package project

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ravel-run/ravel/pkg/errors"
)

// JoinSeparator joins multiple commands into one shell line.
const JoinSeparator = " && "

// ScriptEntry is one value under scripts:. Three YAML forms are accepted:
// a plain string, a list of strings (list items may also be {cmd: ...}
// mappings), or a mapping with prefix / working_dir / cmd keys. The mapping
// form doubles as a group definition other shortcuts inherit from.
type ScriptEntry struct {
	commands   []string
	prefix     *string
	workingDir *string
	mapping    bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *ScriptEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var cmd string
		if err := node.Decode(&cmd); err != nil {
			return err
		}
		e.commands = []string{cmd}
		return nil

	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind == yaml.MappingNode {
				var sub struct {
					Cmd yaml.Node `yaml:"cmd"`
				}
				if err := item.Decode(&sub); err != nil {
					return err
				}
				cmds, err := decodeCmd(&sub.Cmd)
				if err != nil {
					return err
				}
				e.commands = append(e.commands, cmds...)
				continue
			}
			var cmd string
			if err := item.Decode(&cmd); err != nil {
				return err
			}
			e.commands = append(e.commands, cmd)
		}
		return nil

	case yaml.MappingNode:
		var sub struct {
			Prefix     *string   `yaml:"prefix"`
			WorkingDir *string   `yaml:"working_dir"`
			Cmd        yaml.Node `yaml:"cmd"`
		}
		if err := node.Decode(&sub); err != nil {
			return err
		}
		e.mapping = true
		e.prefix = sub.Prefix
		e.workingDir = sub.WorkingDir
		cmds, err := decodeCmd(&sub.Cmd)
		if err != nil {
			return err
		}
		e.commands = cmds
		return nil

	default:
		return errors.Wrap(errors.ErrProjectParse, "script entry must be a string, list or mapping")
	}
}

func decodeCmd(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case 0: // key absent
		return nil, nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		var cmd string
		if err := node.Decode(&cmd); err != nil {
			return nil, err
		}
		return []string{cmd}, nil
	case yaml.SequenceNode:
		var cmds []string
		if err := node.Decode(&cmds); err != nil {
			return nil, err
		}
		return cmds, nil
	default:
		return nil, errors.Wrap(errors.ErrProjectParse, "cmd must be a string or list")
	}
}

// ResolvedScript is a shortcut with group inheritance applied but variables
// not yet substituted.
type ResolvedScript struct {
	Name       string
	Commands   []string
	Prefix     string
	WorkingDir string
}

// ResolveScript looks up a shortcut and applies group defaults. The group of
// `backend:migrate` is `backend`; a group definition may be declared under
// either `backend` or `backend:`. Entry-level prefix and working_dir
// override the group's, and an explicit empty prefix clears it.
func (p *Project) ResolveScript(name string) (*ResolvedScript, error) {
	entry, ok := p.Scripts[name]
	if !ok || entry == nil {
		return nil, errors.Wrapf(errors.ErrScriptNotFound, "%q", name)
	}

	resolved := &ResolvedScript{
		Name:     name,
		Commands: append([]string(nil), entry.commands...),
	}

	if group := p.groupDefinition(scriptGroupName(name)); group != nil {
		if group.prefix != nil {
			resolved.Prefix = *group.prefix
		}
		if group.workingDir != nil {
			resolved.WorkingDir = *group.workingDir
		}
	}
	if entry.mapping {
		if entry.prefix != nil {
			resolved.Prefix = *entry.prefix
		}
		if entry.workingDir != nil {
			resolved.WorkingDir = *entry.workingDir
		}
	}

	return resolved, nil
}

// RenderScript resolves a shortcut into a single executable shell line:
// variables substituted, prefix applied per command, extra args appended to
// the last command, commands joined with " && " and working_dir prepended
// as a cd.
func (p *Project) RenderScript(name string, args []string) (string, error) {
	resolved, err := p.ResolveScript(name)
	if err != nil {
		return "", err
	}
	return p.Render(resolved, args)
}

// Render turns a resolved script into its final shell line.
func (p *Project) Render(resolved *ResolvedScript, args []string) (string, error) {
	commands := append([]string(nil), resolved.Commands...)
	if len(args) > 0 && len(commands) > 0 {
		commands[len(commands)-1] += " " + strings.Join(args, " ")
	}

	prefix, err := p.Substitute(resolved.Prefix)
	if err != nil {
		return "", err
	}

	processed := make([]string, 0, len(commands))
	for _, cmd := range commands {
		cmd, err := p.Substitute(cmd)
		if err != nil {
			return "", err
		}
		if prefix != "" {
			cmd = prefix + " " + cmd
		}
		processed = append(processed, cmd)
	}

	joined := strings.Join(processed, JoinSeparator)

	if resolved.WorkingDir != "" {
		workingDir, err := p.Substitute(resolved.WorkingDir)
		if err != nil {
			return "", err
		}
		joined = "cd " + workingDir + JoinSeparator + joined
	}

	return joined, nil
}

// IsGroupDefinition reports whether the named script entry is a mapping-form
// group definition rather than a directly runnable shortcut.
func (p *Project) IsGroupDefinition(name string) bool {
	entry := p.Scripts[name]
	return entry != nil && entry.mapping && len(entry.commands) == 0
}

// Commands exposes the entry's raw command list for display purposes.
func (e *ScriptEntry) Commands() []string {
	return append([]string(nil), e.commands...)
}

func scriptGroupName(name string) string {
	group, _, found := strings.Cut(name, ":")
	if !found {
		return ""
	}
	return group
}

func (p *Project) groupDefinition(group string) *ScriptEntry {
	if group == "" {
		return nil
	}
	entry := p.Scripts[group]
	if entry == nil {
		entry = p.Scripts[group+":"]
	}
	if entry == nil || !entry.mapping {
		return nil
	}
	return entry
}
