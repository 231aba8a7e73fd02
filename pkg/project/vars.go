package project

import (
	"os"
	"regexp"
	"strings"

	"github.com/ravel-run/ravel/pkg/errors"
)

var varPattern = regexp.MustCompile(`\$\{\{\s*vars\.([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// variables merges the process environment with the project's vars block;
// project vars win on conflict.
func (p *Project) variables() map[string]string {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, _ := strings.Cut(kv, "=")
		vars[key] = value
	}
	for key, value := range p.Vars {
		vars[key] = value
	}
	return vars
}

// Substitute replaces every ${{ vars.NAME }} reference in s. Referencing an
// undefined variable is an error.
func (p *Project) Substitute(s string) (string, error) {
	if !strings.Contains(s, "${{") {
		return s, nil
	}

	vars := p.variables()
	var missing []string
	out := varPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := varPattern.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", errors.Wrapf(errors.ErrUndefinedVariable, "%s", strings.Join(missing, ", "))
	}
	return out, nil
}
