package cli_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravel-run/ravel/internal/cli"
	"github.com/ravel-run/ravel/pkg/errors"
)

// setProjectFile points the CLI at a project file for the test's duration.
func setProjectFile(t *testing.T, path string) {
	t.Helper()
	prev := cli.ProjectFile
	cli.ProjectFile = &path
	t.Cleanup(func() { cli.ProjectFile = prev })
}

func writeProjectFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "ravel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func sri(content string) string {
	sum := sha256.Sum256([]byte(content))
	return "sha256-" + base64.StdEncoding.EncodeToString(sum[:])
}

func TestRunCmd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	setProjectFile(t, writeProjectFile(t, dir, `
scripts:
  touchit: echo done > marker.txt
`))

	_, _, err := execute(t, cli.NewRunCmd(), "touchit")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "marker.txt"))
}

func TestRunCmdExtraArgs(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	setProjectFile(t, writeProjectFile(t, dir, `
scripts:
  say: echo
`))

	out, _, err := execute(t, cli.NewRunCmd(), "say", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)
}

func TestRunCmdUnknownShortcut(t *testing.T) {
	dir := t.TempDir()
	setProjectFile(t, writeProjectFile(t, dir, `scripts: {echo: echo hi}`))

	_, _, err := execute(t, cli.NewRunCmd(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrScriptNotFound)
}

func TestRunCmdRequiresGate(t *testing.T) {
	dir := t.TempDir()
	setProjectFile(t, writeProjectFile(t, dir, `
requires: ">= 99.0.0"
scripts:
  echo: echo hi
`))

	_, _, err := execute(t, cli.NewRunCmd(), "echo")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrVersionConstraint)
}

func TestListCmd(t *testing.T) {
	dir := t.TempDir()
	setProjectFile(t, writeProjectFile(t, dir, `
scripts:
  backend:
    prefix: docker compose exec web
    working_dir: ./backend
  backend:migrate: python manage.py migrate
  echo: echo hi
downloads:
  assets:
    destination: static/vendor
    files:
      - url: https://cdn.test/lib.min.js
`))

	out, _, err := execute(t, cli.NewListCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "backend:migrate")
	assert.Contains(t, out, "(group)")
	assert.Contains(t, out, "echo hi")

	out, _, err = execute(t, cli.NewListCmd(), "--expanded")
	require.NoError(t, err)
	assert.Contains(t, out, "cd ./backend && docker compose exec web python manage.py migrate")

	out, _, err = execute(t, cli.NewListCmd(), "--downloads")
	require.NoError(t, err)
	assert.Contains(t, out, "assets")
	assert.Contains(t, out, "static/vendor")
}

func TestDownloadCmd(t *testing.T) {
	const content = "console.log('ok');"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/lib.min.js" {
			fmt.Fprint(w, content)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	t.Chdir(dir)
	setProjectFile(t, writeProjectFile(t, dir, fmt.Sprintf(`
downloads:
  assets:
    destination: static/vendor
    files:
      - url: %s/lib.min.js
        name: lib.min.js
        integrity: %s
`, server.URL, sri(content))))

	out, _, err := execute(t, cli.NewDownloadCmd(), "assets")
	require.NoError(t, err)
	assert.Contains(t, out, "downloaded: 1")

	data, err := os.ReadFile(filepath.Join(dir, "static/vendor/lib.min.js"))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestDownloadCmdAborts(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	dir := t.TempDir()
	t.Chdir(dir)
	setProjectFile(t, writeProjectFile(t, dir, fmt.Sprintf(`
downloads:
  assets:
    destination: out
    raise_on_error: true
    files:
      - url: %s/missing.js
`, server.URL)))

	out, _, err := execute(t, cli.NewDownloadCmd(), "assets")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBatchAborted)
	assert.Contains(t, out, "batch aborted")
}

func TestDownloadCmdUnknownGroup(t *testing.T) {
	dir := t.TempDir()
	setProjectFile(t, writeProjectFile(t, dir, `
downloads:
  assets:
    destination: out
    files: [{url: https://x.test/a.js}]
`))

	_, _, err := execute(t, cli.NewDownloadCmd(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrGroupNotFound)
}

func TestDownloadCmdHooks(t *testing.T) {
	const content = "data"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, content)
	}))
	defer server.Close()

	dir := t.TempDir()
	t.Chdir(dir)
	setProjectFile(t, writeProjectFile(t, dir, fmt.Sprintf(`
downloads:
  assets:
    destination: out
    hooks:
      post_download: |
        err := ""
        if downloaded != 1 {
          err = "expected one download"
        }
    files:
      - url: %s/a.bin
`, server.URL)))

	_, _, err := execute(t, cli.NewDownloadCmd(), "assets")
	require.NoError(t, err)
}

func TestDownloadCmdFailingPreHook(t *testing.T) {
	dir := t.TempDir()
	setProjectFile(t, writeProjectFile(t, dir, `
downloads:
  assets:
    destination: out
    hooks:
      pre_download: err := "not today"
    files:
      - url: https://x.test/a.js
`))

	_, _, err := execute(t, cli.NewDownloadCmd(), "assets")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrHookScript)
}

func TestSampleCmd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, _, err := execute(t, cli.NewSampleCmd())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "ravel.sample.yaml"))

	// refuses to clobber without --overwrite
	_, _, err = execute(t, cli.NewSampleCmd())
	require.Error(t, err)

	_, _, err = execute(t, cli.NewSampleCmd(), "--overwrite")
	require.NoError(t, err)
}

func TestNewCmdWizard(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cmd := cli.NewNewCmd()
	cmd.SetIn(strings.NewReader("demo\nserve\npython3 -m http.server\ny\nn\ny\n"))
	out, _, err := execute(t, cmd, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "name: demo")

	data, err := os.ReadFile(filepath.Join(dir, "ravel.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "serve: python3 -m http.server")
}

func TestNewCmdRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeProjectFile(t, dir, "name: existing\n")

	cmd := cli.NewNewCmd()
	cmd.SetIn(strings.NewReader(""))
	_, _, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestVersionCmd(t *testing.T) {
	// version prints directly to stdout via fmt.Printf, just make sure the
	// command runs without error
	cmd := cli.NewVersionCmd()
	cmd.SetArgs(nil)
	assert.NotPanics(t, func() { _ = cmd.Execute() })
}
