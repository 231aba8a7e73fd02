package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ravel-run/ravel/pkg/errors"
	"github.com/ravel-run/ravel/pkg/fsutil"
	"github.com/ravel-run/ravel/pkg/project"
)

// projectScaffold is the document written by the new and sample commands.
type projectScaffold struct {
	Name    string            `yaml:"name"`
	Scripts map[string]string `yaml:"scripts"`
}

var wizardIdeas = map[string]string{
	"server":   "python manage.py runserver 8881",
	"installs": "venv/bin/python -m pip install -r requirements.txt",
	"rollout":  "kubectl rollout restart deployment/web",
}

// NewNewCmd creates the new command.
func NewNewCmd() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "new [PATH]",
		Short: "Start a new project interactively",
		Long: `Create a project file in PATH (default: the current directory)
through a short interactive wizard.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runNew(cmd, path, overwrite)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing project file")

	return cmd
}

// NewSampleCmd creates the sample command.
func NewSampleCmd() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a sample project file",
		Long:  "Write ravel.sample.yaml with a few example shortcuts.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSample(cmd, overwrite)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing sample file")

	return cmd
}

func runNew(cmd *cobra.Command, path string, overwrite bool) error {
	dest, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidPath, err.Error())
	}
	outputPath := filepath.Join(dest, projectPath())

	if _, err := os.Stat(outputPath); err == nil && !overwrite {
		return errors.Wrapf(errors.ErrConfigValidation,
			"project file %s already exists, use --overwrite to replace it", outputPath)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Starting a new ravel project at %s\n\n", outputPath)

	reader := bufio.NewReader(cmd.InOrStdin())
	scaffold, err := runWizard(cmd, reader, dest)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(scaffold)
	if err != nil {
		return errors.Wrap(err, "failed to encode project")
	}

	fmt.Fprintf(out, "\nHere is your new project:\n\n%s\n", data)
	if !confirm(cmd, reader, "Save project?", true) {
		fmt.Fprintln(out, "Exiting without saving.")
		return nil
	}

	if err := os.MkdirAll(dest, fsutil.DirModeDefault); err != nil {
		return errors.Wrap(err, "failed to create project directory")
	}
	if err := os.WriteFile(outputPath, data, fsutil.FileModeDefault); err != nil {
		return errors.Wrap(err, "failed to write project file")
	}
	fmt.Fprintf(out, "Wrote %s\n", outputPath)
	return nil
}

func runWizard(cmd *cobra.Command, reader *bufio.Reader, dest string) (*projectScaffold, error) {
	out := cmd.OutOrStdout()

	name := prompt(cmd, reader, fmt.Sprintf("Project name [%s]", filepath.Base(dest)))
	if name == "" {
		name = filepath.Base(dest)
	}

	scaffold := &projectScaffold{
		Name:    name,
		Scripts: map[string]string{},
	}

	fmt.Fprintln(out, "\nLet's add a few shortcuts. Some ideas:")
	for k, v := range wizardIdeas {
		fmt.Fprintf(out, "  %s\t%s\n", k, v)
	}
	fmt.Fprintln(out)

	for {
		shortcut := prompt(cmd, reader, "Shortcut name (empty to finish)")
		if shortcut == "" {
			break
		}
		command := prompt(cmd, reader, "Command")
		if command == "" {
			break
		}

		fmt.Fprintf(out, "\n  %s\n  is now also: ravel run %s\n\n", command, shortcut)
		if confirm(cmd, reader, "Add shortcut?", true) {
			scaffold.Scripts[shortcut] = command
		}
		if !confirm(cmd, reader, "Add another?", false) {
			break
		}
	}

	return scaffold, nil
}

func runSample(cmd *cobra.Command, overwrite bool) error {
	scaffold := &projectScaffold{
		Name: "ravel",
		Scripts: map[string]string{
			"echo":       "echo 'Hello World! ravel is working!'",
			"server":     "python3 -m http.server",
			"win-server": "python -m http.server",
		},
	}

	samplePath := strings.TrimSuffix(project.DefaultProjectFile, ".yaml") + ".sample.yaml"
	if _, err := os.Stat(samplePath); err == nil && !overwrite {
		return errors.Wrapf(errors.ErrConfigValidation,
			"%s already exists, use --overwrite to replace it", samplePath)
	}

	data, err := yaml.Marshal(scaffold)
	if err != nil {
		return errors.Wrap(err, "failed to encode sample project")
	}
	if err := os.WriteFile(samplePath, data, fsutil.FileModeDefault); err != nil {
		return errors.Wrap(err, "failed to write sample project")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created a sample project at %s\n", samplePath)
	return nil
}

func prompt(cmd *cobra.Command, reader *bufio.Reader, label string) string {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return ""
	}
	return strings.TrimSpace(line)
}

func confirm(cmd *cobra.Command, reader *bufio.Reader, label string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]: ", label, hint)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}
