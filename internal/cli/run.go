package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ravel-run/ravel/pkg/script"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run NAME [args...]",
		Short: "Run a project shortcut",
		Long: `Run a shortcut defined under scripts: in the project file.

Extra arguments are appended to the shortcut's final command:

  ravel run server --port 8080`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShortcut(cmd, args[0], args[1:])
		},
	}

	// Everything after the shortcut name belongs to the shortcut.
	cmd.Flags().SetInterspersed(false)

	return cmd
}

// NewXCmd creates the x command, a shorthand alias for run.
func NewXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "x NAME [args...]",
		Short: "Shorthand for run",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShortcut(cmd, args[0], args[1:])
		},
	}

	cmd.Flags().SetInterspersed(false)

	return cmd
}

func runShortcut(cmd *cobra.Command, name string, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	line, err := p.RenderScript(name, args)
	if err != nil {
		return err
	}

	if verbose() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Using: %s\n", p.Path)
		fmt.Fprintf(cmd.ErrOrStderr(), "Running: %s\n", line)
	}

	runner := script.NewRunner()
	runner.Stdin = cmd.InOrStdin()
	runner.Stdout = cmd.OutOrStdout()
	runner.Stderr = cmd.ErrOrStderr()

	return runner.Run(cmd.Context(), line)
}
