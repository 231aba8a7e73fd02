package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ravel-run/ravel/pkg/project"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var expanded bool
	var downloads bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List project shortcuts",
		Long: `List the shortcuts defined in the project file.

Use --expanded to show each shortcut fully resolved (group prefix,
working directory and variables applied). Use --downloads to list the
download groups instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, expanded, downloads)
		},
	}

	cmd.Flags().BoolVar(&expanded, "expanded", false, "show fully resolved commands")
	cmd.Flags().BoolVar(&downloads, "downloads", false, "list download groups instead of shortcuts")

	return cmd
}

func runList(cmd *cobra.Command, expanded, downloads bool) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, TabPadding, ' ', 0)

	if downloads {
		fmt.Fprintln(w, "GROUP\tDESTINATION\tFILES")
		for _, name := range p.DownloadGroupNames() {
			group := p.Downloads[name]
			fmt.Fprintf(w, "%s\t%s\t%d\n", name, group.Destination, len(group.Files))
		}
		return w.Flush()
	}

	fmt.Fprintln(w, "COMMAND\tSCRIPT")
	for _, name := range p.ScriptNames() {
		fmt.Fprintf(w, "%s\t%s\n", name, scriptDisplay(p, name, expanded))
	}
	return w.Flush()
}

func scriptDisplay(p *project.Project, name string, expanded bool) string {
	if p.IsGroupDefinition(name) {
		return "(group)"
	}

	var display string
	if expanded {
		line, err := p.RenderScript(name, nil)
		if err != nil {
			display = strings.Join(p.Scripts[name].Commands(), project.JoinSeparator)
		} else {
			display = line
		}
	} else {
		display = strings.Join(p.Scripts[name].Commands(), project.JoinSeparator)
	}

	return truncate(display, MaxCommandDisplayLength)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
