package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ravel-run/ravel/internal/logger"
	"github.com/ravel-run/ravel/pkg/archive"
	"github.com/ravel-run/ravel/pkg/auth"
	"github.com/ravel-run/ravel/pkg/download"
	"github.com/ravel-run/ravel/pkg/hook"
	"github.com/ravel-run/ravel/pkg/model"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "download GROUP",
		Short: "Download a group of files from the project file",
		Long: `Download the files of a group defined under downloads: in the
project file. Existing files are kept unless the group (or file) sets
overwrite; files with an integrity attribute are verified before they
are moved into place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", download.DefaultTimeout, "per-request timeout")

	return cmd
}

func runDownload(cmd *cobra.Command, name string, timeout time.Duration) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	group, err := p.DownloadGroup(name)
	if err != nil {
		return err
	}
	logger.Debug("starting download group", logger.Fields{
		"group":       group.Name,
		"destination": group.Destination,
		"files":       len(group.Files),
	})

	hooks := hook.FromConfig(group.Hooks)
	hookCtx := hook.HookContext{
		GroupName:   group.Name,
		Destination: group.Destination,
		FileCount:   len(group.Files),
	}
	if hooks != nil {
		if err := hooks.Execute(hook.PreDownload, hookCtx); err != nil {
			return err
		}
	}

	opts := []download.FetcherOption{}
	if a := auth.FromConfig(group.Auth); a != nil {
		opts = append(opts, download.WithAuth(a))
	}
	fetcher := download.NewHTTPFetcher(timeout, opts...)

	bar := newDownloadBar(cmd, group)
	manager := download.NewManager(fetcher,
		download.WithUnpacker(archive.NewManager()),
		download.WithHooks(download.Hooks{OnEvent: func(e download.Event) {
			renderEvent(cmd, bar, group, e)
		}}),
	)

	result, runErr := manager.RunGroup(cmd.Context(), group)
	if result == nil {
		return runErr
	}
	_ = bar.Finish()

	if hooks != nil {
		hookCtx.Downloaded = result.Downloaded()
		hookCtx.Skipped = result.Skipped()
		hookCtx.Failed = result.Failed()
		hookCtx.Aborted = result.Aborted
		if hookErr := hooks.Execute(hook.PostDownload, hookCtx); hookErr != nil && runErr == nil {
			runErr = hookErr
		}
	}

	printSummary(cmd, group, result)
	return runErr
}

func newDownloadBar(cmd *cobra.Command, group *model.DownloadGroup) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		len(group.Files),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetWidth(ProgressBarWidth),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(group.Name),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)
}

func renderEvent(cmd *cobra.Command, bar *progressbar.ProgressBar, group *model.DownloadGroup, e download.Event) {
	switch e.Phase {
	case "downloading":
		bar.Describe(e.Filename)
		if group.IsVerbose() && verbose() {
			fmt.Fprintf(cmd.ErrOrStderr(), "\ndownloading %s from %s\n", e.Filename, e.Msg)
		}
	case "skipped":
		if group.IsVerbose() {
			fmt.Fprintf(cmd.ErrOrStderr(), "\nskipping existing file: %s\n", e.Filename)
		}
		_ = bar.Add(1)
	case "failed":
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%s failed: %s\n", e.Filename, e.Msg)
		_ = bar.Add(1)
	case "downloaded":
		_ = bar.Add(1)
	}
}

func printSummary(cmd *cobra.Command, group *model.DownloadGroup, result *model.BatchResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nDownload summary for %s:\n", group.Name)
	fmt.Fprintf(out, "  downloaded: %d\n", result.Downloaded())
	if n := result.Skipped(); n > 0 {
		fmt.Fprintf(out, "  skipped:    %d\n", n)
	}
	if n := result.Failed(); n > 0 {
		fmt.Fprintf(out, "  failed:     %d\n", n)
	}
	if result.Aborted {
		fmt.Fprintln(out, "  batch aborted (raise_on_error)")
	}

	if group.IsVerbose() {
		for _, r := range result.Results {
			if r.Outcome.Kind == model.OutcomeVerificationFailed {
				fmt.Fprintf(out, "  %s: expected %s, got %s\n", r.Filename, r.Outcome.Expected, r.Outcome.Actual)
			}
		}
	}
}
