package cli

// Display constants for formatted output.
const (
	// TabPadding is the padding between tabwriter columns.
	TabPadding = 2
	// ProgressBarWidth is the width of the download progress bar.
	ProgressBarWidth = 30
	// MaxCommandDisplayLength truncates long command lines in listings.
	MaxCommandDisplayLength = 80
)
