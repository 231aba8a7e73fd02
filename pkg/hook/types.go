package hook

// HookType represents the point in the download lifecycle a hook runs at.
type HookType string

// Supported hook types.
const (
	PreDownload  HookType = "pre_download"
	PostDownload HookType = "post_download"
)

// Hook represents a hook script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hook scripts.
type HookContext struct {
	GroupName   string
	Destination string
	FileCount   int

	// Populated for post_download hooks only.
	Downloaded int
	Skipped    int
	Failed     int
	Aborted    bool

	Vars map[string]interface{}
}

// HookManager defines the interface for managing download hooks.
type HookManager interface {
	// Execute runs the specified hook type with the given context
	Execute(hookType HookType, ctx HookContext) error

	// AddHook adds a new hook
	AddHook(hook Hook) error

	// HasHook checks if a hook of the specified type exists
	HasHook(hookType HookType) bool
}
