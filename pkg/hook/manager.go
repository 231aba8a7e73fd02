package hook

import (
	"sync"

	"github.com/ravel-run/ravel/pkg/errors"
	"github.com/ravel-run/ravel/pkg/model"
)

// DefaultHookManager is the default implementation of HookManager.
type DefaultHookManager struct {
	executor *TengoExecutor
	mutex    sync.RWMutex
}

// NewHookManager creates a new hook manager.
func NewHookManager() *DefaultHookManager {
	return &DefaultHookManager{
		executor: NewTengoExecutor(),
	}
}

// FromConfig builds a hook manager from a group's hook configuration.
// Returns nil when the configuration declares no hooks.
func FromConfig(cfg *model.HookConfig) *DefaultHookManager {
	if cfg == nil || (cfg.PreDownload == "" && cfg.PostDownload == "") {
		return nil
	}
	m := NewHookManager()
	if cfg.PreDownload != "" {
		m.executor.AddScript(PreDownload, cfg.PreDownload)
	}
	if cfg.PostDownload != "" {
		m.executor.AddScript(PostDownload, cfg.PostDownload)
	}
	return m
}

// Execute runs the specified hook type with the given context.
func (m *DefaultHookManager) Execute(hookType HookType, ctx HookContext) error {
	if !m.HasHook(hookType) {
		return nil
	}

	// Copy the context to prevent modifications
	ctxCopy := ctx
	if ctxCopy.Vars == nil {
		ctxCopy.Vars = make(map[string]interface{})
	}

	return m.executor.Execute(hookType, ctxCopy)
}

// AddHook adds a new hook.
func (m *DefaultHookManager) AddHook(hook Hook) error {
	if hook.Type == "" {
		return errors.Wrap(errors.ErrHookExecution, "hook type cannot be empty")
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.executor.AddScript(hook.Type, hook.Content)
	return nil
}

// HasHook checks if a hook of the specified type exists.
func (m *DefaultHookManager) HasHook(hookType HookType) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.executor.HasScript(hookType)
}
