package hook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravel-run/ravel/pkg/errors"
	"github.com/ravel-run/ravel/pkg/hook"
	"github.com/ravel-run/ravel/pkg/model"
)

func TestNewHookManager(t *testing.T) {
	manager := hook.NewHookManager()
	assert.NotNil(t, manager, "NewHookManager should return a non-nil manager")
}

func TestAddAndExecuteHook(t *testing.T) {
	manager := hook.NewHookManager()
	ctx := hook.HookContext{
		GroupName:   "assets",
		Destination: "static/vendor",
		FileCount:   3,
	}

	err := manager.AddHook(hook.Hook{
		Type:    hook.PreDownload,
		Content: `// no-op hook`,
	})
	require.NoError(t, err, "AddHook should not return an error for valid hook")

	err = manager.Execute(hook.PreDownload, ctx)
	require.NoError(t, err, "Execute should not return an error for valid hook")
}

func TestExecuteHookSeesContext(t *testing.T) {
	manager := hook.NewHookManager()
	err := manager.AddHook(hook.Hook{
		Type: hook.PostDownload,
		Content: `
err := ""
if group != "assets" {
	err = "unexpected group: " + group
}
if downloaded != 2 {
	err = "unexpected downloaded count"
}
`,
	})
	require.NoError(t, err)

	err = manager.Execute(hook.PostDownload, hook.HookContext{
		GroupName:  "assets",
		Downloaded: 2,
	})
	require.NoError(t, err, "hook assertions on context should pass")
}

func TestExecuteHookScriptError(t *testing.T) {
	manager := hook.NewHookManager()
	err := manager.AddHook(hook.Hook{
		Type:    hook.PreDownload,
		Content: `err := "refusing to download"`,
	})
	require.NoError(t, err)

	err = manager.Execute(hook.PreDownload, hook.HookContext{GroupName: "assets"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrHookScript)
	assert.Contains(t, err.Error(), "refusing to download")
}

func TestExecuteHookCompileError(t *testing.T) {
	manager := hook.NewHookManager()
	err := manager.AddHook(hook.Hook{
		Type:    hook.PreDownload,
		Content: `if {`,
	})
	require.NoError(t, err)

	err = manager.Execute(hook.PreDownload, hook.HookContext{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrHookExecution)
}

func TestExecuteWithoutHookIsNoop(t *testing.T) {
	manager := hook.NewHookManager()
	err := manager.Execute(hook.PostDownload, hook.HookContext{})
	assert.NoError(t, err, "executing an unregistered hook type should be a no-op")
}

func TestAddHookEmptyType(t *testing.T) {
	manager := hook.NewHookManager()
	err := manager.AddHook(hook.Hook{Content: `// orphan`})
	assert.Error(t, err, "AddHook should reject an empty hook type")
}

func TestFromConfig(t *testing.T) {
	assert.Nil(t, hook.FromConfig(nil), "nil config should yield no manager")
	assert.Nil(t, hook.FromConfig(&model.HookConfig{}), "empty config should yield no manager")

	manager := hook.FromConfig(&model.HookConfig{
		PreDownload:  `// before`,
		PostDownload: `// after`,
	})
	require.NotNil(t, manager)
	assert.True(t, manager.HasHook(hook.PreDownload))
	assert.True(t, manager.HasHook(hook.PostDownload))
}
