package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

// VS Code settings that point the editor at the workspace TypeScript, which
// loads the GraphQL language service plugin
const (
	TSDKKey          = "typescript.tsdk"
	TSDKValue        = "node_modules/typescript/lib"
	PromptTSDKKey    = "typescript.enablePromptUseWorkspaceTsdk"
	vscodeSettingsFS = ".vscode/settings.json"
)

// MergeVSCodeSettings makes .vscode/settings.json use the workspace
// TypeScript. Other settings and their order are kept. The file is only
// written when something changes.
func MergeVSCodeSettings(dir string) (bool, error) {
	path := filepath.Join(dir, filepath.FromSlash(vscodeSettingsFS))

	settings := NewObject()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		settings, err = ParseJSONC(data)
		if err != nil {
			return false, fmt.Errorf("failed to parse %s: %w", vscodeSettingsFS, err)
		}
	case !os.IsNotExist(err):
		return false, fmt.Errorf("failed to read %s: %w", vscodeSettingsFS, err)
	}

	tsdk, _ := settings.Get(TSDKKey)
	prompt, _ := settings.Get(PromptTSDKKey)
	if tsdk == TSDKValue && prompt == true && data != nil {
		return false, nil
	}

	settings.Set(TSDKKey, TSDKValue)
	settings.Set(PromptTSDKKey, true)

	out, err := MarshalIndented(settings)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create .vscode: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", vscodeSettingsFS, err)
	}
	return true, nil
}
