// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"
)

// userConfigDir is replaced in tests.
var userConfigDir = os.UserConfigDir

// ForTimeout returns a hint about raising the per-file timeout.
func ForTimeout() string {
	return format("for large notes or slow vaults, raise --timeout or MD2WECHAT_TIMEOUT")
}

// ForConfigNotFound suggests --config and the per-user config location for name.
func ForConfigNotFound(name string) string {
	hint := "use --config /path/to/file.yaml"
	if name != "" && !strings.ContainsAny(name, "/\\") {
		if dir, err := userConfigDir(); err == nil {
			hint += " or create " + filepath.Join(dir, "go-md2wechat", name+".yaml")
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForHostRender suggests the legacy converter when the host renderer fails.
func ForHostRender() string {
	return format("retry with --legacy-fallback to use the built-in converter")
}

// ForNoMarkdown returns hints for an input that yielded no markdown files.
func ForNoMarkdown(glob string) string {
	if glob != "" {
		return format("no file matched --glob " + glob + "; patterns are relative to the input directory, e.g. posts/**/*.md")
	}
	return format("pass a .md file or a directory containing .md files")
}

// ForVault returns hints for local images that could not be resolved.
func ForVault() string {
	return format("set --vault to the root directory of your notes")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
