package transform

import (
	"path/filepath"
	"strings"

	"github.com/ipcforge/ipcforge/errors"
)

// Context identifies which of the two cooperating runtime environments is
// currently being compiled. It is supplied by the build invocation.
type Context string

const (
	// ContextMain is the privileged process that owns windows.
	ContextMain Context = "main"
	// ContextRenderer is a window-hosted process.
	ContextRenderer Context = "renderer"
)

// ParseContext validates a processing-context string from a flag or config.
func ParseContext(s string) (Context, error) {
	switch Context(strings.ToLower(s)) {
	case ContextMain:
		return ContextMain, nil
	case ContextRenderer:
		return ContextRenderer, nil
	}
	return "", errors.Newf("invalid processing context %q (want %q or %q)", s, ContextMain, ContextRenderer)
}

// Role identifies which environment a file's exported functions are declared
// to run in, inferred from the file name.
type Role string

const (
	// RoleMain marks *.main.ipc.* files.
	RoleMain Role = "main"
	// RoleRenderer marks *.renderer.ipc.* files.
	RoleRenderer Role = "renderer"
)

// roleMarker is the fixed filename segment preceding the extension.
const roleMarker = "ipc"

// RoleFromFileName parses the role suffix out of a file name. A file matching
// *.main.ipc.<ext> is main-role, *.renderer.ipc.<ext> is renderer-role. Any
// other name reports ok=false and is ignored entirely by the engine.
func RoleFromFileName(name string) (Role, bool) {
	parts := strings.Split(filepath.Base(name), ".")
	// Need at least <base>.<role>.ipc.<ext>.
	if len(parts) < 4 {
		return "", false
	}
	if parts[len(parts)-2] != roleMarker {
		return "", false
	}
	switch Role(parts[len(parts)-3]) {
	case RoleMain:
		return RoleMain, true
	case RoleRenderer:
		return RoleRenderer, true
	}
	return "", false
}

// Matches reports whether the engine will transform a file with this name.
func Matches(name string) bool {
	_, ok := RoleFromFileName(name)
	return ok
}
