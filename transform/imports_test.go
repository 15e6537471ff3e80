package transform

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mergeFixture parses source, merges the needed symbols, and returns the
// resulting text.
func mergeFixture(t *testing.T, src string, needs ...string) string {
	t.Helper()
	tree, err := parse(context.Background(), "fixture.main.ipc.js", []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)

	edits := mergeImports(tree.RootNode(), []byte(src), "electron", needs)
	out, _, err := assemble([]byte(src), edits)
	require.NoError(t, err)
	return string(out)
}

func TestMergeSynthesizesImport(t *testing.T) {
	src := "export function f() { return 1; }\n"
	out := mergeFixture(t, src, "ipcMain")

	assert.True(t, strings.HasPrefix(out, `import { ipcMain } from "electron";`))
	assert.Contains(t, out, "export function f()")
}

func TestMergeIntoNamedImport(t *testing.T) {
	src := `import { app, shell } from "electron";
export function f() { return 1; }
`
	out := mergeFixture(t, src, "ipcMain", "BrowserWindow")

	// Pre-existing symbols keep their order; new ones append in discovery
	// order.
	assert.Contains(t, out, `import { app, shell, ipcMain, BrowserWindow } from "electron";`)
	assert.Equal(t, 1, strings.Count(out, "import"))
}

func TestMergePreservesAliases(t *testing.T) {
	src := `import { app as electronApp } from "electron";
export function f() { return 1; }
`
	out := mergeFixture(t, src, "ipcMain")
	assert.Contains(t, out, `import { app as electronApp, ipcMain } from "electron";`)
}

func TestMergeIdempotent(t *testing.T) {
	src := `import { ipcMain } from "electron";
export function f() { return 1; }
`
	out := mergeFixture(t, src, "ipcMain")
	// Already merged: the second run is a byte-identical no-op.
	assert.Equal(t, src, out)
}

func TestMergeRewritesDefaultImport(t *testing.T) {
	src := `import electron from "electron";
export function f() { return 1; }
`
	out := mergeFixture(t, src, "ipcMain")
	assert.Contains(t, out, `import electron, { ipcMain } from "electron";`)
}

func TestMergeNamespaceFallback(t *testing.T) {
	src := `import * as electron from "electron";
export function f() { return 1; }
`
	out := mergeFixture(t, src, "ipcMain")

	// Namespace imports cannot carry named specifiers; a fresh statement is
	// appended right after the unrecognized one.
	assert.Contains(t, out, `import * as electron from "electron";`)
	assert.Contains(t, out, `import { ipcMain } from "electron";`)
	assert.Less(t,
		strings.Index(out, `import * as electron`),
		strings.Index(out, `import { ipcMain }`))
}

func TestMergeIgnoresOtherModules(t *testing.T) {
	src := `import { readFile } from "node:fs/promises";
export function f() { return 1; }
`
	out := mergeFixture(t, src, "ipcMain")

	assert.Contains(t, out, `import { readFile } from "node:fs/promises";`)
	assert.Contains(t, out, `import { ipcMain } from "electron";`)
	// The unrelated import is not clobbered.
	assert.NotContains(t, out, "readFile, ipcMain")
}

func TestMergeNothingNeeded(t *testing.T) {
	src := "const x = 1;\n"
	tree, err := parse(context.Background(), "fixture.main.ipc.js", []byte(src))
	require.NoError(t, err)
	defer tree.Close()

	assert.Empty(t, mergeImports(tree.RootNode(), []byte(src), "electron", nil))
}
