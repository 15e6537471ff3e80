package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseFixture parses source under a javascript-compatible name and returns
// the extracted exports.
func parseFixture(t *testing.T, src string) []ExportedFunction {
	t.Helper()
	tree, err := parse(context.Background(), "fixture.main.ipc.js", []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return extractExports(tree.RootNode(), []byte(src))
}

func TestExtractRecognizedForms(t *testing.T) {
	src := `export function alpha(a) { return a; }
export async function beta() { return 2; }
export const gamma = async (x) => { return x * 2; };
export const delta = function (y) { return y; };
`
	exports := parseFixture(t, src)
	require.Len(t, exports, 4)

	alpha := exports[0]
	assert.Equal(t, "alpha", alpha.Name)
	assert.False(t, alpha.IsAsync)
	assert.False(t, alpha.IsDefault)
	assert.Equal(t, FormDeclaration, alpha.Form)
	assert.Equal(t, "function alpha(a) { return a; }", src[alpha.Start:alpha.End])

	beta := exports[1]
	assert.Equal(t, "beta", beta.Name)
	assert.True(t, beta.IsAsync)
	assert.Equal(t, "async function beta() { return 2; }", src[beta.Start:beta.End])

	gamma := exports[2]
	assert.Equal(t, "gamma", gamma.Name)
	assert.True(t, gamma.IsAsync)
	assert.Equal(t, FormArrow, gamma.Form)
	assert.Equal(t, "async (x) => { return x * 2; }", src[gamma.Start:gamma.End])

	delta := exports[3]
	assert.Equal(t, "delta", delta.Name)
	assert.False(t, delta.IsAsync)
	assert.Equal(t, FormFunctionExpr, delta.Form)
	assert.Equal(t, "function (y) { return y; }", src[delta.Start:delta.End])
}

func TestExtractAnonymousDefault(t *testing.T) {
	src := `export default async function () { return "d"; }
`
	exports := parseFixture(t, src)
	require.Len(t, exports, 1)

	fn := exports[0]
	assert.Equal(t, DefaultExportName, fn.Name)
	assert.True(t, fn.IsDefault)
	assert.True(t, fn.Anonymous)
	assert.True(t, fn.IsAsync)
	assert.GreaterOrEqual(t, fn.nameInsertAt, 0)
	// The insertion point sits right after the `function` keyword.
	assert.Equal(t, "function", src[fn.nameInsertAt-len("function"):fn.nameInsertAt])
}

func TestExtractNamedDefault(t *testing.T) {
	src := `export default function named() { return 1; }
`
	exports := parseFixture(t, src)
	require.Len(t, exports, 1)
	assert.Equal(t, "named", exports[0].Name)
	assert.True(t, exports[0].IsDefault)
	assert.False(t, exports[0].Anonymous)
}

func TestExtractIgnoresOtherExports(t *testing.T) {
	src := `export class Widget {}
export const answer = 42;
export const pair = { a: 1 };
export { answer as theAnswer };
const hidden = () => 1;
function alsoHidden() {}
`
	exports := parseFixture(t, src)
	assert.Empty(t, exports)
}

func TestExtractTopLevelOnly(t *testing.T) {
	src := `function outer() {
  const inner = () => 1;
  return inner;
}
export function visible() { return outer(); }
`
	exports := parseFixture(t, src)
	require.Len(t, exports, 1)
	assert.Equal(t, "visible", exports[0].Name)
}

func TestExtractTypeScript(t *testing.T) {
	src := `export async function typed(x: number): Promise<number> {
  return x + 1;
}
`
	tree, err := parse(context.Background(), "typed.main.ipc.ts", []byte(src))
	require.NoError(t, err)
	defer tree.Close()

	exports := extractExports(tree.RootNode(), []byte(src))
	require.Len(t, exports, 1)
	assert.Equal(t, "typed", exports[0].Name)
	assert.True(t, exports[0].IsAsync)
}

func TestParseFailure(t *testing.T) {
	_, err := parse(context.Background(), "broken.main.ipc.js", []byte("export function broken( {"))
	require.Error(t, err)
}
