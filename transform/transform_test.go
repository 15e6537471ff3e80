package transform_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipcforge/ipcforge/errors"
	"github.com/ipcforge/ipcforge/transform"
)

const barSource = "export async function bar(x){return x+1}\n"

func run(t *testing.T, pc transform.Context, fileName, src string) *transform.Result {
	t.Helper()
	result, err := transform.File(context.Background(), transform.Options{Context: pc}, fileName, []byte(src))
	require.NoError(t, err)
	return result
}

func TestMainFileCompiledForMain(t *testing.T) {
	result := run(t, transform.ContextMain, "foo.main.ipc.ts", barSource)
	out := string(result.Code)

	// The original function survives verbatim.
	assert.Contains(t, out, "export async function bar(x){return x+1}")

	// An async handler registration is appended on the derived channel.
	require.Len(t, result.Bindings, 1)
	b := result.Bindings[0]
	assert.Equal(t, "bar", b.Export)
	assert.Equal(t, "handle", b.Strategy)
	assert.True(t, b.Async)
	assert.True(t, strings.HasPrefix(b.Channel, "foo.main.ipc.ts:bar:"), b.Channel)

	assert.Contains(t, out, `ipcMain.handle("`+b.Channel+`"`)
	assert.Contains(t, out, "return await bar(...args);")
	assert.Contains(t, out, `import { ipcMain } from "electron";`)
}

func TestMainFileCompiledForRenderer(t *testing.T) {
	mainSide := run(t, transform.ContextMain, "foo.main.ipc.ts", barSource)
	rendererSide := run(t, transform.ContextRenderer, "foo.main.ipc.ts", barSource)
	out := string(rendererSide.Code)

	// The body is replaced by an invoker stub; the original logic is gone.
	assert.NotContains(t, out, "return x+1")
	assert.Contains(t, out, "export async function bar(...args) {")
	assert.Contains(t, out, "ipcRenderer.invoke(")
	assert.Contains(t, out, `import { ipcRenderer } from "electron";`)

	// Both sides derive the identical channel without communicating: same
	// file name, same export, byte-identical body.
	require.Len(t, rendererSide.Bindings, 1)
	assert.Equal(t, mainSide.Bindings[0].Channel, rendererSide.Bindings[0].Channel)
	assert.Contains(t, out, `ipcRenderer.invoke("`+mainSide.Bindings[0].Channel+`"`)
}

func TestRendererFileCompiledForMain(t *testing.T) {
	src := "export async function notify(msg){return msg}\n"
	result := run(t, transform.ContextMain, "alerts.renderer.ipc.ts", src)
	out := string(result.Code)

	assert.Equal(t, "broadcast", result.Bindings[0].Strategy)
	assert.NotContains(t, out, "return msg")
	assert.Contains(t, out, "BrowserWindow.getAllWindows()")
	assert.Contains(t, out, `ipcMain.once("`+result.Bindings[0].Channel+`-reply"`)
	assert.Contains(t, out, `import { ipcMain, BrowserWindow } from "electron";`)
}

func TestRendererFileCompiledForRenderer(t *testing.T) {
	src := "export async function notify(msg){return msg}\n"
	result := run(t, transform.ContextRenderer, "alerts.renderer.ipc.ts", src)
	out := string(result.Code)

	assert.Equal(t, "listen", result.Bindings[0].Strategy)
	// Register locally: original body intact, listener appended.
	assert.Contains(t, out, "export async function notify(msg){return msg}")
	assert.Contains(t, out, `ipcRenderer.on("`+result.Bindings[0].Channel+`"`)
	assert.Contains(t, out, `event.sender.send("`+result.Bindings[0].Channel+`-reply"`)
}

func TestSyncFunctionShapes(t *testing.T) {
	src := "export function ping(){return \"pong\"}\n"

	handle := run(t, transform.ContextMain, "net.main.ipc.ts", src)
	assert.Contains(t, string(handle.Code), "event.returnValue = ping(...args);")
	assert.Contains(t, string(handle.Code), "event.returnValue = { error: err instanceof Error ? err.message : String(err) };")

	invoke := run(t, transform.ContextRenderer, "net.main.ipc.ts", src)
	assert.Contains(t, string(invoke.Code), "ipcRenderer.sendSync(")
	assert.NotContains(t, string(invoke.Code), "pong")
}

func TestNoQualifyingExportsIsByteIdentical(t *testing.T) {
	src := "export class Widget {}\nconst x = 1;\nexport const answer = 42;\n"
	result := run(t, transform.ContextMain, "widget.main.ipc.ts", src)

	assert.False(t, result.Changed)
	assert.Equal(t, src, string(result.Code))
	assert.Empty(t, result.Bindings)
	assert.NotContains(t, string(result.Code), "import")
}

func TestNonMatchingFileNameIsRejected(t *testing.T) {
	_, err := transform.File(context.Background(), transform.Options{Context: transform.ContextMain}, "plain.ts", []byte(barSource))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoRole))
}

func TestDefaultExportSynthesis(t *testing.T) {
	src := "export default async function(){return 1}\n"
	result := run(t, transform.ContextMain, "boot.main.ipc.ts", src)
	out := string(result.Code)

	require.Len(t, result.Bindings, 1)
	b := result.Bindings[0]
	assert.True(t, b.Default)
	assert.Equal(t, transform.DefaultExportName, b.Export)
	assert.Contains(t, b.Channel, ":default:")

	// The synthetic name is spliced into the declaration so the appended
	// registration can call it.
	assert.Contains(t, out, "function "+transform.DefaultExportName+"(")
	assert.Contains(t, out, transform.DefaultExportName+"(...args)")
}

func TestChannelCollisionFailsBuild(t *testing.T) {
	src := "export function dup(){return 7}\nexport function dup(){return 7}\n"
	_, err := transform.File(context.Background(), transform.Options{Context: transform.ContextMain}, "dup.main.ipc.ts", []byte(src))
	require.Error(t, err)
	assert.True(t, errors.IsChannelCollision(err))
}

func TestParseFailureReturnsNoPartialOutput(t *testing.T) {
	result, err := transform.File(context.Background(), transform.Options{Context: transform.ContextMain}, "bad.main.ipc.ts", []byte("export function broken( {"))
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
	assert.Nil(t, result)
}

func TestCustomHostModule(t *testing.T) {
	opts := transform.Options{Context: transform.ContextMain, HostModule: "custom-runtime"}
	result, err := transform.File(context.Background(), opts, "foo.main.ipc.ts", []byte(barSource))
	require.NoError(t, err)
	assert.Contains(t, string(result.Code), `from "custom-runtime";`)
}

func TestTransformIsDeterministic(t *testing.T) {
	first := run(t, transform.ContextMain, "foo.main.ipc.ts", barSource)
	second := run(t, transform.ContextMain, "foo.main.ipc.ts", barSource)
	assert.Equal(t, string(first.Code), string(second.Code))
}

func TestUnrelatedContentDoesNotChangeChannel(t *testing.T) {
	withComment := "// unrelated leading comment\n" + barSource
	a := run(t, transform.ContextMain, "foo.main.ipc.ts", barSource)
	b := run(t, transform.ContextMain, "foo.main.ipc.ts", withComment)
	assert.Equal(t, a.Bindings[0].Channel, b.Bindings[0].Channel)
}

func TestMappingCoversOutput(t *testing.T) {
	result := run(t, transform.ContextMain, "foo.main.ipc.ts", barSource)
	require.True(t, result.Changed)
	require.NotEmpty(t, result.Mapping)

	pos := 0
	sawSynthesized := false
	for _, seg := range result.Mapping {
		assert.Equal(t, pos, seg.NewStart)
		pos = seg.NewEnd
		if seg.Synthesized() {
			sawSynthesized = true
		}
	}
	assert.Equal(t, len(result.Code), pos)
	// Appended registration and synthesized import both have no origin.
	assert.True(t, sawSynthesized)
}

func TestMultipleExportsAllBound(t *testing.T) {
	src := `export async function one(){return 1}
export function two(){return 2}
export const three = async () => { return 3; };
`
	result := run(t, transform.ContextMain, "multi.main.ipc.ts", src)
	require.Len(t, result.Bindings, 3)

	names := []string{result.Bindings[0].Export, result.Bindings[1].Export, result.Bindings[2].Export}
	assert.Equal(t, []string{"one", "two", "three"}, names)

	out := string(result.Code)
	for _, b := range result.Bindings {
		assert.Contains(t, out, `"`+b.Channel+`"`)
	}
	// One handler registration per export, one merged import statement.
	assert.Equal(t, 2, strings.Count(out, "ipcMain.handle("))
	assert.Equal(t, 1, strings.Count(out, "ipcMain.on("))
	assert.Equal(t, 1, strings.Count(out, `from "electron"`))
}
