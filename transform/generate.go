package transform

import (
	"fmt"
	"strings"
)

// Host-API symbols the generated code references. They are imported as named
// bindings from the host module by the import merge step.
const (
	symIPCMain       = "ipcMain"
	symIPCRenderer   = "ipcRenderer"
	symBrowserWindow = "BrowserWindow"
)

// Strategy is one cell of the (processing context × file role) matrix.
type Strategy int

const (
	// StrategyHandle keeps the original function verbatim and appends an
	// ipcMain registration that calls it and forwards the result over the
	// channel. Cell (main, main).
	StrategyHandle Strategy = iota
	// StrategyInvoke replaces the function body with a proxy that sends the
	// channel message to the main context and relays the reply.
	// Cell (renderer, main).
	StrategyInvoke
	// StrategyBroadcast replaces the function body with a proxy that sends
	// the channel message to every currently open window; the async variant
	// resolves with the first reply received. Cell (main, renderer).
	StrategyBroadcast
	// StrategyListen keeps the original function verbatim and appends an
	// ipcRenderer listener that calls it when the channel message arrives
	// and sends the result back as a reply. Cell (renderer, renderer).
	StrategyListen
)

// String names the strategy for logs and summaries.
func (s Strategy) String() string {
	switch s {
	case StrategyHandle:
		return "handle"
	case StrategyInvoke:
		return "invoke"
	case StrategyBroadcast:
		return "broadcast"
	case StrategyListen:
		return "listen"
	}
	return "unknown"
}

// strategyTable is the complete state space: four cells, each a distinct
// code-generation policy, keyed by (processing context, file role).
var strategyTable = map[Context]map[Role]Strategy{
	ContextMain: {
		RoleMain:     StrategyHandle,
		RoleRenderer: StrategyBroadcast,
	},
	ContextRenderer: {
		RoleMain:     StrategyInvoke,
		RoleRenderer: StrategyListen,
	},
}

// strategyFor selects the rewrite policy for one (context, role) pair. The
// pair is immutable for the duration of one file's transform.
func strategyFor(pc Context, role Role) Strategy {
	return strategyTable[pc][role]
}

// generator emits per-function edits and accumulates which host-API symbols
// the generated code referenced. The accumulated set is an explicit return
// value of the generation step, threaded into the import merge.
type generator struct {
	needs []string
	seen  map[string]bool
}

func newGenerator() *generator {
	return &generator{seen: make(map[string]bool)}
}

// require records host-API symbols in discovery order, once each.
func (g *generator) require(symbols ...string) {
	for _, sym := range symbols {
		if !g.seen[sym] {
			g.seen[sym] = true
			g.needs = append(g.needs, sym)
		}
	}
}

// function emits the edits for one exported function under one strategy.
// Register strategies append text at end of file; stub strategies replace
// the function's span.
func (g *generator) function(st Strategy, fn ExportedFunction, channel string, srcLen int) []edit {
	switch st {
	case StrategyHandle:
		g.require(symIPCMain)
		return appendEdits(fn, srcLen, handleRegistration(fn, channel))
	case StrategyListen:
		g.require(symIPCRenderer)
		return appendEdits(fn, srcLen, listenRegistration(fn, channel))
	case StrategyInvoke:
		g.require(symIPCRenderer)
		return []edit{{start: fn.Start, end: fn.End, text: invokeStub(fn, channel)}}
	case StrategyBroadcast:
		if fn.IsAsync {
			g.require(symIPCMain)
		}
		g.require(symBrowserWindow)
		return []edit{{start: fn.Start, end: fn.End, text: broadcastStub(fn, channel)}}
	}
	return nil
}

// appendEdits wires a register-locally block: the original span stays
// verbatim and the registration is appended. Anonymous default exports
// additionally get the synthetic identifier spliced into their header so
// the appended code can call them.
func appendEdits(fn ExportedFunction, srcLen int, block string) []edit {
	edits := make([]edit, 0, 2)
	if fn.Anonymous && fn.nameInsertAt >= 0 {
		edits = append(edits, edit{start: fn.nameInsertAt, end: fn.nameInsertAt, text: " " + DefaultExportName})
	}
	edits = append(edits, edit{start: srcLen, end: srcLen, text: block})
	return edits
}

// handleRegistration emits the (main, main) cell: an ipcMain registration
// calling the original function. A registration-time failure (for example a
// duplicate handler) is caught and logged rather than aborting the rest of
// the module's side effects. A handler-invocation failure is caught at the
// boundary, logged, and converted to the sentinel for its path.
func handleRegistration(fn ExportedFunction, channel string) string {
	var sb strings.Builder
	if fn.IsAsync {
		sb.WriteString("\ntry {\n")
		fmt.Fprintf(&sb, "  ipcMain.handle(%q, async (_event, ...args) => {\n", channel)
		sb.WriteString("    try {\n")
		fmt.Fprintf(&sb, "      return await %s(...args);\n", fn.Name)
		sb.WriteString("    } catch (err) {\n")
		fmt.Fprintf(&sb, "      console.error(\"ipc handler failed on channel \" + %q, err);\n", channel)
		sb.WriteString("      return { __ipcError: err instanceof Error ? err.message : String(err) };\n")
		sb.WriteString("    }\n")
		sb.WriteString("  });\n")
		sb.WriteString("} catch (err) {\n")
		fmt.Fprintf(&sb, "  console.error(\"ipc handler registration failed on channel \" + %q, err);\n", channel)
		sb.WriteString("}\n")
		return sb.String()
	}

	sb.WriteString("\ntry {\n")
	fmt.Fprintf(&sb, "  ipcMain.on(%q, (event, ...args) => {\n", channel)
	sb.WriteString("    try {\n")
	fmt.Fprintf(&sb, "      event.returnValue = %s(...args);\n", fn.Name)
	sb.WriteString("    } catch (err) {\n")
	fmt.Fprintf(&sb, "      console.error(\"ipc handler failed on channel \" + %q, err);\n", channel)
	sb.WriteString("      event.returnValue = { error: err instanceof Error ? err.message : String(err) };\n")
	sb.WriteString("    }\n")
	sb.WriteString("  });\n")
	sb.WriteString("} catch (err) {\n")
	fmt.Fprintf(&sb, "  console.error(\"ipc listener registration failed on channel \" + %q, err);\n", channel)
	sb.WriteString("}\n")
	return sb.String()
}

// listenRegistration emits the (renderer, renderer) cell: an ipcRenderer
// listener calling the original function when the channel message arrives.
// The async variant sends the result (or the error sentinel) back on the
// reply channel; the sync variant sets the synchronous return value.
func listenRegistration(fn ExportedFunction, channel string) string {
	var sb strings.Builder
	if fn.IsAsync {
		sb.WriteString("\ntry {\n")
		fmt.Fprintf(&sb, "  ipcRenderer.on(%q, async (event, ...args) => {\n", channel)
		sb.WriteString("    let reply;\n")
		sb.WriteString("    try {\n")
		fmt.Fprintf(&sb, "      reply = await %s(...args);\n", fn.Name)
		sb.WriteString("    } catch (err) {\n")
		fmt.Fprintf(&sb, "      console.error(\"ipc handler failed on channel \" + %q, err);\n", channel)
		sb.WriteString("      reply = { __ipcError: err instanceof Error ? err.message : String(err) };\n")
		sb.WriteString("    }\n")
		fmt.Fprintf(&sb, "    event.sender.send(%q, reply);\n", ReplyChannel(channel))
		sb.WriteString("  });\n")
		sb.WriteString("} catch (err) {\n")
		fmt.Fprintf(&sb, "  console.error(\"ipc listener registration failed on channel \" + %q, err);\n", channel)
		sb.WriteString("}\n")
		return sb.String()
	}

	sb.WriteString("\ntry {\n")
	fmt.Fprintf(&sb, "  ipcRenderer.on(%q, (event, ...args) => {\n", channel)
	sb.WriteString("    try {\n")
	fmt.Fprintf(&sb, "      event.returnValue = %s(...args);\n", fn.Name)
	sb.WriteString("    } catch (err) {\n")
	fmt.Fprintf(&sb, "      console.error(\"ipc handler failed on channel \" + %q, err);\n", channel)
	sb.WriteString("      event.returnValue = { error: err instanceof Error ? err.message : String(err) };\n")
	sb.WriteString("    }\n")
	sb.WriteString("  });\n")
	sb.WriteString("} catch (err) {\n")
	fmt.Fprintf(&sb, "  console.error(\"ipc listener registration failed on channel \" + %q, err);\n", channel)
	sb.WriteString("}\n")
	return sb.String()
}

// invokeStub emits the (renderer, main) cell: the function's span is
// replaced with a proxy. The async variant awaits the reply and rejects
// with an error reconstructed from the sentinel payload; the sync variant
// blocks and returns whatever the handler produced (on failure that is the
// {error} shape, mirroring the sync-handler failure contract: sync call
// sites check, they do not catch).
func invokeStub(fn ExportedFunction, channel string) string {
	var sb strings.Builder
	if fn.IsAsync {
		sb.WriteString(stubHeader(fn))
		fmt.Fprintf(&sb, "  const result = await ipcRenderer.invoke(%q, ...args);\n", channel)
		sb.WriteString("  if (result && typeof result === \"object\" && \"__ipcError\" in result) {\n")
		sb.WriteString("    throw new Error(result.__ipcError);\n")
		sb.WriteString("  }\n")
		sb.WriteString("  return result;\n")
		sb.WriteString("}")
		return sb.String()
	}

	sb.WriteString(stubHeader(fn))
	fmt.Fprintf(&sb, "  return ipcRenderer.sendSync(%q, ...args);\n", channel)
	sb.WriteString("}")
	return sb.String()
}

// broadcastStub emits the (main, renderer) cell: the function's span is
// replaced with a proxy that sends the same message to every currently open
// window. The async variant resolves on the first reply received from any
// of them; later replies are discarded by the one-shot listener. With zero
// open windows the returned promise never settles, a known property of the
// protocol that is preserved as-is. The sync variant is fire-and-forget:
// no blocking main-to-renderer round trip exists.
func broadcastStub(fn ExportedFunction, channel string) string {
	var sb strings.Builder
	if fn.IsAsync {
		sb.WriteString(stubHeader(fn))
		sb.WriteString("  return new Promise((resolve, reject) => {\n")
		fmt.Fprintf(&sb, "    ipcMain.once(%q, (_event, reply) => {\n", ReplyChannel(channel))
		sb.WriteString("      if (reply && typeof reply === \"object\" && \"__ipcError\" in reply) {\n")
		sb.WriteString("        reject(new Error(reply.__ipcError));\n")
		sb.WriteString("        return;\n")
		sb.WriteString("      }\n")
		sb.WriteString("      resolve(reply);\n")
		sb.WriteString("    });\n")
		sb.WriteString("    for (const win of BrowserWindow.getAllWindows()) {\n")
		fmt.Fprintf(&sb, "      win.webContents.send(%q, ...args);\n", channel)
		sb.WriteString("    }\n")
		sb.WriteString("  });\n")
		sb.WriteString("}")
		return sb.String()
	}

	sb.WriteString(stubHeader(fn))
	sb.WriteString("  for (const win of BrowserWindow.getAllWindows()) {\n")
	fmt.Fprintf(&sb, "    win.webContents.send(%q, ...args);\n", channel)
	sb.WriteString("  }\n")
	sb.WriteString("}")
	return sb.String()
}

// stubHeader opens a replacement function matching the original's form and
// exported name, with variadic arity so call sites stay untouched.
func stubHeader(fn ExportedFunction) string {
	async := ""
	if fn.IsAsync {
		async = "async "
	}

	switch fn.Form {
	case FormArrow:
		return async + "(...args) => {\n"
	case FormFunctionExpr:
		return async + "function (...args) {\n"
	default:
		if fn.Anonymous {
			return async + "function (...args) {\n"
		}
		return fmt.Sprintf("%sfunction %s(...args) {\n", async, fn.Name)
	}
}
