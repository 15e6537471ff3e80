// Package transform rewrites *.main.ipc.* and *.renderer.ipc.* source files
// at build time into context-correct IPC glue: exported functions either
// keep their body and gain an appended channel registration, or have their
// body replaced by a proxy stub, depending on which processing context is
// being compiled and which role the file declares.
//
// The transform is a pure function of one file's text plus the context
// flags. It holds no state beyond one call and touches nothing shared, so
// callers may transform distinct files concurrently without synchronization.
package transform

import (
	"context"
	"path/filepath"

	"github.com/ipcforge/ipcforge/errors"
)

// DefaultHostModule is the module specifier the generated glue imports the
// IPC primitives from unless configured otherwise.
const DefaultHostModule = "electron"

// Options configures one file's transform.
type Options struct {
	// Context is the processing context being compiled.
	Context Context
	// HostModule overrides the module the generated code imports host-API
	// symbols from. Empty means DefaultHostModule.
	HostModule string
}

// Binding describes one exported function bound to a channel.
type Binding struct {
	Export   string `json:"export"`
	Channel  string `json:"channel"`
	Strategy string `json:"strategy"`
	Async    bool   `json:"async"`
	Default  bool   `json:"default"`
}

// Result is the outcome of transforming one file.
type Result struct {
	// Code is the transformed source. When Changed is false it is the
	// original bytes, untouched.
	Code []byte
	// Mapping relates every byte range of Code back to the original file.
	// Empty when Changed is false.
	Mapping []Segment
	// Bindings lists the channels derived for this file in document order.
	Bindings []Binding
	// Changed reports whether any edit was applied.
	Changed bool
}

// File runs the whole pipeline for one file: parse, extract the exported
// functions, derive their channels, generate the per-cell rewrite, merge the
// host-API imports, and assemble the output.
//
// A file with no qualifying exports is returned byte-identical with zero
// edits; files without IPC exports must pass through unmodified. A file
// whose name carries no role suffix is an ErrNoRole error; callers filter
// with Matches before invoking the engine.
func File(ctx context.Context, opts Options, fileName string, src []byte) (*Result, error) {
	base := filepath.Base(fileName)

	role, ok := RoleFromFileName(base)
	if !ok {
		return nil, errors.Wrap(errors.ErrNoRole, base)
	}
	if opts.Context != ContextMain && opts.Context != ContextRenderer {
		return nil, errors.Newf("invalid processing context %q", string(opts.Context))
	}
	hostModule := opts.HostModule
	if hostModule == "" {
		hostModule = DefaultHostModule
	}

	tree, err := parse(ctx, base, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	root := tree.RootNode()

	exports := extractExports(root, src)
	if len(exports) == 0 {
		return &Result{Code: src}, nil
	}

	st := strategyFor(opts.Context, role)
	gen := newGenerator()

	var edits []edit
	bindings := make([]Binding, 0, len(exports))
	owners := make(map[string]string, len(exports))

	for _, fn := range exports {
		seg := nameSegment(fn)
		channel := Channel(base, seg, src[fn.Start:fn.End])

		// Same segment plus byte-identical body would silently cross wires
		// at runtime; fail the build instead.
		if prev, dup := owners[channel]; dup {
			return nil, errors.Wrapf(errors.ErrChannelCollision,
				"%s: exports %q and %q both derive channel %q", base, prev, fn.Name, channel)
		}
		owners[channel] = fn.Name

		edits = append(edits, gen.function(st, fn, channel, len(src))...)
		bindings = append(bindings, Binding{
			Export:   fn.Name,
			Channel:  channel,
			Strategy: st.String(),
			Async:    fn.IsAsync,
			Default:  fn.IsDefault,
		})
	}

	edits = append(edits, mergeImports(root, src, hostModule, gen.needs)...)

	code, mapping, err := assemble(src, edits)
	if err != nil {
		return nil, errors.Wrap(err, base)
	}

	return &Result{
		Code:     code,
		Mapping:  mapping,
		Bindings: bindings,
		Changed:  true,
	}, nil
}
