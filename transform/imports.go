package transform

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// hostImport is one classified import statement from the host module.
type hostImport struct {
	stmt   *sitter.Node
	named  *sitter.Node // named_imports node, if any
	deflt  *sitter.Node // default-bound identifier, if any
	opaque bool         // namespace or bare side-effect import
}

// mergeImports produces the edits that guarantee every needed host-API
// symbol is importable as a named binding from the host module. The merge
// operates on the structured import statement (tree-sitter nodes), never on
// regexes, so only genuinely unmergeable shapes (namespace imports, bare
// side-effect imports) take the append-a-fresh-statement fallback.
//
// Priority order:
//  1. no host import        → synthesize a named import prepended to the file
//  2. named import exists   → append missing symbols to its list in place
//  3. default-only import   → rewrite to default-plus-named in place
//  4. unclassifiable shape  → append a new named import right after it
//
// Merging is idempotent: symbols already present produce no edit.
func mergeImports(root *sitter.Node, src []byte, hostModule string, needs []string) []edit {
	if len(needs) == 0 {
		return nil
	}

	imports := hostImports(root, src, hostModule)

	// Prefer a named import over a default-only one over an opaque one,
	// regardless of statement order, so repeated merges converge on the
	// same statement.
	var namedTarget, defaultTarget, opaqueTarget *hostImport
	for i := range imports {
		imp := &imports[i]
		switch {
		case imp.named != nil && namedTarget == nil:
			namedTarget = imp
		case imp.named == nil && imp.deflt != nil && defaultTarget == nil:
			defaultTarget = imp
		case imp.opaque && opaqueTarget == nil:
			opaqueTarget = imp
		}
	}

	switch {
	case namedTarget != nil:
		return mergeNamed(namedTarget.named, src, needs)
	case defaultTarget != nil:
		return rewriteDefault(defaultTarget, src, needs)
	case opaqueTarget != nil:
		stmt := opaqueTarget.stmt
		text := "\n" + importStatement(hostModule, needs)
		return []edit{{start: int(stmt.EndByte()), end: int(stmt.EndByte()), text: text}}
	default:
		return []edit{{start: 0, end: 0, text: importStatement(hostModule, needs) + "\n"}}
	}
}

// hostImports collects and classifies every top-level import statement whose
// source is the host module.
func hostImports(root *sitter.Node, src []byte, hostModule string) []hostImport {
	var out []hostImport

	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != nodeImportStatement {
			continue
		}
		source := stmt.ChildByFieldName("source")
		if source == nil || importSource(source, src) != hostModule {
			continue
		}

		imp := hostImport{stmt: stmt}
		clause := childOfType(stmt, nodeImportClause)
		if clause == nil {
			// Bare side-effect import: import "electron";
			imp.opaque = true
			out = append(out, imp)
			continue
		}

		for j := 0; j < int(clause.NamedChildCount()); j++ {
			c := clause.NamedChild(j)
			switch c.Type() {
			case nodeNamedImports:
				imp.named = c
			case nodeIdentifier:
				imp.deflt = c
			case nodeNamespaceImport:
				imp.opaque = true
			}
		}
		out = append(out, imp)
	}

	return out
}

// mergeNamed appends the missing symbols to an existing named-import list,
// rewriting only that list's span. Pre-existing specifiers keep their order
// and spelling (including aliases); new symbols are appended in discovery
// order.
func mergeNamed(named *sitter.Node, src []byte, needs []string) []edit {
	var specs []string
	bound := make(map[string]bool)

	for i := 0; i < int(named.NamedChildCount()); i++ {
		spec := named.NamedChild(i)
		if spec.Type() != nodeImportSpecifier {
			continue
		}
		specs = append(specs, spec.Content(src))
		if name := spec.ChildByFieldName("name"); name != nil {
			bound[name.Content(src)] = true
		}
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			bound[alias.Content(src)] = true
		}
	}

	missing := false
	for _, sym := range needs {
		if !bound[sym] {
			specs = append(specs, sym)
			missing = true
		}
	}
	if !missing {
		return nil
	}

	text := "{ " + strings.Join(specs, ", ") + " }"
	return []edit{{start: int(named.StartByte()), end: int(named.EndByte()), text: text}}
}

// rewriteDefault turns a default-style import into a default-plus-named form
// carrying the originally bound default identifier.
func rewriteDefault(imp *hostImport, src []byte, needs []string) []edit {
	text := fmt.Sprintf("%s, { %s }", imp.deflt.Content(src), strings.Join(needs, ", "))
	return []edit{{start: int(imp.deflt.StartByte()), end: int(imp.deflt.EndByte()), text: text}}
}

// importStatement renders a fresh named-import statement.
func importStatement(hostModule string, needs []string) string {
	return fmt.Sprintf("import { %s } from %q;", strings.Join(needs, ", "), hostModule)
}

// importSource extracts the module specifier out of an import's string node.
func importSource(source *sitter.Node, src []byte) string {
	if frag := childOfType(source, nodeStringFragment); frag != nil {
		return frag.Content(src)
	}
	// Older grammars expose the quoted string only.
	return strings.Trim(source.Content(src), "\"'`")
}

// childOfType returns the first named child with the given type, or nil.
func childOfType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == nodeType {
			return c
		}
	}
	return nil
}
