package transform

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Node type names shared by the javascript and typescript grammars.
// Function expressions are "function" in older grammar revisions and
// "function_expression" in newer ones; both are matched.
const (
	nodeExportStatement     = "export_statement"
	nodeFunctionDeclaration = "function_declaration"
	nodeFunctionExpression  = "function_expression"
	nodeFunctionLegacy      = "function"
	nodeArrowFunction       = "arrow_function"
	nodeLexicalDeclaration  = "lexical_declaration"
	nodeVariableDeclaration = "variable_declaration"
	nodeVariableDeclarator  = "variable_declarator"
	nodeImportStatement     = "import_statement"
	nodeImportClause        = "import_clause"
	nodeNamedImports        = "named_imports"
	nodeNamespaceImport     = "namespace_import"
	nodeImportSpecifier     = "import_specifier"
	nodeIdentifier          = "identifier"
	nodeString              = "string"
	nodeStringFragment      = "string_fragment"
	tokenAsync              = "async"
	tokenDefault            = "default"
)

// DefaultExportName is the synthetic identifier assigned to an anonymous
// default export so generated registrations can call it. Naming the
// declaration binds it in module scope without touching the body.
const DefaultExportName = "__ipcDefault"

// Form distinguishes how the function was written, which dictates the shape
// a replacement stub must take.
type Form int

const (
	// FormDeclaration is `function name(...) {...}` (possibly async/default).
	FormDeclaration Form = iota
	// FormFunctionExpr is the right-hand side `function (...) {...}`.
	FormFunctionExpr
	// FormArrow is the right-hand side `(...) => {...}`.
	FormArrow
)

// ExportedFunction is one qualifying top-level exported declaration.
// Start/End delimit the function node itself (never the `export` keyword,
// never the enclosing statement): that exact original slice is both the
// hash input and the rewrite target.
type ExportedFunction struct {
	Name      string
	Start     int
	End       int
	IsAsync   bool
	IsDefault bool
	Anonymous bool
	Form      Form

	// nameInsertAt is the byte offset directly after the `function` keyword
	// where the synthetic identifier is inserted when an anonymous default
	// export must stay callable. -1 when not applicable.
	nameInsertAt int
}

// extractExports walks the top level of the module once, collecting every
// exported function-like declaration in document order. Other exported
// declarations (classes, non-function consts, re-exports) are left alone.
func extractExports(root *sitter.Node, src []byte) []ExportedFunction {
	var out []ExportedFunction

	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != nodeExportStatement {
			continue
		}
		out = append(out, extractFromExport(stmt, src)...)
	}

	return out
}

// extractFromExport handles one `export ...` statement.
func extractFromExport(stmt *sitter.Node, src []byte) []ExportedFunction {
	isDefault := hasToken(stmt, tokenDefault)

	// export [default] [async] function [name](...) {...}
	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		switch decl.Type() {
		case nodeFunctionDeclaration:
			return []ExportedFunction{functionEntry(decl, src, isDefault)}
		case nodeLexicalDeclaration, nodeVariableDeclaration:
			return declaratorEntries(decl, src, isDefault)
		}
		return nil
	}

	// export default function(...) {...}: some grammar revisions surface
	// the anonymous function as the statement's value expression.
	if value := stmt.ChildByFieldName("value"); value != nil && isDefault {
		if isFunctionExpr(value.Type()) {
			fn := functionEntry(value, src, true)
			if value.Type() != nodeFunctionDeclaration {
				fn.Form = FormFunctionExpr
			}
			return []ExportedFunction{fn}
		}
	}

	return nil
}

// functionEntry builds the record for a function declaration node (named or
// anonymous default).
func functionEntry(fn *sitter.Node, src []byte, isDefault bool) ExportedFunction {
	entry := ExportedFunction{
		Start:        int(fn.StartByte()),
		End:          int(fn.EndByte()),
		IsAsync:      hasToken(fn, tokenAsync),
		IsDefault:    isDefault,
		Form:         FormDeclaration,
		nameInsertAt: -1,
	}

	if name := fn.ChildByFieldName("name"); name != nil {
		entry.Name = name.Content(src)
	} else {
		entry.Name = DefaultExportName
		entry.Anonymous = true
		entry.nameInsertAt = nameInsertOffset(fn)
	}
	return entry
}

// declaratorEntries handles `export const name = <fn>` forms. Only
// declarators whose value is an arrow or function expression qualify.
func declaratorEntries(decl *sitter.Node, src []byte, isDefault bool) []ExportedFunction {
	var out []ExportedFunction

	for i := 0; i < int(decl.NamedChildCount()); i++ {
		d := decl.NamedChild(i)
		if d.Type() != nodeVariableDeclarator {
			continue
		}
		name := d.ChildByFieldName("name")
		value := d.ChildByFieldName("value")
		if name == nil || value == nil || name.Type() != nodeIdentifier {
			continue
		}

		form := FormArrow
		switch {
		case value.Type() == nodeArrowFunction:
		case isFunctionExpr(value.Type()):
			form = FormFunctionExpr
		default:
			continue
		}

		out = append(out, ExportedFunction{
			Name:         name.Content(src),
			Start:        int(value.StartByte()),
			End:          int(value.EndByte()),
			IsAsync:      hasToken(value, tokenAsync),
			IsDefault:    isDefault,
			Form:         form,
			nameInsertAt: -1,
		})
	}

	return out
}

// isFunctionExpr matches function expression nodes across grammar revisions.
func isFunctionExpr(nodeType string) bool {
	return nodeType == nodeFunctionExpression || nodeType == nodeFunctionLegacy
}

// hasToken reports whether any direct child is the given anonymous token.
func hasToken(n *sitter.Node, token string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == token {
			return true
		}
	}
	return false
}

// nameInsertOffset locates the byte offset right after the `function`
// keyword of an anonymous function so a synthetic identifier can be
// spliced in.
func nameInsertOffset(fn *sitter.Node) int {
	for i := 0; i < int(fn.ChildCount()); i++ {
		c := fn.Child(i)
		if c.Type() == nodeFunctionLegacy && int(c.EndByte())-int(c.StartByte()) == len(nodeFunctionLegacy) {
			return int(c.EndByte())
		}
	}
	return -1
}
