package transform

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/ipcforge/ipcforge/errors"
)

// languageFor selects the tree-sitter grammar from the file extension.
// TypeScript sources need the typescript grammar; everything else parses
// with the javascript grammar, which also covers .mjs/.cjs/.jsx.
func languageFor(fileName string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// parse produces a syntax tree with byte offsets for the given source.
// A tree containing ERROR nodes is a fatal parse failure for this file:
// the transform returns no partial output (the build must not silently
// ship mis-transformed code).
func parse(ctx context.Context, fileName string, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(languageFor(fileName))

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrParse, "%s: %v", fileName, err)
	}
	if tree.RootNode().HasError() {
		tree.Close()
		return nil, errors.Wrapf(errors.ErrParse, "%s: source contains syntax errors", fileName)
	}
	return tree, nil
}
