// Package parser wraps tree-sitter parsing of Python sources.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser wraps a tree-sitter parser configured for Python.
// It is not safe for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed tree and its source.
type ParseResult struct {
	Tree   *sitter.Tree
	Source []byte
	Path   string
}

// New creates a Python parser.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses Python source code. The returned error covers parser
// failures only; syntactically broken input parses into a tree that
// reports HasSyntaxError.
func (p *Parser) Parse(ctx context.Context, source []byte, path string) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &ParseResult{Tree: tree, Source: source, Path: path}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// HasSyntaxError reports whether the parse produced error or missing
// nodes anywhere in the tree.
func (r *ParseResult) HasSyntaxError() bool {
	root := r.Tree.RootNode()
	return root == nil || root.HasError()
}

// IsPythonPath reports whether the path names a Python source file.
func IsPythonPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyw", ".pyi":
		return true
	}
	return false
}

// TypedNodeVisitor visits nodes with the node type cached once per
// node to avoid repeated CGO calls.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// WalkTyped traverses the tree depth-first, calling visitor for each
// node. Returning false from the visitor skips the node's children.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	if !visitor(node, nodeType, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// NodeText extracts the source text for a node. Returns empty string
// if node is nil or byte offsets are out of bounds.
func NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
