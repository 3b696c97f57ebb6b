// Package extract evaluates the pattern catalog against single file
// snapshots.
package extract

import (
	"context"
	"errors"

	sitter "github.com/smacker/go-tree-sitter"

	"patina/pkg/catalog"
	"patina/pkg/models"
	"patina/pkg/parser"
)

// ErrParse signals that a snapshot could not be parsed as Python. The
// accompanying result is zero-valued; callers count the file as
// skipped rather than clean.
var ErrParse = errors.New("snapshot is not parseable python")

// Extractor analyzes file snapshots. It owns a parser and is therefore
// not safe for concurrent use; create one per goroutine.
type Extractor struct {
	parser   *parser.Parser
	patterns []catalog.Entry
}

// New creates an extractor over the process-wide pattern catalog.
func New() *Extractor {
	return &Extractor{
		parser:   parser.New(),
		patterns: catalog.Patterns(),
	}
}

// Close releases parser resources.
func (e *Extractor) Close() {
	e.parser.Close()
}

// Analyze produces the pattern and structure metrics for one snapshot.
// It is total: unsupported extensions and absent text yield a zero
// result with a nil error. Unparseable text yields a zero result and
// ErrParse.
func (e *Extractor) Analyze(ctx context.Context, snap models.Snapshot) (models.FileAnalysisResult, error) {
	result := models.FileAnalysisResult{FilePath: snap.Path}

	if len(snap.Text) == 0 || !parser.IsPythonPath(snap.Path) {
		return result, nil
	}

	parsed, err := e.parser.Parse(ctx, snap.Text, snap.Path)
	if err != nil || parsed.HasSyntaxError() {
		return result, ErrParse
	}

	hits := make(map[string]int)
	parser.WalkTyped(parsed.Tree.RootNode(), snap.Text, func(node *sitter.Node, nodeType string, source []byte) bool {
		e.countStructure(&result, node, nodeType)
		for _, p := range e.patterns {
			if p.Match(node, nodeType, source) {
				hits[p.ID]++
				if p.Category == catalog.CategoryDanger {
					result.SecurityIssuesPotential++
				}
			}
		}
		return true
	})

	if len(hits) > 0 {
		result.PatternHits = hits
		for _, p := range e.patterns {
			if hits[p.ID] > 0 {
				result.PatternsFound = append(result.PatternsFound, p.ID)
			}
		}
	}

	return result, nil
}

// countStructure tallies definitions, imports, and the complexity
// proxy: one point per branching, looping, or definition construct,
// one per except handler, and one per boolean operator.
func (e *Extractor) countStructure(result *models.FileAnalysisResult, node *sitter.Node, nodeType string) {
	switch nodeType {
	case "function_definition":
		result.FunctionCount++
		result.ComplexityScore++
	case "class_definition":
		result.ClassCount++
		result.ComplexityScore++
	case "import_statement", "import_from_statement":
		result.ImportCount++
	case "if_statement", "for_statement", "while_statement":
		result.ComplexityScore++
	case "try_statement":
		handlers := 0
		for i := range int(node.NamedChildCount()) {
			if node.NamedChild(i).Type() == "except_clause" {
				handlers++
			}
		}
		if handlers < 1 {
			handlers = 1
		}
		result.ComplexityScore += handlers
	case "boolean_operator":
		// Tree-sitter binarizes chained and/or, so each operator
		// node adds one branch.
		result.ComplexityScore++
	}
}
