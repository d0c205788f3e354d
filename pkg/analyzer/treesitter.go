// Package analyzer orchestrates rule detection, feature extraction, scoring,
// and duplicate detection across a test suite.
package analyzer

import (
	"context"
	"errors"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/battleready/core/pkg/domain"
)

var (
	pyLang   *sitter.Language
	langOnce sync.Once
)

// ErrEmptyTree is returned when parsing produces no syntax tree.
var ErrEmptyTree = errors.New("analyzer: parser returned no tree")

func pythonLanguage() *sitter.Language {
	langOnce.Do(func() {
		pyLang = python.GetLanguage()
	})
	return pyLang
}

// ParsePython parses Python source into a syntax tree. A fresh parser is
// created per call: a cancelled ParseCtx leaves the parser's internal cancel
// flag set, so reusing parsers makes subsequent parses fail.
// The caller must Close the returned tree.
func ParsePython(ctx context.Context, source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(pythonLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, ErrEmptyTree
	}
	return tree, nil
}

// GetLocation converts a node's position to a 1-based line range.
func GetLocation(node *sitter.Node, filename string) domain.Location {
	start := node.StartPoint()
	end := node.EndPoint()

	return domain.Location{
		File:      filename,
		StartLine: int(start.Row) + 1,
		EndLine:   int(end.Row) + 1,
		StartCol:  int(start.Column),
		EndCol:    int(end.Column),
	}
}
