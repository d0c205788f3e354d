package rules

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/battleready/core/pkg/domain"
)

func parsePy(t *testing.T, source string) (*sitter.Node, []byte) {
	t.Helper()

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(source))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	t.Cleanup(func() { tree.Close() })

	return tree.RootNode(), []byte(source)
}

func analyze(t *testing.T, d Detector, source string) []domain.Finding {
	t.Helper()

	root, src := parsePy(t, source)
	findings, err := d.Analyze(root, src, "test_file.py")
	if err != nil {
		t.Fatalf("%s: %v", d.Name(), err)
	}
	return findings
}

func findingCodes(findings []domain.Finding) []domain.RuleCode {
	codes := make([]domain.RuleCode, len(findings))
	for i, f := range findings {
		codes[i] = f.Code
	}
	return codes
}
