package pyast

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ExceptionTokens extracts the exception-handling pattern tokens of a test:
// "pytest_raises" for pytest.raises usage and "except_<Name>" for except
// clauses. Tokens are deduplicated, first-seen order preserved.
func ExceptionTokens(t TestFunc, source []byte) []string {
	var tokens []string
	seen := make(map[string]bool)

	add := func(token string) {
		if token != "" && !seen[token] {
			seen[token] = true
			tokens = append(tokens, token)
		}
	}

	WalkTest(t.Body, func(node *sitter.Node) bool {
		switch node.Type() {
		case NodeCall:
			if isPytestRaises(node, source) {
				add("pytest_raises")
			}
		case NodeExceptClause:
			for _, name := range exceptClauseTypes(node, source) {
				add("except_" + name)
			}
		}
		return true
	})

	return tokens
}

func isPytestRaises(call *sitter.Node, source []byte) bool {
	if CalleeName(call, source) != "raises" {
		return false
	}

	attr := CalleeAttribute(call)
	if attr == nil {
		// Bare raises() from "from pytest import raises".
		return true
	}

	chain := ReceiverChain(attr, source)
	return len(chain) == 1 && chain[0] == "pytest"
}

// exceptClauseTypes returns the exception type names of an except clause.
// A bare except yields ["bare"].
func exceptClauseTypes(clause *sitter.Node, source []byte) []string {
	var expr *sitter.Node
	for i := 0; i < int(clause.ChildCount()); i++ {
		child := clause.Child(i)
		if child.IsNamed() && child.Type() != NodeBlock {
			expr = child
			break
		}
	}

	if expr == nil {
		return []string{"bare"}
	}
	return exceptionNames(expr, source)
}

func exceptionNames(expr *sitter.Node, source []byte) []string {
	switch expr.Type() {
	case NodeIdentifier:
		return []string{Text(expr, source)}
	case NodeAttribute:
		return []string{Text(expr.ChildByFieldName("attribute"), source)}
	case NodeTuple:
		var names []string
		for i := 0; i < int(expr.ChildCount()); i++ {
			child := expr.Child(i)
			if child.IsNamed() {
				names = append(names, exceptionNames(child, source)...)
			}
		}
		return names
	default:
		return nil
	}
}
