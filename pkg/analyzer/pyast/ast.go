// Package pyast provides Python AST traversal utilities for test analysis.
package pyast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Python AST node types.
const (
	NodeAssertStatement     = "assert_statement"
	NodeAttribute           = "attribute"
	NodeBlock               = "block"
	NodeCall                = "call"
	NodeClassDefinition     = "class_definition"
	NodeComment             = "comment"
	NodeComparisonOperator  = "comparison_operator"
	NodeDecorator           = "decorator"
	NodeDecoratedDefinition = "decorated_definition"
	NodeExceptClause        = "except_clause"
	NodeFunctionDefinition  = "function_definition"
	NodeIdentifier          = "identifier"
	NodeImportFromStatement = "import_from_statement"
	NodeImportStatement     = "import_statement"
	NodeString              = "string"
	NodeTryStatement        = "try_statement"
	NodeTuple               = "tuple"
	NodeWildcardImport      = "wildcard_import"
)

// maxDepth bounds recursion when walking trees.
const maxDepth = 1000

// TestFunc is a test function found in a parsed file.
type TestFunc struct {
	// Name is the function name.
	Name string
	// Class is the enclosing Test* class name, or empty at module level.
	Class string
	// Node is the function_definition node.
	Node *sitter.Node
	// Body is the function's block node.
	Body *sitter.Node
	// Decorators is the number of decorators on the function.
	Decorators int
}

// Comment is a line comment with its position.
type Comment struct {
	// Text is the raw comment text, including the leading '#'.
	Text string
	// Line is the 1-based line number.
	Line int
}

// Import is one import statement.
type Import struct {
	// Module is the imported module's dotted path.
	Module string
	// Names lists imported names for from-imports.
	Names []string
	// Node is the import statement node.
	Node *sitter.Node
}

// Text returns the source text for the given node. Returns empty string when
// the node's byte range exceeds the source length; recovers from tree-sitter
// slice bound panics seen with reused parsers.
func Text(node *sitter.Node, source []byte) (result string) {
	if node == nil {
		return ""
	}

	start := node.StartByte()
	end := node.EndByte()
	if start > uint32(len(source)) || end > uint32(len(source)) {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			result = ""
		}
	}()

	return node.Content(source)
}

// Line returns the node's 1-based start line.
func Line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// IsTestName reports whether a function name follows a test naming convention.
func IsTestName(name string) bool {
	return strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test") || name == "test"
}

// isTestClass reports whether a class name follows the Test* convention.
func isTestClass(name string) bool {
	return strings.HasPrefix(name, "Test")
}

// CollectTestFunctions returns the test functions in a parsed module:
// module-level functions with test names and methods of Test* classes.
// Functions nested inside other functions are never collected.
func CollectTestFunctions(root *sitter.Node, source []byte) []TestFunc {
	var tests []TestFunc

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)

		switch child.Type() {
		case NodeFunctionDefinition:
			if t := makeTestFunc(child, source, "", 0); t != nil {
				tests = append(tests, *t)
			}

		case NodeClassDefinition:
			tests = append(tests, collectClassTests(child, source)...)

		case NodeDecoratedDefinition:
			definition := decoratedDefinition(child)
			if definition == nil {
				continue
			}
			decorators := countDecorators(child)

			switch definition.Type() {
			case NodeFunctionDefinition:
				if t := makeTestFunc(definition, source, "", decorators); t != nil {
					tests = append(tests, *t)
				}
			case NodeClassDefinition:
				tests = append(tests, collectClassTests(definition, source)...)
			}
		}
	}

	return tests
}

func collectClassTests(class *sitter.Node, source []byte) []TestFunc {
	nameNode := class.ChildByFieldName("name")
	if nameNode == nil || !isTestClass(Text(nameNode, source)) {
		return nil
	}
	className := Text(nameNode, source)

	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	var tests []TestFunc
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)

		switch child.Type() {
		case NodeFunctionDefinition:
			if t := makeTestFunc(child, source, className, 0); t != nil {
				tests = append(tests, *t)
			}
		case NodeDecoratedDefinition:
			definition := decoratedDefinition(child)
			if definition == nil || definition.Type() != NodeFunctionDefinition {
				continue
			}
			if t := makeTestFunc(definition, source, className, countDecorators(child)); t != nil {
				tests = append(tests, *t)
			}
		}
	}

	return tests
}

func makeTestFunc(node *sitter.Node, source []byte, class string, decorators int) *TestFunc {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	name := Text(nameNode, source)
	if !IsTestName(name) {
		return nil
	}

	return &TestFunc{
		Name:       name,
		Class:      class,
		Node:       node,
		Body:       node.ChildByFieldName("body"),
		Decorators: decorators,
	}
}

func decoratedDefinition(node *sitter.Node) *sitter.Node {
	if definition := node.ChildByFieldName("definition"); definition != nil {
		return definition
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == NodeFunctionDefinition || child.Type() == NodeClassDefinition {
			return child
		}
	}
	return nil
}

func countDecorators(node *sitter.Node) int {
	count := 0
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == NodeDecorator {
			count++
		}
	}
	return count
}

// Walk visits every node in the subtree. The visitor returns false to stop
// descending into children.
func Walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	walk(node, visit, 0)
}

func walk(node *sitter.Node, visit func(*sitter.Node) bool, depth int) {
	if node == nil || depth > maxDepth {
		return
	}
	if !visit(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), visit, depth+1)
	}
}

// WalkTest visits every node under start, except the contents of nested
// function and class definitions — their code must not be attributed to the
// enclosing test. The visitor returns false to stop descending into children.
func WalkTest(start *sitter.Node, visit func(*sitter.Node) bool) {
	walkTest(start, start, visit, 0)
}

func walkTest(node, start *sitter.Node, visit func(*sitter.Node) bool, depth int) {
	if node == nil || depth > maxDepth {
		return
	}

	if node != start {
		switch node.Type() {
		case NodeFunctionDefinition, NodeClassDefinition:
			return
		}
	}

	if !visit(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTest(node.Child(i), start, visit, depth+1)
	}
}

// Comments returns the line comments inside the test function's span.
func Comments(t TestFunc, source []byte) []Comment {
	var comments []Comment
	WalkTest(t.Node, func(node *sitter.Node) bool {
		if node.Type() == NodeComment {
			comments = append(comments, Comment{
				Text: Text(node, source),
				Line: Line(node),
			})
		}
		return true
	})
	return comments
}

// CallNodes returns the call expressions in the test body, excluding calls
// inside nested definitions.
func CallNodes(t TestFunc) []*sitter.Node {
	var calls []*sitter.Node
	WalkTest(t.Body, func(node *sitter.Node) bool {
		if node.Type() == NodeCall {
			calls = append(calls, node)
		}
		return true
	})
	return calls
}

// AttributeNodes returns the attribute-access expressions in the test body,
// excluding those inside nested definitions.
func AttributeNodes(t TestFunc) []*sitter.Node {
	var attrs []*sitter.Node
	WalkTest(t.Body, func(node *sitter.Node) bool {
		if node.Type() == NodeAttribute {
			attrs = append(attrs, node)
		}
		return true
	})
	return attrs
}

// StatementCount returns the number of statements directly in the body block.
func StatementCount(t TestFunc) int {
	if t.Body == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(t.Body.ChildCount()); i++ {
		child := t.Body.Child(i)
		if child.IsNamed() && child.Type() != NodeComment {
			count++
		}
	}
	return count
}

// ParamCount returns the number of function parameters, excluding self.
func ParamCount(t TestFunc, source []byte) int {
	params := t.Node.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}

	count := 0
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		if !child.IsNamed() {
			continue
		}
		if child.Type() == NodeIdentifier && Text(child, source) == "self" {
			continue
		}
		count++
	}
	return count
}

// AssertionCount counts assert statements plus calls to assert* methods.
func AssertionCount(t TestFunc, source []byte) int {
	count := 0
	WalkTest(t.Body, func(node *sitter.Node) bool {
		switch node.Type() {
		case NodeAssertStatement:
			count++
		case NodeCall:
			if strings.HasPrefix(CalleeName(node, source), "assert") {
				count++
			}
		}
		return true
	})
	return count
}
