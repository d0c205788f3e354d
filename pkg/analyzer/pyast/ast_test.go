package pyast

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
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

func findTest(t *testing.T, tests []TestFunc, name string) TestFunc {
	t.Helper()
	for _, test := range tests {
		if test.Name == name {
			return test
		}
	}
	t.Fatalf("test %q not found", name)
	return TestFunc{}
}

const collectSource = `import os

def test_alpha():
    assert True

def helper():
    pass

class TestWidget:
    def test_beta(self):
        assert True

    def build(self):
        pass

class Helper:
    def test_gamma(self):
        pass

@pytest.mark.parametrize("x", [1, 2])
def test_delta(x):
    assert x

def test_outer():
    def inner():
        pass
    assert True
`

func TestCollectTestFunctions(t *testing.T) {
	root, source := parsePy(t, collectSource)

	tests := CollectTestFunctions(root, source)
	if len(tests) != 4 {
		names := make([]string, len(tests))
		for i, test := range tests {
			names[i] = test.Name
		}
		t.Fatalf("collected %d tests %v, want 4", len(tests), names)
	}

	alpha := findTest(t, tests, "test_alpha")
	if alpha.Class != "" {
		t.Errorf("test_alpha.Class = %q, want empty", alpha.Class)
	}

	beta := findTest(t, tests, "test_beta")
	if beta.Class != "TestWidget" {
		t.Errorf("test_beta.Class = %q, want TestWidget", beta.Class)
	}
	if ParamCount(beta, source) != 0 {
		t.Errorf("test_beta params = %d, want 0 (self excluded)", ParamCount(beta, source))
	}

	delta := findTest(t, tests, "test_delta")
	if delta.Decorators != 1 {
		t.Errorf("test_delta.Decorators = %d, want 1", delta.Decorators)
	}
	if ParamCount(delta, source) != 1 {
		t.Errorf("test_delta params = %d, want 1", ParamCount(delta, source))
	}

	for _, test := range tests {
		switch test.Name {
		case "helper", "build", "test_gamma", "inner":
			t.Errorf("%q should not be collected", test.Name)
		}
	}
}

func TestWalkTestSkipsNestedDefinitions(t *testing.T) {
	root, source := parsePy(t, `def test_outer():
    def inner():
        obj._secret()
    value = compute()
    assert value
`)

	test := findTest(t, CollectTestFunctions(root, source), "test_outer")

	calls := CallNodes(test)
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1 (nested definition excluded)", len(calls))
	}
	if got := CalleeName(calls[0], source); got != "compute" {
		t.Errorf("callee = %q, want compute", got)
	}
}

func TestReceiverChain(t *testing.T) {
	root, source := parsePy(t, `def test_chain():
    self.service.client._go()
    make_client().transport._reset()
`)

	test := findTest(t, CollectTestFunctions(root, source), "test_chain")
	calls := CallNodes(test)
	if len(calls) != 3 {
		t.Fatalf("got %d calls, want 3", len(calls))
	}

	attr := CalleeAttribute(calls[0])
	if attr == nil {
		t.Fatal("expected a method call")
	}

	chain := ReceiverChain(attr, source)
	want := []string{"self", "service", "client"}
	if len(chain) != len(want) {
		t.Fatalf("chain = %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("chain = %v, want %v", chain, want)
		}
	}

	if !IsSelfRooted(attr, source) {
		t.Error("self.service.client chain should be self-rooted")
	}
	if got := Receiver(attr, source); got != "self.service.client" {
		t.Errorf("Receiver = %q, want self.service.client", got)
	}
}

func TestComments(t *testing.T) {
	root, source := parsePy(t, `def test_commented():
    # Arrange
    user = make_user()
    # Act
    result = login(user)
    assert result
`)

	test := findTest(t, CollectTestFunctions(root, source), "test_commented")

	comments := Comments(test, source)
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0].Text != "# Arrange" || comments[0].Line != 2 {
		t.Errorf("first comment = %+v, want '# Arrange' at line 2", comments[0])
	}
	if comments[1].Text != "# Act" || comments[1].Line != 4 {
		t.Errorf("second comment = %+v, want '# Act' at line 4", comments[1])
	}
}

func TestCounts(t *testing.T) {
	root, source := parsePy(t, `def test_counts(self):
    result = run()
    # a note
    assert result
    self.assertEqual(result, 3)
    mock.assert_called_once()
`)

	test := findTest(t, CollectTestFunctions(root, source), "test_counts")

	if got := StatementCount(test); got != 4 {
		t.Errorf("StatementCount = %d, want 4 (comments excluded)", got)
	}
	if got := AssertionCount(test, source); got != 3 {
		t.Errorf("AssertionCount = %d, want 3", got)
	}
}

func TestIsTestName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"test_login", true},
		{"login_test", true},
		{"test", true},
		{"testing_helpers", false},
		{"latest", false},
		{"helper", false},
	}

	for _, tt := range tests {
		if got := IsTestName(tt.name); got != tt.want {
			t.Errorf("IsTestName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTextBounds(t *testing.T) {
	root, source := parsePy(t, "x = 1\n")

	if got := Text(nil, source); got != "" {
		t.Errorf("Text(nil) = %q, want empty", got)
	}
	if got := Text(root, []byte("x")); got != "" {
		t.Errorf("Text with truncated source = %q, want empty", got)
	}
	if got := Text(root, source); got != "x = 1\n" {
		t.Errorf("Text(root) = %q", got)
	}
}

func TestLine(t *testing.T) {
	root, source := parsePy(t, "\n\ndef test_late():\n    pass\n")

	test := findTest(t, CollectTestFunctions(root, source), "test_late")
	if got := Line(test.Node); got != 3 {
		t.Errorf("Line = %d, want 3", got)
	}
}
