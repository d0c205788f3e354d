package rules

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/battleready/core/pkg/domain"
)

func TestPrivateAccessDetectorImports(t *testing.T) {
	findings := analyze(t, NewPrivateAccessDetector(), `import os
import _secrets
from payments_internal import charge
from __future__ import annotations

def test_noop():
    assert True
`)

	codes := findingCodes(findings)
	if len(findings) != 2 || codes[0] != CodePrivateImport || codes[1] != CodePrivateImport {
		t.Fatalf("got findings %v, want two PA001", codes)
	}

	detail, ok := findings[0].Detail.(domain.PrivateImport)
	if !ok {
		t.Fatalf("Detail = %T, want PrivateImport", findings[0].Detail)
	}
	if detail.Module != "_secrets" {
		t.Errorf("Module = %q, want _secrets", detail.Module)
	}

	detail = findings[1].Detail.(domain.PrivateImport)
	if detail.Module != "payments_internal" {
		t.Errorf("Module = %q, want payments_internal", detail.Module)
	}
	if !reflect.DeepEqual(detail.Names, []string{"charge"}) {
		t.Errorf("Names = %v, want [charge]", detail.Names)
	}
}

func TestIsPrivateModule(t *testing.T) {
	tests := []struct {
		module string
		want   bool
	}{
		{"_secrets", true},
		{"pkg._internal", true},
		{"payments_internal", true},
		{"engine_impl", true},
		{"pkg.api_internal.v2", true},
		{"os", false},
		{"os.path", false},
		{"__future__", false},
		{"internal", false},
	}

	for _, tt := range tests {
		if got := isPrivateModule(tt.module); got != tt.want {
			t.Errorf("isPrivateModule(%q) = %v, want %v", tt.module, got, tt.want)
		}
	}
}

func TestPrivateAccessDetectorAttributes(t *testing.T) {
	findings := analyze(t, NewPrivateAccessDetector(), `def test_state():
    value = obj._state
    assert value == obj.total
`)

	if len(findings) != 1 {
		t.Fatalf("got findings %v, want one PA002", findingCodes(findings))
	}

	f := findings[0]
	if f.Code != CodePrivateAttribute {
		t.Errorf("Code = %s, want PA002", f.Code)
	}
	detail := f.Detail.(domain.PrivateAttribute)
	if detail.Attribute != "_state" || detail.Object != "obj" {
		t.Errorf("Detail = %+v, want {_state obj}", detail)
	}
	if f.Line != 2 {
		t.Errorf("Line = %d, want 2", f.Line)
	}
}

func TestPrivateAccessDetectorCalls(t *testing.T) {
	// A private method call reports PA003 only, not a PA002 for the callee
	// attribute.
	findings := analyze(t, NewPrivateAccessDetector(), `def test_rebuild():
    repo.cache._evict()
`)

	if len(findings) != 1 {
		t.Fatalf("got findings %v, want one PA003", findingCodes(findings))
	}

	f := findings[0]
	if f.Code != CodePrivateCall {
		t.Errorf("Code = %s, want PA003", f.Code)
	}
	detail := f.Detail.(domain.PrivateCall)
	if detail.Method != "_evict" || detail.Receiver != "repo.cache" {
		t.Errorf("Detail = %+v, want {_evict repo.cache}", detail)
	}
	if !strings.Contains(f.Message, "_evict") {
		t.Errorf("Message = %q, should name the method", f.Message)
	}
}

func TestPrivateAccessDetectorSelfExempt(t *testing.T) {
	findings := analyze(t, NewPrivateAccessDetector(), `class TestThing:
    def test_internal(self):
        self._helper()
        self.repo.cache._evict()
        assert True
`)

	if len(findings) != 0 {
		t.Errorf("got findings %v, want none for self-rooted calls", findingCodes(findings))
	}
}

func TestPrivateAccessDetectorPublicAccess(t *testing.T) {
	findings := analyze(t, NewPrivateAccessDetector(), `def test_public():
    result = service.process(order)
    assert result.status == "done"
`)

	if len(findings) != 0 {
		t.Errorf("got findings %v, want none for public access", findingCodes(findings))
	}
}

func TestNewParseFailureFinding(t *testing.T) {
	f := NewParseFailureFinding("broken.py", errors.New("context canceled"))

	if f.Code != CodeParseFailure {
		t.Errorf("Code = %s, want PE001", f.Code)
	}
	if f.Severity != domain.SeverityError {
		t.Errorf("Severity = %s, want error", f.Severity)
	}
	if f.File != "broken.py" || f.Line != 1 {
		t.Errorf("location = %s:%d, want broken.py:1", f.File, f.Line)
	}
	if f.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", f.Confidence)
	}
	detail := f.Detail.(domain.ParseFailureDetail)
	if detail.Reason != "context canceled" {
		t.Errorf("Reason = %q", detail.Reason)
	}
}
