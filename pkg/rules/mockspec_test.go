package rules

import (
	"strings"
	"testing"

	"github.com/battleready/core/pkg/analyzer/pyast"
	"github.com/battleready/core/pkg/domain"
)

const overspecifiedSource = `def test_overspecified():
    service.run()
    service.client.assert_called_once()
    service.client.assert_called_with(1)
    service.client.assert_any_call(2)
    service.client.assert_has_calls([call(1), call(2)])
`

func TestMockOverspecDetector(t *testing.T) {
	t.Run("at threshold passes", func(t *testing.T) {
		findings := analyze(t, NewMockOverspecDetector(0, nil), `def test_at_threshold():
    service.run()
    service.client.assert_called_once()
    service.client.assert_called_with(1)
    service.client.assert_any_call(2)
`)
		if len(findings) != 0 {
			t.Errorf("got findings %v at exactly the threshold, want none", findingCodes(findings))
		}
	})

	t.Run("above threshold fires once", func(t *testing.T) {
		findings := analyze(t, NewMockOverspecDetector(0, nil), overspecifiedSource)
		if len(findings) != 1 {
			t.Fatalf("got %d findings, want 1", len(findings))
		}

		f := findings[0]
		if f.Code != CodeMockOverspecification {
			t.Errorf("Code = %s, want MK001", f.Code)
		}
		if f.Severity != domain.SeverityWarning {
			t.Errorf("Severity = %s, want warning", f.Severity)
		}
		if !strings.Contains(f.Message, "4 mock assertions") || !strings.Contains(f.Message, "threshold: 3") {
			t.Errorf("Message = %q, should report count and threshold", f.Message)
		}
		detail := f.Detail.(domain.MockOveruse)
		if detail.Count != 4 || detail.Threshold != 3 {
			t.Errorf("Detail = %+v, want {4 3}", detail)
		}
	})

	t.Run("custom threshold", func(t *testing.T) {
		findings := analyze(t, NewMockOverspecDetector(1, nil), `def test_two_asserts():
    mock_db.assert_called_once()
    mock_db.assert_called_with("q")
`)
		if len(findings) != 1 {
			t.Fatalf("got %d findings with threshold 1, want 1", len(findings))
		}
		detail := findings[0].Detail.(domain.MockOveruse)
		if detail.Count != 2 || detail.Threshold != 1 {
			t.Errorf("Detail = %+v, want {2 1}", detail)
		}
	})

	t.Run("allow list excludes matching receivers", func(t *testing.T) {
		findings := analyze(t, NewMockOverspecDetector(0, []string{"service.*"}), overspecifiedSource)
		if len(findings) != 0 {
			t.Errorf("got findings %v, want none with allowed receivers", findingCodes(findings))
		}
	})

	t.Run("allow list single level only", func(t *testing.T) {
		findings := analyze(t, NewMockOverspecDetector(0, []string{"other.*"}), overspecifiedSource)
		if len(findings) != 1 {
			t.Errorf("got %d findings, want 1 when patterns do not match", len(findings))
		}
	})

	t.Run("plain assert methods are not counted", func(t *testing.T) {
		findings := analyze(t, NewMockOverspecDetector(0, nil), `class TestThing:
    def test_asserts(self):
        self.assertEqual(a, b)
        self.assertTrue(a)
        self.assertIn(a, b)
        self.assertIsNone(c)
`)
		if len(findings) != 0 {
			t.Errorf("got findings %v, want none for unittest assert methods", findingCodes(findings))
		}
	})
}

func TestCountMockAssertions(t *testing.T) {
	root, source := parsePy(t, overspecifiedSource)
	tests := pyast.CollectTestFunctions(root, source)
	if len(tests) != 1 {
		t.Fatalf("collected %d tests, want 1", len(tests))
	}

	if got := CountMockAssertions(tests[0], source, nil); got != 4 {
		t.Errorf("CountMockAssertions = %d, want 4", got)
	}
	if got := CountMockAssertions(tests[0], source, []string{"service.client"}); got != 0 {
		t.Errorf("CountMockAssertions with exact allow = %d, want 0", got)
	}
}

func TestDefaultDetectors(t *testing.T) {
	detectors := DefaultDetectors()
	if len(detectors) != 4 {
		t.Fatalf("got %d detectors, want 4", len(detectors))
	}

	seen := make(map[string]bool)
	for _, d := range detectors {
		if d.Name() == "" {
			t.Error("detector with empty name")
		}
		if seen[d.Name()] {
			t.Errorf("duplicate detector name %q", d.Name())
		}
		seen[d.Name()] = true
	}
}
