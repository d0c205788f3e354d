package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCoverageRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  CoverageRecord
		wantErr bool
	}{
		{
			name: "disjoint sets",
			record: CoverageRecord{
				CoveredLines: []int{1, 2, 3},
				MissingLines: []int{4, 5},
			},
		},
		{
			name:   "empty sets",
			record: CoverageRecord{},
		},
		{
			name: "overlapping sets",
			record: CoverageRecord{
				CoveredLines: []int{1, 2, 3},
				MissingLines: []int{3, 4},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCoverageSignatureJSONRoundTrip(t *testing.T) {
	sig := CoverageSignature{
		TestName: "test_login",
		FilePath: "tests/test_auth.py",
		Hash:     "abc123",
		Vector:   []float64{0.85, 0.85, 0.5, 0.25},
		Pattern:  "coverage:85.0%|lines:17/20|branches:1/2",
	}

	data, err := json.Marshal(sig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got CoverageSignature
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(got, sig) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, sig)
	}
}

func TestTestKeyOrdering(t *testing.T) {
	a := TestKey{File: "a.py", Name: "test_z"}
	b := TestKey{File: "b.py", Name: "test_a"}
	c := TestKey{File: "a.py", Name: "test_a"}

	if !a.Less(b) {
		t.Error("keys should order by file first")
	}
	if !c.Less(a) {
		t.Error("keys with equal files should order by name")
	}
	if a.String() != "a.py:test_z" {
		t.Errorf("unexpected key string %q", a.String())
	}
}
