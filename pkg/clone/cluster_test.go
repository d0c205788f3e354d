package clone

import (
	"reflect"
	"testing"
)

func TestUnionFind(t *testing.T) {
	uf := newUnionFind(6)

	// Chain 0-1-2 transitively, pair 4-5, leave 3 alone.
	uf.union(0, 1)
	uf.union(1, 2)
	uf.union(4, 5)

	groups := uf.groups()
	want := [][]int{{0, 1, 2}, {4, 5}}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("groups = %v, want %v", groups, want)
	}
}

func TestUnionFindSingletonsExcluded(t *testing.T) {
	uf := newUnionFind(3)

	if groups := uf.groups(); groups != nil {
		t.Errorf("groups = %v, want nil when nothing is joined", groups)
	}
}
