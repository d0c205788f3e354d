package clone

// unionFind groups test indices transitively: any connected chain of
// similar pairs ends up in one set.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}

// groups returns the members of each set with at least two elements,
// preserving index order within and across groups.
func (u *unionFind) groups() [][]int {
	members := make(map[int][]int)
	var roots []int
	for i := range u.parent {
		root := u.find(i)
		if len(members[root]) == 0 {
			roots = append(roots, root)
		}
		members[root] = append(members[root], i)
	}

	var groups [][]int
	for _, root := range roots {
		if len(members[root]) >= 2 {
			groups = append(groups, members[root])
		}
	}
	return groups
}
