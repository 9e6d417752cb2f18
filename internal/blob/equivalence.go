package blob

// equivalence is a weighted disjoint-set forest over provisional labels,
// sized up front for every label a Label call may allocate. root[l] is the
// parent of label l and a root maps to itself; size[l] counts the labels in
// the tree rooted at l. Index 0 is the background and never takes part in a
// union.
//
// One equivalence value belongs to exactly one Label call.
type equivalence struct {
	root   []int
	size   []int
	unions int
}

func newEquivalence(n int) *equivalence {
	e := &equivalence{
		root: make([]int, n),
		size: make([]int, n),
	}
	for i := range e.root {
		e.root[i] = i
		e.size[i] = 1
	}
	return e
}

// Root returns the representative of l's class, or -1 when l is outside the
// forest. Paths are halved on the way up; the walk is iterative so long
// chains do not grow the stack.
func (e *equivalence) Root(l int) int {
	if l < 0 || l >= len(e.root) {
		return -1
	}
	for e.root[l] != l {
		e.root[l] = e.root[e.root[l]]
		l = e.root[l]
	}
	return l
}

// Union merges the classes of a and b, hanging the smaller tree under the
// larger one. Reports whether two distinct classes were merged.
func (e *equivalence) Union(a, b int) bool {
	ra, rb := e.Root(a), e.Root(b)
	if ra < 0 || rb < 0 || ra == rb {
		return false
	}
	if e.size[ra] < e.size[rb] {
		ra, rb = rb, ra
	}
	e.root[rb] = ra
	e.size[ra] += e.size[rb]
	e.unions++
	return true
}

// Find reports whether a and b are in the same class.
func (e *equivalence) Find(a, b int) bool {
	ra := e.Root(a)
	return ra >= 0 && ra == e.Root(b)
}
