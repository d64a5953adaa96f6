package layer

// WalkFunc is called for every node visited by [Walk]. parent is nil for
// forest roots and depth is 0 for them. Returning false skips n's subtree.
type WalkFunc func(n, parent *Node, depth int) bool

type walkItem struct {
	node, parent *Node
	depth        int
}

// Walk visits f in pre-order, roots and children in their stored order.
func Walk(f Forest, fn WalkFunc) {
	work := make([]walkItem, 0, len(f))
	for i := len(f) - 1; i >= 0; i-- {
		work = append(work, walkItem{node: f[i]})
	}
	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]
		if !fn(it.node, it.parent, it.depth) {
			continue
		}
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			work = append(work, walkItem{node: it.node.Children[i], parent: it.node, depth: it.depth + 1})
		}
	}
}

// Stats summarizes the shape and size of a forest.
type Stats struct {
	Roots        int
	Nodes        int
	Edges        int
	Leaves       int
	BranchPoints int // nodes with more than one child
	Tagged       int
	UniqueBytes  int64 // sum of sizes over all nodes
	MaxDepth     int
}

// ComputeStats walks f once and returns its [Stats].
func ComputeStats(f Forest) Stats {
	s := Stats{Roots: len(f)}
	Walk(f, func(n, parent *Node, depth int) bool {
		s.Nodes++
		if parent != nil {
			s.Edges++
		}
		if n.IsLeaf() {
			s.Leaves++
		}
		if len(n.Children) > 1 {
			s.BranchPoints++
		}
		if n.HasTags() {
			s.Tagged++
		}
		s.UniqueBytes += n.Size
		s.MaxDepth = max(s.MaxDepth, depth)
		return true
	})
	return s
}
