package layer

// Strategy selects how children are matched once two nodes are the same layer.
type Strategy int

const (
	// StrategyComplete matches every incoming child independently: each one
	// is merged into the first existing child it matches, or grafted as a new
	// branch when none does. No incoming branch is ever dropped.
	StrategyComplete Strategy = iota

	// StrategyGreedy stops at the first matching (existing, incoming) child
	// pair and merges only that pair. Incoming children are grafted only when
	// no pair matches at all, so other incoming branches at a fork where one
	// pair matched are dropped.
	StrategyGreedy
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyGreedy:
		return "greedy"
	default:
		return "complete"
	}
}

// ParseStrategy converts a strategy name into a Strategy.
// Unknown names return false.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "", "complete":
		return StrategyComplete, true
	case "greedy":
		return StrategyGreedy, true
	}
	return StrategyComplete, false
}

// MergeOption configures [Merge] and [Graft].
type MergeOption func(*merger)

// WithStrategy selects the child matching strategy.
func WithStrategy(s Strategy) MergeOption {
	return func(m *merger) { m.strategy = s }
}

type merger struct {
	strategy Strategy
}

func newMerger(opts []MergeOption) merger {
	var m merger
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Merge folds chains into a forest, in the order given.
//
// The first non-empty chain seeds the forest. Every further chain is grafted
// onto the first existing root that is the same layer as its root, or
// appended as a new root when no root matches. Empty chains are skipped.
func Merge(chains []Chain, opts ...MergeOption) Forest {
	m := newMerger(opts)
	var f Forest
	for _, c := range chains {
		if c.Empty() {
			continue
		}
		f = m.graft(f, c.Root)
	}
	return f
}

// Graft merges the tree rooted at root into f and returns the updated forest.
// Unlike chains, root may already branch, for example when combining two
// previously merged forests.
func Graft(f Forest, root *Node, opts ...MergeOption) Forest {
	if root == nil {
		return f
	}
	m := newMerger(opts)
	return m.graft(f, root)
}

func (m merger) graft(f Forest, root *Node) Forest {
	for _, r := range f {
		if m.crawl(r, root) {
			return f
		}
	}
	return append(f, root)
}

// crawl merges b into a when they are the same layer and reports whether
// they were. Nodes of b that match are absorbed by their counterpart in a;
// the rest are moved under a, so b is left without children.
func (m merger) crawl(a, b *Node) bool {
	if !a.SameLayer(b) {
		return false
	}
	if m.strategy == StrategyGreedy {
		crawlGreedy(a, b)
	} else {
		crawlComplete(a, b)
	}
	return true
}

func crawlGreedy(a, b *Node) {
	for {
		a.AddTags(b.Tags...)
		ca, cb := firstMatchingPair(a.Children, b.Children)
		if ca == nil {
			a.Children = append(a.Children, b.Children...)
			b.Children = nil
			return
		}
		a, b = ca, cb
	}
}

func firstMatchingPair(existing, incoming []*Node) (*Node, *Node) {
	for _, ca := range existing {
		for _, cb := range incoming {
			if ca.SameLayer(cb) {
				return ca, cb
			}
		}
	}
	return nil, nil
}

type nodePair struct{ a, b *Node }

func crawlComplete(a, b *Node) {
	work := []nodePair{{a, b}}
	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]

		p.a.AddTags(p.b.Tags...)
		existing := p.a.Children[:len(p.a.Children):len(p.a.Children)]
		// Push matches in reverse so they are processed in child order.
		var matched []nodePair
		for _, cb := range p.b.Children {
			if ca := firstMatch(existing, cb); ca != nil {
				matched = append(matched, nodePair{ca, cb})
			} else {
				p.a.Children = append(p.a.Children, cb)
			}
		}
		p.b.Children = nil
		for i := len(matched) - 1; i >= 0; i-- {
			work = append(work, matched[i])
		}
	}
}

func firstMatch(existing []*Node, n *Node) *Node {
	for _, c := range existing {
		if c.SameLayer(n) {
			return c
		}
	}
	return nil
}
