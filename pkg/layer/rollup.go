package layer

// RatioEpsilon keeps [FillRatio] strictly inside (0,1). Gradient fills
// degenerate at exactly 0 or 1.
const RatioEpsilon = 0.001

type segmentStart struct {
	node  *Node
	total int64 // running total of the parent
}

// Rollup writes RunningTotal and Subtotal onto every node of f.
//
// RunningTotal is the sum of sizes from the forest root down to and including
// the node. Subtotal is the sum of sizes of the node's segment: the maximal
// run of single-child nodes it belongs to, ending at the first node with zero
// or several children. Every node of a segment reports the same Subtotal.
func Rollup(f Forest) {
	work := make([]segmentStart, 0, len(f))
	for i := len(f) - 1; i >= 0; i-- {
		work = append(work, segmentStart{node: f[i]})
	}

	var pending []*Node
	for len(work) > 0 {
		s := work[len(work)-1]
		work = work[:len(work)-1]

		pending = pending[:0]
		var segment int64
		total := s.total
		n := s.node
		for {
			pending = append(pending, n)
			segment += n.Size
			total += n.Size
			n.RunningTotal = total
			if n.IsBranchPoint() {
				break
			}
			n = n.Children[0]
		}
		for _, p := range pending {
			p.Subtotal = segment
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			work = append(work, segmentStart{node: n.Children[i], total: total})
		}
	}
}

// Ratio returns the node's share of its segment, Size/Subtotal.
// It is 0 when Subtotal is 0, including before [Rollup] has run.
func Ratio(n *Node) float64 {
	if n.Subtotal == 0 {
		return 0
	}
	return float64(n.Size) / float64(n.Subtotal)
}

// FillRatio returns [Ratio] clamped into the open interval (0,1).
func FillRatio(n *Node) float64 {
	r := Ratio(n)
	switch {
	case r <= 0:
		return RatioEpsilon
	case r >= 1:
		return 1 - RatioEpsilon
	}
	return r
}
