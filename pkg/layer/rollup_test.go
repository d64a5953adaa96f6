package layer

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestRollup_SharedPrefixExample(t *testing.T) {
	c1 := BuildChain("app:1", []Record{rec("A", 10), rec("B", 20), rec("C", 30)})
	c2 := BuildChain("app:2", []Record{rec("A", 10), rec("B", 20), rec("D", 40)})
	f := Merge([]Chain{c1, c2})
	Rollup(f)

	a := f[0]
	b := a.Children[0]
	c, d := b.Children[0], b.Children[1]

	tests := []struct {
		name          string
		n             *Node
		total, subtot int64
	}{
		{"A", a, 10, 30},
		{"B", b, 30, 30},
		{"C", c, 60, 30},
		{"D", d, 70, 40},
	}
	for _, tt := range tests {
		if tt.n.RunningTotal != tt.total {
			t.Errorf("%s.RunningTotal = %d, want %d", tt.name, tt.n.RunningTotal, tt.total)
		}
		if tt.n.Subtotal != tt.subtot {
			t.Errorf("%s.Subtotal = %d, want %d", tt.name, tt.n.Subtotal, tt.subtot)
		}
	}
}

func TestRollup_SingleNode(t *testing.T) {
	f := Merge([]Chain{BuildChain("app:1", []Record{rec("A", 5)})})
	Rollup(f)

	n := f[0]
	if n.RunningTotal != 5 || n.Subtotal != 5 {
		t.Errorf("RunningTotal, Subtotal = %d, %d; want 5, 5", n.RunningTotal, n.Subtotal)
	}
	if Ratio(n) != 1 {
		t.Errorf("Ratio() = %v, want 1", Ratio(n))
	}
	if FillRatio(n) != 1-RatioEpsilon {
		t.Errorf("FillRatio() = %v, want %v", FillRatio(n), 1-RatioEpsilon)
	}
}

func TestRollup_MultipleRoots(t *testing.T) {
	f := Merge([]Chain{chain("a:1", "A", "B"), chain("x:1", "X", "Y", "Z")})
	Rollup(f)

	y := f[1].Children[0]
	if y.RunningTotal != 30 {
		t.Errorf("Y.RunningTotal = %d, want 30 (roots must not share totals)", y.RunningTotal)
	}
	if y.Subtotal != 60 {
		t.Errorf("Y.Subtotal = %d, want 60", y.Subtotal)
	}
}

func TestRollup_Idempotent(t *testing.T) {
	f := Merge([]Chain{chain("a:1", "A", "B", "C"), chain("a:2", "A", "X")})
	Rollup(f)
	first := snapshot(f)
	Rollup(f)
	if second := snapshot(f); first != second {
		t.Errorf("second Rollup changed results:\n%s\n%s", first, second)
	}
}

func snapshot(f Forest) string {
	var s string
	Walk(f, func(n, _ *Node, _ int) bool {
		s += fmt.Sprintf("%s:%d/%d ", n.CreatedBy, n.RunningTotal, n.Subtotal)
		return true
	})
	return s
}

func TestRatio_ZeroSubtotal(t *testing.T) {
	n := NewNode(rec("A", 0))
	if Ratio(n) != 0 {
		t.Errorf("Ratio() before rollup = %v, want 0", Ratio(n))
	}
	Rollup(Forest{n})
	if Ratio(n) != 0 {
		t.Errorf("Ratio() of zero-size segment = %v, want 0", Ratio(n))
	}
	if FillRatio(n) != RatioEpsilon {
		t.Errorf("FillRatio() = %v, want %v", FillRatio(n), RatioEpsilon)
	}
}

func TestFillRatio_Interior(t *testing.T) {
	n := &Node{Size: 25, Subtotal: 100}
	if got := FillRatio(n); got != 0.25 {
		t.Errorf("FillRatio() = %v, want 0.25", got)
	}
}

// TestRollup_Properties checks the rollup invariants on randomly merged
// histories: running totals equal path sums, and all nodes of a segment share
// the segment's total.
func TestRollup_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	commands := []string{"A", "B", "C", "D", "E"}

	for round := 0; round < 50; round++ {
		var chains []Chain
		for v := 0; v < 1+rng.Intn(5); v++ {
			var records []Record
			for i := 0; i < 1+rng.Intn(8); i++ {
				cmd := commands[rng.Intn(len(commands))]
				records = append(records, Record{CreatedBy: fmt.Sprintf("%s%d", cmd, i), Size: int64(rng.Intn(100)), Created: int64(i)})
			}
			chains = append(chains, BuildChain(fmt.Sprintf("img:%d", v), records))
		}
		f := Merge(chains)
		Rollup(f)
		checkRollup(t, f)
	}
}

func checkRollup(t *testing.T, f Forest) {
	t.Helper()
	pathSum := make(map[*Node]int64)
	Walk(f, func(n, parent *Node, _ int) bool {
		pathSum[n] = pathSum[parent] + n.Size
		if n.RunningTotal != pathSum[n] {
			t.Errorf("%s.RunningTotal = %d, want %d", n.CreatedBy, n.RunningTotal, pathSum[n])
		}
		if n.RunningTotal < n.Size || n.Subtotal < n.Size {
			t.Errorf("%s totals below own size", n.CreatedBy)
		}
		return true
	})

	// Every segment starts at a root or at a child of a branch point.
	var starts []*Node
	Walk(f, func(n, parent *Node, _ int) bool {
		if parent == nil || parent.IsBranchPoint() {
			starts = append(starts, n)
		}
		return true
	})
	for _, s := range starts {
		var sum int64
		var run []*Node
		n := s
		for {
			run = append(run, n)
			sum += n.Size
			if n.IsBranchPoint() {
				break
			}
			n = n.Children[0]
		}
		for _, m := range run {
			if m.Subtotal != sum {
				t.Errorf("%s.Subtotal = %d, want %d", m.CreatedBy, m.Subtotal, sum)
			}
		}
	}
}
