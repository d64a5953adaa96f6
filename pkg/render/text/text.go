// Package text writes merged layer forests as indented plain-text trees.
//
// Each layer is one line with its running total, segment subtotal, own
// size and creating command. Layers of a single-child run share the same
// indentation; below a fork every branch is indented by a "d.i" marker,
// where d is the fork depth and i the branch index:
//
//	Running total: 0.01kb, Subtotal: 0.03kb, Layer size: 0.01kb Desc: A
//	Running total: 0.03kb, Subtotal: 0.03kb, Layer size: 0.02kb Desc: B
//	   1.0   Running total: 0.06kb, Subtotal: 0.03kb, Layer size: 0.03kb Desc: C, Tags: app:1.0
//	   1.1   Running total: 0.07kb, Subtotal: 0.04kb, Layer size: 0.04kb Desc: D, Tags: app:2.0
package text

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/layershare/pkg/layer"
)

type frame struct {
	node   *layer.Node
	depth  int
	indent string
}

// Write writes the report of f to w. [layer.Rollup] must have run on f.
// An empty forest writes nothing.
func Write(w io.Writer, f layer.Forest) error {
	var buf bytes.Buffer

	work := make([]frame, 0, len(f))
	for i := len(f) - 1; i >= 0; i-- {
		work = append(work, frame{node: f[i]})
	}
	for len(work) > 0 {
		fr := work[len(work)-1]
		work = work[:len(work)-1]
		writeLine(&buf, fr.node, fr.indent)

		children := fr.node.Children
		if len(children) == 1 {
			work = append(work, frame{node: children[0], depth: fr.depth, indent: fr.indent})
			continue
		}
		depth := fr.depth + 1
		for i := len(children) - 1; i >= 0; i-- {
			indent := fr.indent + "   " + strconv.Itoa(depth) + "." + strconv.Itoa(i) + "   "
			work = append(work, frame{node: children[i], depth: depth, indent: indent})
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// String returns the report of f.
func String(f layer.Forest) string {
	var sb strings.Builder
	_ = Write(&sb, f)
	return sb.String()
}

func writeLine(buf *bytes.Buffer, n *layer.Node, indent string) {
	fmt.Fprintf(buf, "%sRunning total: %s, Subtotal: %s, Layer size: %s Desc: %s",
		indent,
		layer.FormatSize(n.RunningTotal),
		layer.FormatSize(n.Subtotal),
		layer.FormatSize(n.Size),
		n.CreatedBy)
	if n.HasTags() {
		buf.WriteString(", Tags: ")
		buf.WriteString(strings.Join(n.Tags, ","))
	}
	buf.WriteByte('\n')
}
