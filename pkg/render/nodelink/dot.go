package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/layershare/pkg/layer"
)

// DefaultColor fills the size share of each box.
const DefaultColor = "steelblue"

// labelRunes limits labels of untagged layers.
const labelRunes = 40

// Options configures node-link diagram rendering.
type Options struct {
	// Color is the Graphviz color of the filled share. Empty uses DefaultColor.
	Color string

	// LeftToRight lays the forest out horizontally instead of top to bottom.
	LeftToRight bool
}

// Attrs holds the rendering attributes of one forest node.
type Attrs struct {
	ID      string
	Label   string
	Tooltip string
	Shape   string
	Fill    float64
}

// NodeAttrs returns the label, tooltip, shape and fill of n. The id is left
// empty; see [layer.Keys].
func NodeAttrs(n *layer.Node) Attrs {
	a := Attrs{
		Label: Label(n),
		Shape: "box",
		Fill:  layer.FillRatio(n),
	}
	if n.HasTags() {
		a.Shape = "box3d"
	}
	a.Tooltip = fmt.Sprintf("ratio: %s\nsize: %s\nsubtotal: %s\ntotal: %s\n%s",
		strconv.FormatFloat(layer.Ratio(n), 'f', 2, 64),
		layer.FormatSize(n.Size),
		layer.FormatSize(n.Subtotal),
		layer.FormatSize(n.RunningTotal),
		n.CreatedBy)
	return a
}

// Label returns the sorted short tags of n, or the start of its command.
func Label(n *layer.Node) string {
	if n.HasTags() {
		return strings.Join(layer.ShortTags(n), ", ")
	}
	r := []rune(strings.TrimSpace(n.CreatedBy))
	if len(r) > labelRunes {
		r = r[:labelRunes]
	}
	return string(r)
}

// ToDOT converts a rolled-up forest to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
// An empty forest yields an empty digraph.
func ToDOT(f layer.Forest, opts Options) string {
	color := opts.Color
	if color == "" {
		color = DefaultColor
	}
	rankdir := "TB"
	if opts.LeftToRight {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"filled\", gradientangle=90, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ids := layer.Keys(f)
	var edges []string
	layer.Walk(f, func(n, parent *layer.Node, _ int) bool {
		a := NodeAttrs(n)
		fill := strconv.FormatFloat(a.Fill, 'f', 3, 64)
		fmt.Fprintf(&buf, "  %q [label=%q, tooltip=%q, shape=%s, fillcolor=%q];\n",
			ids[n], a.Label, a.Tooltip, a.Shape, color+";"+fill+":white")
		if parent != nil {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", ids[parent], ids[n]))
		}
		return true
	})

	if len(edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the diagram scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
