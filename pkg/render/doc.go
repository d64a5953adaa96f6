// Package render turns merged layer forests into diagrams and reports.
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the forest as a Graphviz diagram, one
// box per layer, with in-process SVG and PNG output:
//
//	dot := nodelink.ToDOT(forest, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Text Reports
//
// The [text] subpackage writes an indented plain-text tree with running
// totals and subtotals, suitable for terminals and logs:
//
//	err := text.Write(os.Stdout, forest)
//
// Both renderers expect [layer.Rollup] to have run on the forest.
//
// [nodelink]: github.com/matzehuels/layershare/pkg/render/nodelink
// [text]: github.com/matzehuels/layershare/pkg/render/text
package render
