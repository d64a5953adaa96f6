// Package nodelink renders merged layer forests as Graphviz diagrams.
//
// # Overview
//
// Every layer becomes a box and every parent→child link an arrow, so images
// that share a base appear as one trunk that forks where their builds
// diverge. Tagged layers (the top of an image) are drawn as 3D boxes
// labelled with their version; interior layers show the start of the
// command that created them.
//
// Each box is filled with a vertical gradient whose colored share is the
// layer's fraction of its segment subtotal ([layer.FillRatio]), so large
// layers stand out within a run of single-child layers.
//
// # Usage
//
//	layer.Rollup(forest)
//	dot := nodelink.ToDOT(forest, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Node IDs
//
// Node ids hash the command, size and creation time of a layer; the
// content id reported by the provider is ignored because it is often
// "<missing>". Layers that hash alike get "-2", "-3", ... suffixes in walk
// order, so distinct layers never share a box.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering; no Graphviz installation is required.
package nodelink
