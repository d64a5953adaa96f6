// Package pkg provides the libraries behind layershare.
//
// # Overview
//
// Layershare reads the build histories of several tags of a container image
// and merges them into a forest: layers the tags share appear once, and each
// tag's own layers hang off the point where its history diverges. Sizes are
// rolled up so every layer reports how much it adds along its path and within
// its unbranched segment.
//
// # Architecture
//
//	Docker engine / registry / image archive
//	         ↓
//	    [history] package (one ordered record list per tag)
//	         ↓
//	    [layer] package (chains → merged forest → size rollup)
//	         ↓
//	    [render/nodelink], [render/text], [io] packages
//	         ↓
//	    SVG/PNG/DOT diagram, text report, JSON/YAML forest
//
// [pipeline] wires the stages together for the CLI and the HTTP server;
// [cache] stores fetched histories between runs.
//
// # Quick Start
//
//	p, _ := history.New(history.KindRegistry, history.Options{})
//	runner := pipeline.NewRunner(p, nil, nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Repository: "nginx",
//	    Versions:   []string{"1.25", "1.26"},
//	    Formats:    []string{"txt"},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Print(string(result.Artifacts["txt"]))
package pkg
