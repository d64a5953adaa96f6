package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/layershare/pkg/io"
	"github.com/matzehuels/layershare/pkg/layer"
	"github.com/matzehuels/layershare/pkg/observability"
	"github.com/matzehuels/layershare/pkg/render/nodelink"
	"github.com/matzehuels/layershare/pkg/render/text"
)

// Render generates output artifacts in the requested formats.
// The forest must have been rolled up.
func Render(ctx context.Context, f layer.Forest, opts Options) (artifacts map[string][]byte, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	artifacts = make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		if dot == "" && (format == FormatSVG || format == FormatPNG || format == FormatDOT) {
			dot = nodelink.ToDOT(f, nodelink.Options{Color: opts.Color, LeftToRight: opts.LeftToRight})
		}

		var data []byte
		var buf bytes.Buffer
		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot)
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			err = io.WriteJSON(f, &buf)
			data = buf.Bytes()
		case FormatYAML:
			err = io.WriteYAML(f, &buf)
			data = buf.Bytes()
		case FormatTXT:
			data = []byte(text.String(f))
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
