// Package pipeline provides the compare pipeline for layershare.
//
// This package implements the complete fetch → merge → render pipeline used
// by the CLI and the HTTP server. By centralizing this logic, both entry
// points produce identical forests and artifacts for the same input.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Read the history of every image reference, in the order given,
//     through a [history.Provider] (optionally cached)
//  2. Merge: Build one chain per image, merge the chains into a forest and
//     compute running totals and subtotals
//  3. Render: Generate output in the requested formats (SVG, PNG, DOT, JSON,
//     YAML, text)
//
// The first reference that cannot be resolved aborts the run before any
// merge work; no partial forest is produced.
//
// # Usage
//
//	runner := pipeline.NewRunner(provider, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Repository: "nginx",
//	    Versions:   []string{"1.25", "1.26"},
//	    Formats:    []string{"svg", "txt"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/history"
	"github.com/matzehuels/layershare/pkg/layer"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultProvider reads histories from the local Docker engine.
const DefaultProvider = history.KindDaemon

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTXT  = "txt"
)

// AllFormats lists the supported output formats in display order.
var AllFormats = []string{FormatSVG, FormatPNG, FormatDOT, FormatJSON, FormatYAML, FormatTXT}

// DefaultFormats are rendered when no format is requested.
var DefaultFormats = []string{FormatSVG}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
	FormatYAML: true,
	FormatTXT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a compare run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	Repository string   `json:"repository"`
	Versions   []string `json:"versions"`
	Refresh    bool     `json:"refresh,omitempty"` // bypass the history cache

	// Merge options
	Strategy string `json:"strategy,omitempty"` // "complete" (default) or "greedy"

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Color       string   `json:"color,omitempty"`
	LeftToRight bool     `json:"left_to_right,omitempty"`

	// Runtime options (not serialized)
	Provider string      `json:"-"` // provider kind, set by the Runner
	Logger   *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Refs are the image references in fetch order.
	Refs []string

	// Forest is the merged, rolled-up forest.
	Forest layer.Forest

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Images      int   // images fetched
	EmptyImages int   // images without history
	Records     int   // history records over all images
	StoredBytes int64 // sum of image sizes, counting shared layers once per image
	Forest      layer.Stats

	FetchTime  time.Duration
	MergeTime  time.Duration
	RenderTime time.Duration
}

// SharedBytes returns the bytes saved by layer sharing.
func (s Stats) SharedBytes() int64 {
	return s.StoredBytes - s.Forest.UniqueBytes
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(AllFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks and
// dropping duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// ValidateStrategy checks that a merge strategy name is valid.
func ValidateStrategy(s string) error {
	if _, ok := layer.ParseStrategy(s); !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid strategy: %q (must be one of: complete, greedy)", s)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	if o.Strategy == "" {
		o.Strategy = layer.StrategyComplete.String()
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks the repository and versions.
// For the archive provider the repository is a file path.
func (o *Options) ValidateForFetch() error {
	if o.Provider == "" {
		o.Provider = DefaultProvider
	}
	if o.Provider == history.KindArchive {
		if err := errors.ValidateArchivePath(o.Repository); err != nil {
			return err
		}
	} else if err := errors.ValidateRepository(o.Repository); err != nil {
		return err
	}
	if err := errors.ValidateVersions(o.Versions); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Refs returns the image references "repository:version" in version order.
func (o *Options) Refs() []string {
	refs := make([]string, len(o.Versions))
	for i, v := range o.Versions {
		refs[i] = history.Reference(o.Repository, v)
	}
	return refs
}

// MergeStrategy returns the parsed merge strategy.
func (o *Options) MergeStrategy() layer.Strategy {
	s, _ := layer.ParseStrategy(o.Strategy)
	return s
}

// String summarizes the options for logs.
func (o *Options) String() string {
	return fmt.Sprintf("%s [%s]", o.Repository, strings.Join(o.Versions, ", "))
}
