package pipeline

import (
	"testing"

	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/history"
	"github.com/matzehuels/layershare/pkg/layer"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"dot", false},
		{"json", false},
		{"yaml", false},
		{"txt", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	got := ParseFormats(" svg, TXT,,svg ,json")
	want := []string{"svg", "txt", "json"}
	if len(got) != len(want) {
		t.Fatalf("ParseFormats() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParseFormats() = %v, want %v", got, want)
		}
	}
	if ParseFormats("") != nil {
		t.Error("empty input should yield no formats")
	}
}

func TestValidateStrategy(t *testing.T) {
	for _, s := range []string{"", "complete", "greedy"} {
		if err := ValidateStrategy(s); err != nil {
			t.Errorf("ValidateStrategy(%q) = %v", s, err)
		}
	}
	if err := ValidateStrategy("optimal"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ValidateStrategy(optimal) = %v", err)
	}
}

func TestOptionsValidateForFetch(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"valid", Options{Repository: "nginx", Versions: []string{"1.25"}}, ""},
		{"registry host", Options{Repository: "localhost:5000/app", Versions: []string{"v1"}}, ""},
		{"missing repository", Options{Versions: []string{"1"}}, errors.ErrCodeInvalidRepository},
		{"tag in repository", Options{Repository: "nginx:1.25", Versions: []string{"1"}}, errors.ErrCodeInvalidRepository},
		{"no versions", Options{Repository: "nginx"}, errors.ErrCodeInvalidVersion},
		{"bad version", Options{Repository: "nginx", Versions: []string{"-x"}}, errors.ErrCodeInvalidVersion},
		{"archive path", Options{Repository: "/tmp/Images.tar", Versions: []string{"1"}, Provider: history.KindArchive}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForFetch()
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{
		Repository: "nginx",
		Versions:   []string{"1.25"},
	}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalFormats := opts.Formats
	originalStrategy := opts.Strategy

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if len(opts.Formats) != len(originalFormats) {
		t.Error("Formats changed on second call")
	}
	if opts.Strategy != originalStrategy {
		t.Error("Strategy changed on second call")
	}
	if opts.Provider != DefaultProvider {
		t.Errorf("Provider should default to %s, got %s", DefaultProvider, opts.Provider)
	}
	if opts.MergeStrategy() != layer.StrategyComplete {
		t.Errorf("MergeStrategy() = %s, want complete", opts.MergeStrategy())
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}

	// Defaults must not alias the package-level slice.
	opts.Formats[0] = "txt"
	if DefaultFormats[0] != FormatSVG {
		t.Error("SetRenderDefaults aliased DefaultFormats")
	}
}

func TestOptionsRefs(t *testing.T) {
	opts := Options{Repository: "nginx", Versions: []string{"1.26", "1.25"}}
	refs := opts.Refs()
	if len(refs) != 2 || refs[0] != "nginx:1.26" || refs[1] != "nginx:1.25" {
		t.Errorf("Refs() = %v, want caller order", refs)
	}
	if s := opts.String(); s != "nginx [1.26, 1.25]" {
		t.Errorf("String() = %q", s)
	}
}
