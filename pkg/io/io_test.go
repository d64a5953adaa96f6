package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/layershare/pkg/layer"
)

func rec(createdBy string, size int64) layer.Record {
	return layer.Record{ID: layer.MissingID, CreatedBy: createdBy, Size: size, Created: 1700000000}
}

func sampleForest() layer.Forest {
	f := layer.Merge([]layer.Chain{
		layer.BuildChain("app:1.0", []layer.Record{rec("A", 10), rec("B", 20), rec("C", 30)}),
		layer.BuildChain("app:2.0", []layer.Record{rec("A", 10), rec("B", 20), rec("D", 40)}),
		layer.BuildChain("other:1", []layer.Record{rec("X", 5)}),
	})
	layer.Rollup(f)
	return f
}

// shape renders a forest as "cmd(total/subtotal)[children]" for comparison.
func shape(f layer.Forest) string {
	var sb strings.Builder
	layer.Walk(f, func(n, _ *layer.Node, depth int) bool {
		sb.WriteString(strings.Repeat(" ", depth))
		sb.WriteString(n.CreatedBy)
		sb.WriteString(" ")
		sb.WriteString(layer.FormatSize(n.RunningTotal) + "/" + layer.FormatSize(n.Subtotal))
		sb.WriteString(" " + strings.Join(n.Tags, ","))
		sb.WriteString("\n")
		return true
	})
	return sb.String()
}

func TestJSONRoundTrip(t *testing.T) {
	f := sampleForest()

	var buf bytes.Buffer
	if err := WriteJSON(f, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if shape(got) != shape(f) {
		t.Errorf("round trip changed forest:\n%s\nwant\n%s", shape(got), shape(f))
	}
	if got[0].Created != 1700000000 || got[0].ID != layer.MissingID {
		t.Errorf("root fields lost: %+v", got[0])
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	f := sampleForest()

	var buf bytes.Buffer
	if err := WriteYAML(f, &buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	if !strings.Contains(buf.String(), "created_by: A") {
		t.Errorf("unexpected YAML:\n%s", buf.String())
	}
	got, err := ReadYAML(&buf)
	if err != nil {
		t.Fatalf("ReadYAML: %v", err)
	}
	if shape(got) != shape(f) {
		t.Errorf("round trip changed forest:\n%s\nwant\n%s", shape(got), shape(f))
	}
}

func TestEncode(t *testing.T) {
	doc := Encode(sampleForest())
	if len(doc.Nodes) != 5 || len(doc.Edges) != 3 {
		t.Fatalf("nodes=%d edges=%d, want 5 and 3", len(doc.Nodes), len(doc.Edges))
	}
	if doc.Nodes[0].CreatedBy != "A" || doc.Nodes[4].CreatedBy != "X" {
		t.Errorf("nodes not in pre-order: %+v", doc.Nodes)
	}

	empty := Encode(nil)
	if empty.Nodes == nil || empty.Edges == nil {
		t.Error("empty forest should encode empty arrays, not null")
	}
}

func TestFileRoundTrip(t *testing.T) {
	f := sampleForest()
	for _, name := range []string{"forest.json", "forest.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := ExportFile(f, path); err != nil {
				t.Fatalf("ExportFile: %v", err)
			}
			got, err := ImportFile(path)
			if err != nil {
				t.Fatalf("ImportFile: %v", err)
			}
			if shape(got) != shape(f) {
				t.Errorf("round trip changed forest")
			}
		})
	}
}

func TestReadJSON_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"malformed", `{"nodes": [`, "decode"},
		{"duplicate key", `{"nodes":[{"key":"a"},{"key":"a"}],"edges":[]}`, "duplicate"},
		{"missing key", `{"nodes":[{"id":"x"}],"edges":[]}`, "without key"},
		{"unknown node", `{"nodes":[{"key":"a"}],"edges":[{"from":"a","to":"b"}]}`, "unknown node b"},
		{"two parents", `{"nodes":[{"key":"a"},{"key":"b"},{"key":"c"}],"edges":[{"from":"a","to":"c"},{"from":"b","to":"c"}]}`, "two parents"},
		{"cycle", `{"nodes":[{"key":"r"},{"key":"a"},{"key":"b"}],"edges":[{"from":"a","to":"b"},{"from":"b","to":"a"}]}`, "not reachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestImportFile_Missing(t *testing.T) {
	if _, err := ImportFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestImportFile_Example(t *testing.T) {
	f, err := ImportFile("../../examples/forest.json")
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if len(f) != 1 || len(f[0].Children) != 1 || len(f[0].Children[0].Children) != 2 {
		t.Fatalf("unexpected shape: %d roots", len(f))
	}

	// Stored totals agree with a fresh rollup.
	want := map[*layer.Node][2]int64{}
	layer.Walk(f, func(n, _ *layer.Node, _ int) bool {
		want[n] = [2]int64{n.RunningTotal, n.Subtotal}
		return true
	})
	layer.Rollup(f)
	layer.Walk(f, func(n, _ *layer.Node, _ int) bool {
		if got := [2]int64{n.RunningTotal, n.Subtotal}; got != want[n] {
			t.Errorf("%s: totals %v, file says %v", n.CreatedBy, got, want[n])
		}
		return true
	})
}
