package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/matzehuels/layershare/pkg/layer"
)

// Document is the serialized form of a forest.
type Document struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Node is one serialized layer.
type Node struct {
	Key          string   `json:"key" yaml:"key"`
	ID           string   `json:"id" yaml:"id"`
	Size         int64    `json:"size" yaml:"size"`
	Comment      string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	Created      int64    `json:"created,omitempty" yaml:"created,omitempty"`
	CreatedBy    string   `json:"created_by" yaml:"created_by"`
	Tags         []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	RunningTotal int64    `json:"running_total" yaml:"running_total"`
	Subtotal     int64    `json:"subtotal" yaml:"subtotal"`
}

// Edge links a parent to a child by key.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Encode converts a forest to its serialized form.
func Encode(f layer.Forest) Document {
	keys := layer.Keys(f)
	doc := Document{Nodes: []Node{}, Edges: []Edge{}}
	layer.Walk(f, func(n, parent *layer.Node, _ int) bool {
		doc.Nodes = append(doc.Nodes, Node{
			Key:          keys[n],
			ID:           n.ID,
			Size:         n.Size,
			Comment:      n.Comment,
			Created:      n.Created,
			CreatedBy:    n.CreatedBy,
			Tags:         n.Tags,
			RunningTotal: n.RunningTotal,
			Subtotal:     n.Subtotal,
		})
		if parent != nil {
			doc.Edges = append(doc.Edges, Edge{From: keys[parent], To: keys[n]})
		}
		return true
	})
	return doc
}

// WriteJSON encodes a forest as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(f layer.Forest, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Encode(f)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes a forest as YAML and writes it to w.
func WriteYAML(f layer.Forest, w io.Writer) error {
	data, err := yaml.Marshal(Encode(f))
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportFile writes a forest to path, as YAML when the extension is .yaml
// or .yml and as JSON otherwise.
func ExportFile(f layer.Forest, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	if isYAML(path) {
		return WriteYAML(f, out)
	}
	return WriteJSON(f, out)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
