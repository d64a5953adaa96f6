package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/matzehuels/layershare/pkg/layer"
)

// ReadJSON decodes a JSON forest from r.
//
// ReadJSON returns an error if the JSON is malformed, a key is duplicated,
// an edge references an unknown key, a node has two parents, or a node is
// not reachable from a root (a cycle). ReadJSON does not close r.
func ReadJSON(r io.Reader) (layer.Forest, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return Decode(doc)
}

// ReadYAML decodes a YAML forest from r.
func ReadYAML(r io.Reader) (layer.Forest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return Decode(doc)
}

// Decode rebuilds a forest from its serialized form.
func Decode(doc Document) (layer.Forest, error) {
	nodes := make(map[string]*layer.Node, len(doc.Nodes))
	order := make([]*layer.Node, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n.Key == "" {
			return nil, fmt.Errorf("node without key")
		}
		if _, dup := nodes[n.Key]; dup {
			return nil, fmt.Errorf("node %s: duplicate key", n.Key)
		}
		ln := layer.NewNode(layer.Record{
			ID:        n.ID,
			Size:      n.Size,
			Comment:   n.Comment,
			Created:   n.Created,
			CreatedBy: n.CreatedBy,
			Tags:      n.Tags,
		})
		ln.RunningTotal = n.RunningTotal
		ln.Subtotal = n.Subtotal
		nodes[n.Key] = ln
		order = append(order, ln)
	}

	hasParent := make(map[*layer.Node]bool, len(doc.Edges))
	for _, e := range doc.Edges {
		from, ok := nodes[e.From]
		if !ok {
			return nil, fmt.Errorf("edge %s->%s: unknown node %s", e.From, e.To, e.From)
		}
		to, ok := nodes[e.To]
		if !ok {
			return nil, fmt.Errorf("edge %s->%s: unknown node %s", e.From, e.To, e.To)
		}
		if hasParent[to] {
			return nil, fmt.Errorf("edge %s->%s: node %s has two parents", e.From, e.To, e.To)
		}
		hasParent[to] = true
		from.Children = append(from.Children, to)
	}

	var f layer.Forest
	for _, n := range order {
		if !hasParent[n] {
			f = append(f, n)
		}
	}

	reached := 0
	layer.Walk(f, func(*layer.Node, *layer.Node, int) bool {
		reached++
		return true
	})
	if reached != len(order) {
		return nil, fmt.Errorf("%d nodes are not reachable from a root", len(order)-reached)
	}
	return f, nil
}

// ImportFile reads a forest from path, as YAML when the extension is .yaml
// or .yml and as JSON otherwise.
func ImportFile(path string) (layer.Forest, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	read := ReadJSON
	if isYAML(path) {
		read = ReadYAML
	}
	f, err := read(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
