package layer

import "slices"

// MissingID is the id reported for layers whose identifier is unknown.
// Container runtimes print it for every layer not built locally.
const MissingID = "<missing>"

// Record is one entry of an image history as returned by a history provider.
// Records are ordered oldest first.
type Record struct {
	ID        string   `json:"id"`
	Size      int64    `json:"size"`
	Comment   string   `json:"comment,omitempty"`
	Created   int64    `json:"created"`
	CreatedBy string   `json:"created_by"`
	Tags      []string `json:"tags,omitempty"`
}

// Node is one build step of an image.
//
// Children are owned by the node: a node belongs to exactly one parent (or is
// a forest root). RunningTotal and Subtotal are written by [Rollup] and are
// not part of the node's identity.
type Node struct {
	ID        string
	Size      int64
	Comment   string
	Created   int64
	CreatedBy string
	Tags      []string
	Children  []*Node

	RunningTotal int64
	Subtotal     int64
}

// NewNode creates a childless node from a history record.
// Missing fields are normalized: an empty id becomes [MissingID], negative
// sizes become zero and duplicate or empty tags are dropped.
func NewNode(r Record) *Node {
	n := &Node{
		ID:        r.ID,
		Size:      r.Size,
		Comment:   r.Comment,
		Created:   r.Created,
		CreatedBy: r.CreatedBy,
		Tags:      []string{},
	}
	if n.ID == "" {
		n.ID = MissingID
	}
	if n.Size < 0 {
		n.Size = 0
	}
	n.AddTags(r.Tags...)
	return n
}

// SameLayer reports whether n and other represent the same historical layer.
//
// Equal real ids match. When either id is [MissingID] or the ids differ, the
// layers match only if CreatedBy, Size and Created are all equal. The relation
// is symmetric.
func (n *Node) SameLayer(other *Node) bool {
	if n.ID != MissingID && n.ID == other.ID {
		return true
	}
	return n.CreatedBy == other.CreatedBy &&
		n.Size == other.Size &&
		n.Created == other.Created
}

// AddTags adds tags not already present, keeping insertion order.
func (n *Node) AddTags(tags ...string) {
	for _, t := range tags {
		if t == "" || slices.Contains(n.Tags, t) {
			continue
		}
		n.Tags = append(n.Tags, t)
	}
}

// HasTags reports whether an image chain terminates at n.
func (n *Node) HasTags() bool { return len(n.Tags) > 0 }

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// IsBranchPoint reports whether n ends a segment (zero or several children).
func (n *Node) IsBranchPoint() bool { return len(n.Children) != 1 }

// Forest is the ordered list of root nodes produced by [Merge].
type Forest []*Node

// Empty reports whether the forest has nothing to draw.
func (f Forest) Empty() bool { return len(f) == 0 }
