package layer

// Chain is the linear history of one tagged image, oldest layer first.
// Root is nil when the image reported no layers.
type Chain struct {
	Tag  string
	Root *Node
}

// BuildChain links one node per record, each the single child of the
// previous one. The terminal node is tagged with tag when the records do not
// already carry it. An empty record list yields a chain with a nil Root.
func BuildChain(tag string, records []Record) Chain {
	c := Chain{Tag: tag}
	var prev *Node
	for _, r := range records {
		n := NewNode(r)
		if prev == nil {
			c.Root = n
		} else {
			prev.Children = append(prev.Children, n)
		}
		prev = n
	}
	if prev != nil {
		prev.AddTags(tag)
	}
	return c
}

// Empty reports whether the chain contributes no layers.
func (c Chain) Empty() bool { return c.Root == nil }

// Len returns the number of layers in the chain.
func (c Chain) Len() int {
	count := 0
	for n := c.Root; n != nil; n = firstChild(n) {
		count++
	}
	return count
}

// Size returns the total bytes of the chain's layers.
// Call it before merging: once grafted, a chain's nodes are shared.
func (c Chain) Size() int64 {
	var total int64
	for n := c.Root; n != nil; n = firstChild(n) {
		total += n.Size
	}
	return total
}

func firstChild(n *Node) *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}
