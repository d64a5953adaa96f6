// Package layer models container image build history as a forest of layers.
//
// # Overview
//
// Several tagged variants of an image usually share most of their history:
// the same base image, the same package installation steps, diverging only
// in the last few layers. This package reconstructs each variant's history
// as a linear [Chain], folds the chains into a shared [Forest], and annotates
// every node with size rollups so a renderer can show where storage is shared
// and where it is duplicated.
//
// # Pipeline
//
//	records (oldest first, per tag)
//	         ↓
//	    [BuildChain]   one linear chain per tag
//	         ↓
//	    [Merge]        chains folded into a forest by layer identity
//	         ↓
//	    [Rollup]       RunningTotal and Subtotal written onto every node
//
// # Identity
//
// Two nodes are the same historical layer when [Node.SameLayer] reports true:
// both carry the same real id, or the creation command, size and creation
// time all match. A [MissingID] or differing ids fall back to that field
// comparison.
//
// # Merge strategies
//
// [StrategyComplete] (the default) merges or grafts every incoming branch at
// a fork. [StrategyGreedy] keeps the historical single-match behavior, which
// stops at the first matching child pair and can drop other incoming branches
// at the same fork.
//
// # Rollups
//
// A segment is a maximal run of single-child nodes ending at a branch point
// (a node with zero or several children). [Rollup] writes the cumulative size
// from the forest root as RunningTotal and the size of the node's segment as
// Subtotal. [Ratio] and [FillRatio] derive the node's share of its segment.
//
// # Concurrency
//
// Nothing in this package is safe for concurrent use. Merge and Rollup mutate
// nodes in place and use explicit work lists instead of recursion, so very
// long histories do not grow the goroutine stack.
package layer
