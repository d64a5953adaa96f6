// Package io provides JSON and YAML import and export for merged layer
// forests.
//
// # Overview
//
// A saved forest can be re-rendered later without contacting a registry or
// daemon, compared across runs, or consumed by other tools. The format is
// flat, so arbitrarily deep histories never nest:
//
//	{
//	  "nodes": [
//	    {"key": "9f2c...", "id": "<missing>", "size": 10, "created": 1700000000,
//	     "created_by": "ADD rootfs.tar /", "running_total": 10, "subtotal": 30},
//	    {"key": "41be...", "id": "sha256:...", "size": 20, "created_by": "RUN make",
//	     "tags": ["app:1.0"], "running_total": 30, "subtotal": 30}
//	  ],
//	  "edges": [
//	    {"from": "9f2c...", "to": "41be..."}
//	  ]
//	}
//
// Node keys are [layer.Keys]; they match the node ids of rendered diagrams.
// Nodes are listed in pre-order and edges in child order, so roots and
// children keep their order on import.
//
// # Computed Fields
//
// running_total and subtotal are exported as computed by [layer.Rollup] and
// restored as-is by [ReadJSON]; call Rollup again after modifying an
// imported forest.
//
// # Import
//
// [ReadJSON] and [ImportFile] validate the structure: keys must be unique,
// edges must reference known nodes, and every node must have at most one
// parent and be reachable from a root.
package io
