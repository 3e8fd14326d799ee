package flamegraph

import (
	"github.com/methodlens/methodlens/internal/calltree"
)

type (
	// Node is a render-ready flame-graph node. PercentageOfRoot is relative
	// to the duration of this node's own root; trees from different roots
	// are scaled independently.
	Node struct {
		ID               string  `json:"id"`
		Label            string  `json:"label"`
		TotalValue       float64 `json:"total_value"`
		SelfValue        float64 `json:"self_value"`
		PercentageOfRoot float64 `json:"percentage_of_root"`
		Depth            int     `json:"depth"`
		SourceFile       string  `json:"source_file,omitempty"`
		SourceLine       uint32  `json:"source_line,omitempty"`
		Children         []*Node `json:"children,omitempty"`
	}

	// Output is what a rendering layer draws. TotalDurationMS is the sum of
	// the root durations, not a synthetic superroot.
	Output struct {
		Nodes           []*Node `json:"nodes"`
		TotalDurationMS float64 `json:"total_duration_ms"`
	}
)

// Project converts a call-tree forest into flame-graph nodes in a single
// post-order pass over the forest. An empty forest yields an empty output.
// Child order is preserved from the input trees.
func Project(forest []*calltree.Node) Output {
	out := Output{Nodes: make([]*Node, 0, len(forest))}
	for _, root := range forest {
		out.TotalDurationMS += root.DurationMS
		out.Nodes = append(out.Nodes, projectNode(root, 0, root.DurationMS))
	}
	return out
}

func projectNode(n *calltree.Node, depth int, rootTotalMS float64) *Node {
	fn := &Node{
		ID:         n.CallID,
		Label:      n.Label(),
		TotalValue: n.DurationMS,
		SelfValue:  n.SelfTimeMS,
		Depth:      depth,
		SourceFile: n.SourceFile,
		SourceLine: n.SourceLine,
	}
	if rootTotalMS > 0 {
		fn.PercentageOfRoot = n.DurationMS / rootTotalMS * 100
	}
	if len(n.Children) > 0 {
		fn.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			fn.Children = append(fn.Children, projectNode(child, depth+1, rootTotalMS))
		}
	}
	return fn
}
