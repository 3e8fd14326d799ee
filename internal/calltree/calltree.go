package calltree

import (
	"sort"

	"github.com/methodlens/methodlens/internal/event"
)

// Node is one reconstructed call in a call tree. Nodes are value snapshots
// owned by the forest returned from a single Build call and are never
// mutated afterwards.
type Node struct {
	CallID       string  `json:"call_id"`
	ParentCallID string  `json:"parent_call_id,omitempty"`
	Owner        string  `json:"owner"`
	Operation    string  `json:"operation"`
	DurationMS   float64 `json:"duration_ms"`
	StartedAtMS  float64 `json:"started_at_ms"`
	StackDepth   int     `json:"stack_depth"`
	SourceFile   string  `json:"source_file,omitempty"`
	SourceLine   uint32  `json:"source_line,omitempty"`
	SelfTimeMS   float64 `json:"self_time_ms"`
	Children     []*Node `json:"children,omitempty"`
}

// Label returns the display name for the node, owner.operation.
func (n *Node) Label() string {
	return n.Owner + "." + n.Operation
}

// Build assembles a forest of call trees from a set of call events with
// unique ids. Events whose parent is absent or does not resolve become
// roots. Parent links that would close a cycle are severed and the earliest
// member of the cycle becomes a root; a malformed topology is never an
// error. Roots and children are ordered by start time, ascending.
func Build(events []event.CallEvent) []*Node {
	if len(events) == 0 {
		return nil
	}

	nodes := make(map[string]*Node, len(events))
	order := make([]*Node, 0, len(events))
	for _, e := range events {
		n := &Node{
			CallID:       e.CallID,
			ParentCallID: e.ParentCallID,
			Owner:        e.Owner,
			Operation:    e.Operation,
			DurationMS:   e.DurationMS,
			StartedAtMS:  e.StartedAtMS,
			StackDepth:   e.StackDepth,
			SourceFile:   e.SourceFile,
			SourceLine:   e.SourceLine,
		}
		nodes[n.CallID] = n
		order = append(order, n)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].StartedAtMS != order[j].StartedAtMS {
			return order[i].StartedAtMS < order[j].StartedAtMS
		}
		return order[i].CallID < order[j].CallID
	})

	// attached[id] is the effective parent after cycle severing. Children
	// are appended in start-time order since attachment follows `order`.
	attached := make(map[string]string, len(order))
	var roots []*Node
	for _, n := range order {
		parent, ok := nodes[n.ParentCallID]
		if n.ParentCallID == "" || !ok || parent == n || closesCycle(attached, n.CallID, n.ParentCallID) {
			roots = append(roots, n)
			continue
		}
		attached[n.CallID] = n.ParentCallID
		parent.Children = append(parent.Children, n)
	}

	for _, root := range roots {
		computeSelfTime(root)
	}
	return roots
}

// closesCycle reports whether attaching id under parentID would make the
// effective parent chain loop back to id.
func closesCycle(attached map[string]string, id, parentID string) bool {
	for cur := parentID; cur != ""; cur = attached[cur] {
		if cur == id {
			return true
		}
	}
	return false
}

// computeSelfTime computes self time for the whole subtree in a single
// post-order pass. Overlapping child spans can push the raw difference
// below zero; the result is clamped, not treated as an error.
func computeSelfTime(n *Node) {
	var childrenMS float64
	for _, child := range n.Children {
		computeSelfTime(child)
		childrenMS += child.DurationMS
	}
	self := n.DurationMS - childrenMS
	if self < 0 {
		self = 0
	}
	n.SelfTimeMS = self
}

// Count returns the number of nodes across all roots of a forest.
func Count(forest []*Node) int {
	c := 0
	for _, root := range forest {
		c += 1 + Count(root.Children)
	}
	return c
}
