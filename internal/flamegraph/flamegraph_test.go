package flamegraph

import (
	"math"
	"testing"

	"github.com/methodlens/methodlens/internal/calltree"
	"github.com/methodlens/methodlens/internal/event"
	"github.com/methodlens/methodlens/internal/testutil"
)

func TestProjectEmptyForest(t *testing.T) {
	want := Output{Nodes: []*Node{}}
	if diff := testutil.Diff(want, Project(nil)); diff != "" {
		t.Fatalf("unexpected output: %s", diff)
	}
}

func TestProjectSingleTree(t *testing.T) {
	forest := calltree.Build([]event.CallEvent{
		{CallID: "a", Owner: "Parent", Operation: "run", DurationMS: 100, StartedAtMS: 0, SourceFile: "parent.ts", SourceLine: 12},
		{CallID: "b", ParentCallID: "a", Owner: "Child", Operation: "step", DurationMS: 40, StartedAtMS: 10},
	})

	want := Output{
		TotalDurationMS: 100,
		Nodes: []*Node{
			{
				ID:               "a",
				Label:            "Parent.run",
				TotalValue:       100,
				SelfValue:        60,
				PercentageOfRoot: 100,
				Depth:            0,
				SourceFile:       "parent.ts",
				SourceLine:       12,
				Children: []*Node{
					{
						ID:               "b",
						Label:            "Child.step",
						TotalValue:       40,
						SelfValue:        40,
						PercentageOfRoot: 40,
						Depth:            1,
					},
				},
			},
		},
	}
	if diff := testutil.Diff(want, Project(forest)); diff != "" {
		t.Fatalf("unexpected output: %s", diff)
	}
}

func TestProjectMultiRootScalesPerRoot(t *testing.T) {
	forest := calltree.Build([]event.CallEvent{
		{CallID: "r1", Owner: "A", Operation: "a", DurationMS: 100, StartedAtMS: 0},
		{CallID: "r1c", ParentCallID: "r1", Owner: "A", Operation: "c", DurationMS: 50, StartedAtMS: 1},
		{CallID: "r2", Owner: "B", Operation: "b", DurationMS: 300, StartedAtMS: 5},
		{CallID: "r2c", ParentCallID: "r2", Owner: "B", Operation: "c", DurationMS: 150, StartedAtMS: 6},
	})

	out := Project(forest)
	if out.TotalDurationMS != 400 {
		t.Fatalf("expected total 400, got %f", out.TotalDurationMS)
	}
	if len(out.Nodes) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(out.Nodes))
	}
	for _, root := range out.Nodes {
		if root.PercentageOfRoot != 100 {
			t.Fatalf("root %s percentage must be 100, got %f", root.ID, root.PercentageOfRoot)
		}
		// Children are half their own root regardless of the other tree.
		if got := root.Children[0].PercentageOfRoot; math.Abs(got-50) > 1e-9 {
			t.Fatalf("child of %s expected 50%%, got %f", root.ID, got)
		}
	}
}

func TestProjectPercentageBounds(t *testing.T) {
	forest := calltree.Build([]event.CallEvent{
		{CallID: "a", Owner: "X", Operation: "a", DurationMS: 90, StartedAtMS: 0},
		{CallID: "b", ParentCallID: "a", Owner: "X", Operation: "b", DurationMS: 30, StartedAtMS: 1},
		{CallID: "c", ParentCallID: "b", Owner: "X", Operation: "c", DurationMS: 10, StartedAtMS: 2},
	})

	var check func(n *Node, depth int)
	check = func(n *Node, depth int) {
		if n.PercentageOfRoot < 0 || n.PercentageOfRoot > 100+1e-9 {
			t.Fatalf("node %s percentage out of bounds: %f", n.ID, n.PercentageOfRoot)
		}
		if n.Depth != depth {
			t.Fatalf("node %s expected depth %d, got %d", n.ID, depth, n.Depth)
		}
		for _, child := range n.Children {
			check(child, depth+1)
		}
	}
	for _, root := range Project(forest).Nodes {
		check(root, 0)
	}
}

func TestProjectZeroDurationRoot(t *testing.T) {
	forest := calltree.Build([]event.CallEvent{
		{CallID: "a", Owner: "X", Operation: "a", DurationMS: 0, StartedAtMS: 0},
	})
	out := Project(forest)
	if out.TotalDurationMS != 0 {
		t.Fatalf("expected total 0, got %f", out.TotalDurationMS)
	}
	if got := out.Nodes[0].PercentageOfRoot; got != 0 {
		t.Fatalf("zero-duration root percentage should be 0, got %f", got)
	}
}
