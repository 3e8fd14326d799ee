package snapshot

import (
	"strings"

	"github.com/methodlens/methodlens/internal/aggregate"
	"github.com/methodlens/methodlens/internal/calltree"
)

type (
	// Snapshot is an immutable, named capture of aggregated per-method
	// statistics and call trees from one session.
	Snapshot struct {
		ID          int64                                `json:"id"`
		Name        string                               `json:"name"`
		CreatedAtMS int64                                `json:"created_at_ms"`
		VCSBranch   string                               `json:"vcs_branch,omitempty"`
		VCSRevision string                               `json:"vcs_revision,omitempty"`
		Methods     map[string]aggregate.MethodAggregate `json:"methods"`
		CallTrees   []*calltree.Node                     `json:"call_trees,omitempty"`
		Summary     Summary                              `json:"summary"`
	}

	Summary struct {
		MethodCount    int   `json:"method_count"`
		TotalCallCount int   `json:"total_call_count"`
		CaptureStartMS int64 `json:"capture_start_ms"`
		CaptureEndMS   int64 `json:"capture_end_ms"`
	}
)

// SanitizeName makes a user-supplied snapshot name safe for deterministic
// object naming. Anything outside [a-zA-Z0-9._-] becomes a dash.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "snapshot"
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
