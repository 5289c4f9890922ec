package cache

import "sort"

// ChangeOp distinguishes the two change operations a diff reports.
type ChangeOp string

const (
	OpModified ChangeOp = "modified" // added or edited
	OpDeleted  ChangeOp = "deleted"
)

// Change is one differing file between two snapshots.
type Change struct {
	Path string
	Kind FileKind
	Op   ChangeOp
}

// Scope is how much of the site a change set invalidates.
type Scope int

const (
	// ScopeNone means nothing changed.
	ScopeNone Scope = iota
	// ScopeTargeted means only content or data files were edited; pages
	// unaffected by them keep their previous output.
	ScopeTargeted
	// ScopeFull means config, templates, static assets, or any deletion
	// changed, so every page must be rebuilt.
	ScopeFull
)

func (s Scope) String() string {
	switch s {
	case ScopeNone:
		return "none"
	case ScopeTargeted:
		return "targeted"
	case ScopeFull:
		return "full"
	}
	return "unknown"
}

// Diff compares two snapshots and returns the changes sorted by path.
// A file present in current but not previous counts as modified.
func Diff(previous, current Snapshot) []Change {
	var changes []Change
	for path, entry := range current {
		prev, ok := previous[path]
		if !ok || prev.Hash != entry.Hash {
			changes = append(changes, Change{Path: path, Kind: entry.Kind, Op: OpModified})
		}
	}
	for path, entry := range previous {
		if _, ok := current[path]; !ok {
			changes = append(changes, Change{Path: path, Kind: entry.Kind, Op: OpDeleted})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

// Classify decides the rebuild scope for a change set. Deletions force a
// full rebuild because stale outputs and cross-page links cannot be traced
// to a single page; so do config, template, and static changes.
func Classify(changes []Change) Scope {
	if len(changes) == 0 {
		return ScopeNone
	}
	for _, c := range changes {
		if c.Op == OpDeleted {
			return ScopeFull
		}
		switch c.Kind {
		case KindConfig, KindTemplate, KindStatic:
			return ScopeFull
		}
	}
	return ScopeTargeted
}
