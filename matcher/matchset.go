package matcher

import (
	"sort"

	"wallsorter/types"
)

// MatchSet is an insertion-ordered set of images flagged by a detection pass
type MatchSet struct {
	order   []types.ImageRef
	members map[types.ImageRef]struct{}
}

// NewMatchSet creates an empty set
func NewMatchSet() *MatchSet {
	return &MatchSet{members: make(map[types.ImageRef]struct{})}
}

// Add inserts ref and reports whether it was not already present
func (s *MatchSet) Add(ref types.ImageRef) bool {
	if _, ok := s.members[ref]; ok {
		return false
	}
	s.members[ref] = struct{}{}
	s.order = append(s.order, ref)
	return true
}

// Contains reports whether ref is in the set
func (s *MatchSet) Contains(ref types.ImageRef) bool {
	_, ok := s.members[ref]
	return ok
}

// Len returns the number of images in the set
func (s *MatchSet) Len() int {
	return len(s.order)
}

// Refs returns the members in their current order
func (s *MatchSet) Refs() []types.ImageRef {
	out := make([]types.ImageRef, len(s.order))
	copy(out, s.order)
	return out
}

// sortByIndex orders members by their position in fm
func (s *MatchSet) sortByIndex(fm *FingerprintMap) {
	sort.Slice(s.order, func(i, j int) bool {
		return fm.index[s.order[i]] < fm.index[s.order[j]]
	})
}
