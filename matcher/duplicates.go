package matcher

import "wallsorter/types"

// FindDuplicates returns every image whose fingerprint is bit-for-bit equal to
// that of another image, in one pass over fm. The pairs are returned for
// reporting only: each pairs a later image with the first owner of its
// fingerprint.
func FindDuplicates(fm *FingerprintMap) (*MatchSet, []ComparisonPair) {
	duplicates := NewMatchSet()
	var pairs []ComparisonPair

	firstOwner := make(map[string]types.ImageRef, fm.Len())
	for i, ref := range fm.refs {
		key := fm.fps[i].Key()
		owner, seen := firstOwner[key]
		if !seen {
			firstOwner[key] = ref
			continue
		}

		pairs = append(pairs, ComparisonPair{A: owner, B: ref})
		duplicates.Add(owner)
		duplicates.Add(ref)
	}

	duplicates.sortByIndex(fm)
	return duplicates, pairs
}
