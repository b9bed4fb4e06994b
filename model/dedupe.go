package model

import "sort"

// DuplicateCandidate is one Artist node inside a duplicate group, with the
// signals used to rank merge candidates.
type DuplicateCandidate struct {
	// Ref is the store-internal identity of the node; merges address nodes
	// by Ref because duplicate nodes by definition differ only in name
	// spelling, which is not a safe handle.
	Ref          string
	Name         string
	ArtworkCount int64
	HasWikipedia bool
	FieldCount   int64
}

// DuplicateGroup is a set of Artist nodes sharing one external identifier.
type DuplicateGroup struct {
	WikidataID string
	Members    []DuplicateCandidate
}

// RankMembers orders the group's members best-first: most CREATED edges,
// then Wikipedia link presence, then attribute richness. The first member
// of the returned slice is the merge primary, the rest are duplicates.
// Ties beyond the three keys keep their input order; the ordering is a
// policy carried over from the data pipeline, not a law.
func (g DuplicateGroup) RankMembers() []DuplicateCandidate {
	ranked := make([]DuplicateCandidate, len(g.Members))
	copy(ranked, g.Members)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ArtworkCount != ranked[j].ArtworkCount {
			return ranked[i].ArtworkCount > ranked[j].ArtworkCount
		}
		if ranked[i].HasWikipedia != ranked[j].HasWikipedia {
			return ranked[i].HasWikipedia
		}
		return ranked[i].FieldCount > ranked[j].FieldCount
	})

	return ranked
}
