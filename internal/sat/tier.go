package sat

// classifyTier assigns a freshly learned clause to a tier based on its glue
// (LBD), per spec.md §4.6's three-tier clause database. limits holds the
// two glue cutoffs: a clause with glue <= limits[0] is TierCore, glue <=
// limits[1] is TierMid, otherwise TierLocal.
func classifyTier(glue int, limits [2]int) LearnedTier {
	switch {
	case glue <= limits[0]:
		return TierCore
	case glue <= limits[1]:
		return TierMid
	default:
		return TierLocal
	}
}
