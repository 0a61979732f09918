package team

// Enhance applies the monotonic enhancement policy: fill fields that are
// currently unset, and for best-of fields keep the more favorable value per
// that field's comparator. A populated field never regresses toward nil.
// The returned bool reports whether anything changed.
func Enhance(dst, src Team) (Team, bool) {
	changed := false

	if dst.BirthYear == nil && src.BirthYear != nil {
		year := *src.BirthYear
		dst.BirthYear = &year
		changed = true
	}
	if dst.Gender == "" && src.Gender != "" {
		dst.Gender = src.Gender
		changed = true
	}
	if (dst.State == "" || dst.State == StateUnknown) && src.State != "" && src.State != StateUnknown {
		dst.State = src.State
		changed = true
	}
	if dst.ClubName == "" && src.ClubName != "" {
		dst.ClubName = src.ClubName
		changed = true
	}

	if better, ok := pickLowerInt(dst.NationalRank, src.NationalRank); ok {
		dst.NationalRank = better
		changed = true
	}
	if better, ok := pickHigherFloat(dst.Rating, src.Rating); ok {
		dst.Rating = better
		changed = true
	}
	if better, ok := pickHigherFloat(dst.RatingPoints, src.RatingPoints); ok {
		dst.RatingPoints = better
		changed = true
	}
	if src.QualityScore > dst.QualityScore {
		dst.QualityScore = src.QualityScore
		changed = true
	}

	return dst, changed
}

// pickLowerInt returns the replacement value when src improves on dst under a
// lower-is-better comparator (rank numbers). ok is false when dst already
// holds the better or equal value, or src is unset.
func pickLowerInt(dst, src *int) (*int, bool) {
	if src == nil {
		return dst, false
	}
	if dst == nil || *src < *dst {
		v := *src
		return &v, true
	}
	return dst, false
}

func pickHigherFloat(dst, src *float64) (*float64, bool) {
	if src == nil {
		return dst, false
	}
	if dst == nil || *src > *dst {
		v := *src
		return &v, true
	}
	return dst, false
}
