package domain

// NormalizeRating reconciles the rating scales seen across review sources
// into the canonical 0-5 range:
//
//   - (0, 1]   fraction of maximum, scaled by 5 (0.9 -> 4.5)
//   - (1, 5]   already a star rating, returned as-is
//   - [10, 100] percentage, divided by 20 (90 -> 4.5)
//
// Values in (5, 10) are ambiguous (could be a 10-point scale or a bad
// percentage) and are rejected rather than guessed, as are negatives and
// values above 100. Zero is a valid minimum rating.
func NormalizeRating(raw float64) *float64 {
	var rating float64
	switch {
	case raw < 0 || raw > 100:
		return nil
	case raw <= 5:
		if raw > 0 && raw <= 1 {
			rating = raw * 5
		} else {
			rating = raw
		}
	case raw >= 10:
		rating = raw / 20
	default:
		return nil
	}
	return &rating
}
