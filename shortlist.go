package janitor

// Shortlist is the outcome of comparing the top tokens with the existing holdings.
type Shortlist struct {
	// Candidates are the distinct valid mints among the top tokens, in rank order.
	Candidates []string
	// Invalid lists the top tokens entries that are not valid mints.
	Invalid []string
	// Existing is the number of distinct mints already held.
	Existing int
	// Need are the candidates that are not held yet, in rank order.
	Need []string
}

// NewShortlist keeps the first tokensFromTop entries of top, and removes the
// ones already held.
func NewShortlist(top []string, tokensFromTop int, holdings []Holding) Shortlist {
	if tokensFromTop < 0 {
		tokensFromTop = 0
	}
	if tokensFromTop < len(top) {
		top = top[:tokensFromTop]
	}

	var s Shortlist
	seen := make(map[string]struct{}, len(top))
	for _, mint := range top {
		if _, dup := seen[mint]; dup {
			continue
		}
		seen[mint] = struct{}{}
		if err := ValidateMint(mint); err != nil {
			s.Invalid = append(s.Invalid, mint)
			continue
		}
		s.Candidates = append(s.Candidates, mint)
	}

	existing := DistinctMints(holdings)
	s.Existing = len(existing)
	for _, mint := range s.Candidates {
		if _, held := existing[mint]; held {
			continue
		}
		s.Need = append(s.Need, mint)
	}
	return s
}
