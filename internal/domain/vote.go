package domain

// VoteValue is one card from the deck, e.g. "5", "?" or "coffee".
type VoteValue string

// Scale is the fixed deck of allowed vote values. Entries without a
// numeric interpretation ("?" and "coffee") are valid votes but are
// excluded from numeric aggregates.
type Scale struct {
	order   []VoteValue
	numeric map[VoteValue]float64
	valid   map[VoteValue]bool
}

// DefaultScale is the classic pointing deck.
func DefaultScale() *Scale {
	s := &Scale{
		order: []VoteValue{"0", "1", "2", "3", "5", "8", "13", "21", "?", "coffee"},
		numeric: map[VoteValue]float64{
			"0": 0, "1": 1, "2": 2, "3": 3, "5": 5, "8": 8, "13": 13, "21": 21,
		},
		valid: make(map[VoteValue]bool),
	}
	for _, v := range s.order {
		s.valid[v] = true
	}
	return s
}

func (s *Scale) Valid(v VoteValue) bool { return s.valid[v] }

// Numeric reports the value's numeric interpretation, if it has one.
func (s *Scale) Numeric(v VoteValue) (float64, bool) {
	n, ok := s.numeric[v]
	return n, ok
}

// Values returns the deck in display order.
func (s *Scale) Values() []VoteValue {
	out := make([]VoteValue, len(s.order))
	copy(out, s.order)
	return out
}
