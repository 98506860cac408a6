package domain

import "fmt"

// Score is a two-part hard/soft score. Both parts are penalties and therefore
// non-positive except where soft rewards pull Soft back toward zero. Hard == 0
// is required for feasibility.
type Score struct {
	Hard int `json:"hard"`
	Soft int `json:"soft"`
}

// Feasible reports whether no hard constraint is violated.
func (s Score) Feasible() bool {
	return s.Hard == 0
}

// Compare orders scores hard-first, then soft. Returns a negative value when
// s is worse than other, zero when equal, positive when better.
func (s Score) Compare(other Score) int {
	if s.Hard != other.Hard {
		if s.Hard < other.Hard {
			return -1
		}
		return 1
	}
	if s.Soft != other.Soft {
		if s.Soft < other.Soft {
			return -1
		}
		return 1
	}
	return 0
}

// BetterThan reports whether s strictly improves on other.
func (s Score) BetterThan(other Score) bool {
	return s.Compare(other) > 0
}

// Add returns the component-wise sum.
func (s Score) Add(other Score) Score {
	return Score{Hard: s.Hard + other.Hard, Soft: s.Soft + other.Soft}
}

// Sub returns the component-wise difference.
func (s Score) Sub(other Score) Score {
	return Score{Hard: s.Hard - other.Hard, Soft: s.Soft - other.Soft}
}

func (s Score) String() string {
	return fmt.Sprintf("%dhard/%dsoft", s.Hard, s.Soft)
}
