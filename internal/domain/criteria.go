package domain

// Requirement is a single buyer-stated constraint, e.g. name="storage" value="256GB".
// Importance weights the requirement's contribution to the spec-match score.
type Requirement struct {
	Name       string  `json:"name" binding:"required"`
	Value      string  `json:"value" binding:"required"`
	Importance float64 `json:"importance,omitempty"`
}

// EffectiveImportance returns the importance clamped to (0, 1].
// Zero (unset) and out-of-range values fall back to full importance.
func (r Requirement) EffectiveImportance() float64 {
	if r.Importance <= 0 || r.Importance > 1 {
		return 1.0
	}
	return r.Importance
}

// Criteria describes what the buyer is looking for. It is produced by an
// external request parser and treated as immutable by the evaluation core.
type Criteria struct {
	Query        string        `json:"query" binding:"required"`
	Language     string        `json:"language,omitempty"`
	Budget       *float64      `json:"budget,omitempty"`
	Currency     string        `json:"currency,omitempty"`
	Requirements []Requirement `json:"requirements,omitempty"`
}

// HasBudget reports whether the buyer stated a usable budget.
func (c *Criteria) HasBudget() bool {
	return c.Budget != nil && *c.Budget > 0
}
