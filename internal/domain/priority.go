package domain

import "sort"

// PriorityRule is one row of matriz_prioridad.
type PriorityRule struct {
	Category       Category       `json:"categoria" db:"categoria"`
	Classification Classification `json:"clasificacion" db:"clasificacion"`
	Rank           int            `json:"prioridad" db:"prioridad"`
}

// PriorityMatrix ranks (category, classification) pairs. Rank 1 is the most
// important; pairs missing from the table get the worst known rank + 1.
type PriorityMatrix struct {
	rules []PriorityRule
	worst int
}

// DefaultPriorityRules is used when matriz_prioridad is empty.
var DefaultPriorityRules = []PriorityRule{
	{CategoryPrincipal, ClassA, 1},
	{CategoryPrincipal, ClassB, 2},
	{CategoryPrincipal, ClassC, 3},
	{CategoryOthers, ClassA, 4},
	{CategoryPrincipal, ClassD, 5},
	{CategoryOthers, ClassB, 5},
	{CategoryOthers, ClassC, 6},
	{CategoryOthers, ClassD, 7},
}

// NewPriorityMatrix orders the rules by rank, then category, then classification.
func NewPriorityMatrix(rules []PriorityRule) PriorityMatrix {
	if len(rules) == 0 {
		rules = DefaultPriorityRules
	}
	sorted := make([]PriorityRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank < sorted[j].Rank
		}
		if sorted[i].Category != sorted[j].Category {
			return sorted[i].Category < sorted[j].Category
		}
		return sorted[i].Classification < sorted[j].Classification
	})

	return PriorityMatrix{rules: sorted, worst: sorted[len(sorted)-1].Rank}
}

// Rank returns the rank of the pair; the first matching rule wins.
func (m PriorityMatrix) Rank(cat Category, cls Classification) int {
	for _, r := range m.rules {
		if r.Category == cat && r.Classification == cls {
			return r.Rank
		}
	}
	return m.worst + 1
}

// Contains reports whether the pair is present in the table.
func (m PriorityMatrix) Contains(cat Category, cls Classification) bool {
	for _, r := range m.rules {
		if r.Category == cat && r.Classification == cls {
			return true
		}
	}
	return false
}

func (m PriorityMatrix) Rules() []PriorityRule {
	out := make([]PriorityRule, len(m.rules))
	copy(out, m.rules)
	return out
}
