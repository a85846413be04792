package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ABCLabels returns the class labels for the given cutoffs: A, B, ... plus one
// trailing class for whatever lies beyond the last cutoff.
func ABCLabels(cutoffs []float64) []string {
	labels := make([]string, len(cutoffs)+1)
	for i := range labels {
		labels[i] = string(rune('A' + i))
	}
	return labels
}

// ClassifyABC assigns every product exactly one Pareto class by its sales value.
//
// Products are ranked by value (desc, ties by reference asc). A product belongs
// to the first class whose cutoff exceeds the cumulative share of the products
// ranked before it, so the product that crosses a cutoff stays in the higher
// class. Products with no sales value always land in the last class.
func ClassifyABC(values map[string]decimal.Decimal, cutoffs []float64) map[string]string {
	labels := ABCLabels(cutoffs)
	last := labels[len(labels)-1]

	type ranked struct {
		ref   string
		value decimal.Decimal
	}
	items := make([]ranked, 0, len(values))
	total := decimal.Zero
	for ref, v := range values {
		if v.IsNegative() {
			v = decimal.Zero
		}
		items = append(items, ranked{ref: ref, value: v})
		total = total.Add(v)
	}
	sort.Slice(items, func(i, j int) bool {
		if c := items[i].value.Cmp(items[j].value); c != 0 {
			return c > 0
		}
		return items[i].ref < items[j].ref
	})

	shares := make([]decimal.Decimal, len(cutoffs))
	for i, c := range cutoffs {
		shares[i] = decimal.NewFromFloat(c)
	}

	out := make(map[string]string, len(items))
	cumulative := decimal.Zero
	for _, it := range items {
		if !it.value.IsPositive() || !total.IsPositive() {
			out[it.ref] = last
			continue
		}
		before := cumulative.Div(total)
		cumulative = cumulative.Add(it.value)

		class := last
		for i, cut := range shares {
			if before.LessThan(cut) {
				class = labels[i]
				break
			}
		}
		out[it.ref] = class
	}
	return out
}
