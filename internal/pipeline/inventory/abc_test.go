package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassifyABC(t *testing.T) {
	cutoffs := []float64{0.80, 0.95}

	tests := []struct {
		name   string
		values map[string]int64
		want   map[string]string
	}{
		{
			name:   "classic pareto",
			values: map[string]int64{"P1": 70, "P2": 10, "P3": 10, "P4": 5, "P5": 5},
			want:   map[string]string{"P1": "A", "P2": "A", "P3": "B", "P4": "B", "P5": "C"},
		},
		{
			name:   "crossing item stays in the higher class",
			values: map[string]int64{"P1": 85, "P2": 15},
			want:   map[string]string{"P1": "A", "P2": "B"},
		},
		{
			name:   "dominant seller is A",
			values: map[string]int64{"TOP": 900, "X": 60, "Y": 40},
			want:   map[string]string{"TOP": "A", "X": "B", "Y": "C"},
		},
		{
			name:   "sole seller is A and zero value is last",
			values: map[string]int64{"P1": 100, "P2": 0},
			want:   map[string]string{"P1": "A", "P2": "C"},
		},
		{
			name:   "ties broken by reference",
			values: map[string]int64{"B": 40, "A": 40, "C": 20},
			want:   map[string]string{"A": "A", "B": "A", "C": "B"},
		},
		{
			name:   "no sales at all",
			values: map[string]int64{"P1": 0, "P2": 0},
			want:   map[string]string{"P1": "C", "P2": "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := make(map[string]decimal.Decimal, len(tt.values))
			for k, v := range tt.values {
				values[k] = decimal.NewFromInt(v)
			}
			assert.Equal(t, tt.want, ClassifyABC(values, cutoffs))
		})
	}
}

func TestClassifyABCPartitionsEveryProduct(t *testing.T) {
	values := map[string]decimal.Decimal{}
	for i := 0; i < 50; i++ {
		values[string(rune('a'+i%26))+string(rune('A'+i/26))] = decimal.NewFromInt(int64(i * i))
	}

	classes := ClassifyABC(values, []float64{0.5, 0.8, 0.95})

	assert.Len(t, classes, len(values))
	labels := map[string]bool{"A": true, "B": true, "C": true, "D": true}
	for ref, c := range classes {
		assert.True(t, labels[c], "unexpected class %q for %s", c, ref)
	}
}

func TestABCLabels(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, ABCLabels([]float64{0.8, 0.95}))
	assert.Equal(t, []string{"A", "B"}, ABCLabels([]float64{0.9}))
}
