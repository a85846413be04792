package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", IntervalDay, false},
		{"day", IntervalDay, false},
		{"Dia", IntervalDay, false},
		{" week ", IntervalWeek, false},
		{"semana", IntervalWeek, false},
		{"MONTH", IntervalMonth, false},
		{"mes", IntervalMonth, false},
		{"quarter", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInterval(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
