package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		threshold int
		critical  bool
		depleted  bool
	}{
		{"below threshold", 3, 5, true, false},
		{"at threshold", 5, 5, true, false},
		{"above threshold", 50, 5, false, false},
		{"depleted", 0, 5, true, true},
		{"depleted with zero threshold", 0, 0, true, true},
		{"positive quantity with zero threshold", 1, 0, false, false},
		{"negative threshold only flags depleted", 1, -1, false, false},
		{"depleted with negative threshold", 0, -1, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Classify(tt.quantity, tt.threshold)
			assert.Equal(t, tt.critical, status.Critical)
			assert.Equal(t, tt.depleted, status.Depleted)
		})
	}
}

func TestClassifyDepletedImpliesCritical(t *testing.T) {
	for threshold := -2; threshold <= 10; threshold++ {
		status := Classify(0, threshold)
		assert.True(t, status.Depleted, "threshold %d", threshold)
		assert.True(t, status.Critical, "depleted must classify critical at threshold %d", threshold)
	}
}
