package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBelowThreshold(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		threshold int
		want      bool
	}{
		{"well below", 0, 5, true},
		{"exactly at threshold", 5, 5, true},
		{"one above", 6, 5, false},
		{"well above", 20, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Quantity: tt.quantity, MinimumThreshold: tt.threshold}
			assert.Equal(t, tt.want, p.BelowThreshold())
		})
	}
}

func TestToDTOStripsOwnership(t *testing.T) {
	p := Product{Name: "Rice", Quantity: 3, MinimumThreshold: 5}
	dto := p.ToDTO()
	assert.Equal(t, "Rice", dto.Name)
	assert.Equal(t, 3, dto.Quantity)
	assert.Equal(t, 5, dto.MinimumThreshold)
	assert.Equal(t, p.ID, dto.ID)
}
