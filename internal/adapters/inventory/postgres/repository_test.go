package postgres

import (
	"testing"

	"obrasoft/ms_gestion_core/internal/core/inventory"

	"github.com/shopspring/decimal"
)

func TestStockDelta(t *testing.T) {
	tests := []struct {
		name     string
		movement inventory.Movement
		want     string
	}{
		{
			name:     "entrada adds",
			movement: inventory.Movement{Type: inventory.MovementEntrada, Quantity: decimal.NewFromInt(25)},
			want:     "25",
		},
		{
			name:     "salida subtracts",
			movement: inventory.Movement{Type: inventory.MovementSalida, Quantity: decimal.NewFromInt(10)},
			want:     "-10",
		},
		{
			name:     "ajuste keeps its sign",
			movement: inventory.Movement{Type: inventory.MovementAjuste, Quantity: decimal.NewFromInt(-3)},
			want:     "-3",
		},
		{
			name:     "positive ajuste adds",
			movement: inventory.Movement{Type: inventory.MovementAjuste, Quantity: decimal.NewFromInt(7)},
			want:     "7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stockDelta(tt.movement)
			if got.String() != tt.want {
				t.Errorf("stockDelta() = %s, want %s", got, tt.want)
			}
		})
	}
}
