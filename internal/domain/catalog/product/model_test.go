package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"freshmart/internal/core/types"
)

func TestValidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		modify  func(p *Product)
		wantErr bool
	}{
		{
			name:    "valid product",
			modify:  func(p *Product) {},
			wantErr: false,
		},
		{
			name:    "empty name",
			modify:  func(p *Product) { p.Name = "" },
			wantErr: true,
		},
		{
			name:    "negative price",
			modify:  func(p *Product) { p.Price = types.MustMoney("-0.01") },
			wantErr: true,
		},
		{
			name:    "zero price is allowed",
			modify:  func(p *Product) { p.Price = types.Zero() },
			wantErr: false,
		},
		{
			name:    "negative min stock level",
			modify:  func(p *Product) { p.MinStockLevel = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New("PRD-00001", "Apples", types.MustMoney("1.50"))
			tt.modify(p)

			err := p.Validate(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsLowStock(t *testing.T) {
	tests := []struct {
		name     string
		min      int64
		quantity int64
		want     bool
	}{
		{"below minimum", 10, 5, true},
		{"at minimum", 10, 10, false},
		{"above minimum", 10, 15, false},
		{"no minimum configured", 0, 0, false},
		{"zero stock with minimum", 10, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New("PRD-00001", "Apples", types.MustMoney("1.50"))
			p.MinStockLevel = tt.min
			p.StockQuantity = tt.quantity

			assert.Equal(t, tt.want, p.IsLowStock())
		})
	}
}
