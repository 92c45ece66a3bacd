package execution

import (
	"errors"
	"math"
	"testing"

	"github.com/yourorg/broker-ledger/internal/domain"
)

func TestValidateOrderRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     OrderRequest
		wantErr bool
	}{
		{"valid buy", OrderRequest{Symbol: "INFY", Quantity: 1, Price: 1350.50, Side: domain.SideBuy}, false},
		{"valid sell", OrderRequest{Symbol: "INFY", Quantity: 10, Price: 0.01, Side: domain.SideSell}, false},
		{"empty symbol", OrderRequest{Quantity: 1, Price: 100, Side: domain.SideBuy}, true},
		{"zero quantity", OrderRequest{Symbol: "INFY", Quantity: 0, Price: 100, Side: domain.SideBuy}, true},
		{"negative quantity", OrderRequest{Symbol: "INFY", Quantity: -3, Price: 100, Side: domain.SideBuy}, true},
		{"zero price", OrderRequest{Symbol: "INFY", Quantity: 1, Price: 0, Side: domain.SideBuy}, true},
		{"negative price", OrderRequest{Symbol: "INFY", Quantity: 1, Price: -1, Side: domain.SideSell}, true},
		{"infinite price", OrderRequest{Symbol: "INFY", Quantity: 1, Price: math.Inf(1), Side: domain.SideBuy}, true},
		{"nan price", OrderRequest{Symbol: "INFY", Quantity: 1, Price: math.NaN(), Side: domain.SideBuy}, true},
		{"unknown side", OrderRequest{Symbol: "INFY", Quantity: 1, Price: 100, Side: "SHORT"}, true},
		{"lowercase side", OrderRequest{Symbol: "INFY", Quantity: 1, Price: 100, Side: "buy"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOrderRequest(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateOrderRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error %v does not wrap ErrInvalidInput", err)
			}
		})
	}
}
