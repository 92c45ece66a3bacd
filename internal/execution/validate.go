package execution

import (
	"fmt"
	"math"

	"github.com/yourorg/broker-ledger/internal/domain"
)

// ErrInvalidInput marks validation failures. Rejected before any storage read.
var ErrInvalidInput = fmt.Errorf("invalid order")

func validateOrderRequest(req *OrderRequest) error {
	if req.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidInput)
	}
	if req.Price <= 0 || math.IsInf(req.Price, 0) || math.IsNaN(req.Price) {
		return fmt.Errorf("%w: price must be a positive number", ErrInvalidInput)
	}
	switch req.Side {
	case domain.SideBuy, domain.SideSell:
	default:
		return fmt.Errorf("%w: unknown side %q", ErrInvalidInput, req.Side)
	}
	return nil
}
