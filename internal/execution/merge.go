package execution

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/yourorg/broker-ledger/internal/domain"
)

// ErrNoHolding is returned for a SELL against a symbol the user does not hold.
var ErrNoHolding = fmt.Errorf("stock not found in holdings")

// InsufficientQuantityError rejects a SELL larger than the open quantity. The
// message names the shares actually held.
type InsufficientQuantityError struct {
	Held int64
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity: you have %d shares", e.Held)
}

// openHolding builds the holding created by a BUY on a flat key. The buy price
// seeds both the average cost and the opening reference price; both change
// percentages start at zero.
func openHolding(userID uuid.UUID, symbol string, qty int64, price float64) *domain.Holding {
	return &domain.Holding{
		UserID:       userID,
		Symbol:       symbol,
		Quantity:     qty,
		AvgCost:      price,
		LastPrice:    price,
		OpenPrice:    price,
		NetChangePct: 0,
		DayChangePct: 0,
		IsLoss:       false,
	}
}

// accumulateBuy folds a BUY into an existing holding: quantity grows, the
// average cost becomes the volume-weighted blend of old and new, and the
// opening reference price is carried over untouched. A legacy row without an
// open price inherits its pre-update average cost as the reference.
func accumulateBuy(h domain.Holding, qty int64, price float64) domain.Holding {
	if h.OpenPrice == 0 {
		h.OpenPrice = h.AvgCost
	}
	newQty := h.Quantity + qty
	h.AvgCost = (h.AvgCost*float64(h.Quantity) + price*float64(qty)) / float64(newQty)
	h.Quantity = newQty
	return reprice(h, price)
}

// reduceSell folds a SELL into an existing holding. The average cost of the
// remaining shares is invariant under selling. A sell that exhausts the
// quantity returns (nil, nil): the caller must delete the row. Oversells are
// rejected whole; there is no partial fill.
func reduceSell(h domain.Holding, qty int64, price float64) (*domain.Holding, error) {
	if qty > h.Quantity {
		return nil, &InsufficientQuantityError{Held: h.Quantity}
	}
	h.Quantity -= qty
	if h.Quantity == 0 {
		return nil, nil
	}
	if h.OpenPrice == 0 {
		h.OpenPrice = h.AvgCost
	}
	h = reprice(h, price)
	return &h, nil
}

// reprice recomputes the derived fields against a new last-traded price.
// Requires AvgCost and OpenPrice to be set.
func reprice(h domain.Holding, price float64) domain.Holding {
	h.LastPrice = price
	h.NetChangePct = (price - h.AvgCost) / h.AvgCost * 100
	h.DayChangePct = (price - h.OpenPrice) / h.OpenPrice * 100
	h.IsLoss = h.NetChangePct < 0
	return h
}
