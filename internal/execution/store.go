package execution

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourorg/broker-ledger/internal/domain"
)

// Store runs the engine's critical section inside one transaction: either
// every write issued through the Tx becomes durable or none do.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the storage surface visible inside an execution transaction.
// GetHolding returns (nil, nil) when the user holds nothing for the symbol.
type Tx interface {
	GetHolding(ctx context.Context, userID uuid.UUID, symbol string) (*domain.Holding, error)
	UpsertHolding(ctx context.Context, h *domain.Holding) error
	DeleteHolding(ctx context.Context, userID uuid.UUID, symbol string) error
	AppendOrder(ctx context.Context, o *domain.Order) error
}

// TickPublisher receives the fill price of each accepted execution.
type TickPublisher interface {
	Publish(ctx context.Context, tick domain.PriceTick) error
}
