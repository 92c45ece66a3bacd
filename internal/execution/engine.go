package execution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/broker-ledger/internal/domain"
)

// OrderRequest is one order submission, scoped to an authenticated user.
type OrderRequest struct {
	Symbol   string           `json:"symbol"`
	Quantity int64            `json:"quantity"`
	Price    float64          `json:"price"`
	Side     domain.OrderSide `json:"side"`
}

// Result reports what an accepted execution did to the holding. Holding is
// nil when the sell closed the position and the row was removed.
type Result struct {
	Order   domain.Order
	Holding *domain.Holding
	Removed bool
}

// Engine merges incoming orders into per-user holdings and appends them to
// the order ledger. Each accepted call performs exactly one holding
// write-or-delete plus one order append, atomically; rejected calls write
// nothing.
type Engine struct {
	store  Store
	ticks  TickPublisher
	logger *slog.Logger

	keys *keyLock
	now  func() time.Time
}

func NewEngine(store Store, ticks TickPublisher, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		ticks:  ticks,
		logger: logger,
		keys:   newKeyLock(),
		now:    time.Now,
	}
}

// Execute validates and applies one order. At most one Execute is inside the
// read-merge-write section for a given (user, symbol) at a time; orders for
// different keys do not block each other.
func (e *Engine) Execute(ctx context.Context, userID uuid.UUID, req OrderRequest) (*Result, error) {
	if err := validateOrderRequest(&req); err != nil {
		return nil, err
	}

	key := userID.String() + "|" + req.Symbol
	e.keys.lock(key)
	defer e.keys.unlock(key)

	res := &Result{
		Order: domain.Order{
			ID:        uuid.New(),
			UserID:    userID,
			Symbol:    req.Symbol,
			Side:      req.Side,
			Quantity:  req.Quantity,
			Price:     req.Price,
			CreatedAt: e.now().UTC(),
		},
	}

	err := e.store.WithTx(ctx, func(tx Tx) error {
		current, err := tx.GetHolding(ctx, userID, req.Symbol)
		if err != nil {
			return fmt.Errorf("get holding: %w", err)
		}

		switch req.Side {
		case domain.SideBuy:
			var next *domain.Holding
			if current == nil {
				next = openHolding(userID, req.Symbol, req.Quantity, req.Price)
			} else {
				merged := accumulateBuy(*current, req.Quantity, req.Price)
				next = &merged
			}
			if err := tx.UpsertHolding(ctx, next); err != nil {
				return fmt.Errorf("upsert holding: %w", err)
			}
			res.Holding = next

		case domain.SideSell:
			if current == nil {
				return ErrNoHolding
			}
			next, err := reduceSell(*current, req.Quantity, req.Price)
			if err != nil {
				return err
			}
			if next == nil {
				if err := tx.DeleteHolding(ctx, userID, req.Symbol); err != nil {
					return fmt.Errorf("delete holding: %w", err)
				}
				res.Removed = true
			} else {
				if err := tx.UpsertHolding(ctx, next); err != nil {
					return fmt.Errorf("upsert holding: %w", err)
				}
				res.Holding = next
			}
		}

		if err := tx.AppendOrder(ctx, &res.Order); err != nil {
			return fmt.Errorf("append order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publishTick(ctx, res.Order)
	return res, nil
}

// publishTick pushes the fill as the symbol's latest quote. Best effort: the
// execution is already committed, so a cache failure only costs freshness.
func (e *Engine) publishTick(ctx context.Context, o domain.Order) {
	if e.ticks == nil {
		return
	}
	tick := domain.PriceTick{
		Symbol:    o.Symbol,
		Price:     o.Price,
		Size:      o.Quantity,
		Timestamp: o.CreatedAt,
	}
	if err := e.ticks.Publish(ctx, tick); err != nil {
		e.logger.Error("failed to publish trade tick", "symbol", o.Symbol, "err", err)
	}
}
