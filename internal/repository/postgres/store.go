package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/yourorg/broker-ledger/internal/domain"
	"github.com/yourorg/broker-ledger/internal/execution"
)

// Store implements execution.Store over one postgres transaction per call.
// The holding row is read FOR UPDATE so concurrent writers to the same key
// queue behind the transaction even across processes.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithTx(ctx context.Context, fn func(tx execution.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type storeTx struct {
	tx *sqlx.Tx
}

func (t *storeTx) GetHolding(ctx context.Context, userID uuid.UUID, symbol string) (*domain.Holding, error) {
	var h domain.Holding
	err := t.tx.GetContext(ctx, &h,
		`SELECT * FROM holdings WHERE user_id = $1 AND symbol = $2 FOR UPDATE`, userID, symbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

func (t *storeTx) UpsertHolding(ctx context.Context, h *domain.Holding) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO holdings (id, user_id, symbol, quantity, avg_cost, last_price,
		                      open_price, net_change_pct, day_change_pct, is_loss)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, symbol) DO UPDATE SET
			quantity       = EXCLUDED.quantity,
			avg_cost       = EXCLUDED.avg_cost,
			last_price     = EXCLUDED.last_price,
			open_price     = EXCLUDED.open_price,
			net_change_pct = EXCLUDED.net_change_pct,
			day_change_pct = EXCLUDED.day_change_pct,
			is_loss        = EXCLUDED.is_loss,
			updated_at     = NOW()`,
		h.ID, h.UserID, h.Symbol, h.Quantity, h.AvgCost, h.LastPrice,
		h.OpenPrice, h.NetChangePct, h.DayChangePct, h.IsLoss)
	return err
}

func (t *storeTx) DeleteHolding(ctx context.Context, userID uuid.UUID, symbol string) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM holdings WHERE user_id = $1 AND symbol = $2`, userID, symbol)
	return err
}

func (t *storeTx) AppendOrder(ctx context.Context, o *domain.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, symbol, side, quantity, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.UserID, o.Symbol, o.Side, o.Quantity, o.Price, o.CreatedAt)
	return err
}
