package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/yourorg/broker-ledger/internal/domain"
)

type HoldingRepo struct {
	db *sqlx.DB
}

func NewHoldingRepo(db *sqlx.DB) *HoldingRepo {
	return &HoldingRepo{db: db}
}

// ListByUser returns the user's open holdings in creation order.
func (r *HoldingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	var holdings []domain.Holding
	err := r.db.SelectContext(ctx, &holdings,
		`SELECT * FROM holdings WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	return holdings, nil
}
