// Package query is the read side: list holdings and fold them into the
// portfolio summary and funds views. No mutation happens here.
package query

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourorg/broker-ledger/internal/domain"
)

// OpeningBalance seeds the funds view. The ledger tracks positions, not cash;
// margin numbers are derived for display against this fixed balance.
const OpeningBalance = 100000.00

type HoldingLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error)
}

type Service struct {
	holdings HoldingLister
}

func NewService(holdings HoldingLister) *Service {
	return &Service{holdings: holdings}
}

func (s *Service) ListHoldings(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	holdings, err := s.holdings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	return holdings, nil
}

// Summary folds the user's holdings: invested is at average cost, current
// value is at last traded price.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (*domain.Summary, error) {
	holdings, err := s.holdings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	var sum domain.Summary
	for _, h := range holdings {
		sum.TotalInvested += h.AvgCost * float64(h.Quantity)
		sum.CurrentValue += h.LastPrice * float64(h.Quantity)
	}
	sum.ProfitLoss = sum.CurrentValue - sum.TotalInvested
	if sum.TotalInvested > 0 {
		sum.ProfitLossPercent = sum.ProfitLoss / sum.TotalInvested * 100
	}
	return &sum, nil
}

// Funds derives the margin view from the summary. Invested value counts as
// used (delivery) margin against the opening balance.
func (s *Service) Funds(ctx context.Context, userID uuid.UUID) (*domain.Funds, error) {
	sum, err := s.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	used := sum.TotalInvested
	return &domain.Funds{
		AvailableMargin: OpeningBalance - used,
		UsedMargin:      used,
		AvailableCash:   OpeningBalance - used,
		OpeningBalance:  OpeningBalance,
		ClosingBalance:  OpeningBalance - used,
		Payin:           OpeningBalance,
		DeliveryMargin:  used,
	}, nil
}
