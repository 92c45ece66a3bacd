package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

type User struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	Email        string    `db:"email"         json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}

// Order is an immutable record of an accepted execution. Rows are only ever
// appended; rejected submissions leave no trace.
type Order struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	UserID    uuid.UUID `db:"user_id"    json:"user_id"`
	Symbol    string    `db:"symbol"     json:"symbol"`
	Side      OrderSide `db:"side"       json:"side"`
	Quantity  int64     `db:"quantity"   json:"quantity"`
	Price     float64   `db:"price"      json:"price"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Holding is the open position for one (user, symbol) pair. A row exists iff
// quantity > 0; a full exit deletes the row rather than zeroing it.
//
// OpenPrice is the opening reference price: fixed when the holding is first
// created and carried verbatim through later buys and partial sells. It is the
// baseline for DayChangePct, while AvgCost is the baseline for NetChangePct.
type Holding struct {
	ID           uuid.UUID `db:"id"             json:"id"`
	UserID       uuid.UUID `db:"user_id"        json:"user_id"`
	Symbol       string    `db:"symbol"         json:"symbol"`
	Quantity     int64     `db:"quantity"       json:"quantity"`
	AvgCost      float64   `db:"avg_cost"       json:"avg_cost"`
	LastPrice    float64   `db:"last_price"     json:"last_price"`
	OpenPrice    float64   `db:"open_price"     json:"open_price"`
	NetChangePct float64   `db:"net_change_pct" json:"net_change_pct"`
	DayChangePct float64   `db:"day_change_pct" json:"day_change_pct"`
	IsLoss       bool      `db:"is_loss"        json:"is_loss"`
	CreatedAt    time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"     json:"updated_at"`
}

// Summary is the read-side fold over a user's holdings.
type Summary struct {
	TotalInvested     float64 `json:"total_invested"`
	CurrentValue      float64 `json:"current_value"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossPercent float64 `json:"profit_loss_percent"`
}

// Funds is the margin view derived from holdings against a fixed opening
// balance. Display-only; it is never a source of execution decisions.
type Funds struct {
	AvailableMargin  float64 `json:"available_margin"`
	UsedMargin       float64 `json:"used_margin"`
	AvailableCash    float64 `json:"available_cash"`
	OpeningBalance   float64 `json:"opening_balance"`
	ClosingBalance   float64 `json:"closing_balance"`
	Payin            float64 `json:"payin"`
	Span             float64 `json:"span"`
	DeliveryMargin   float64 `json:"delivery_margin"`
	Exposure         float64 `json:"exposure"`
	OptionsPremium   float64 `json:"options_premium"`
	CollateralLiquid float64 `json:"collateral_liquid"`
	CollateralEquity float64 `json:"collateral_equity"`
	TotalCollateral  float64 `json:"total_collateral"`
}

type PriceTick struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Size      int64     `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}
