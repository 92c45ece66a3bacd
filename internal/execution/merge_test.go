package execution

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/yourorg/broker-ledger/internal/domain"
)

const tolerance = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestOpenHolding(t *testing.T) {
	userID := uuid.New()
	h := openHolding(userID, "INFY", 10, 1350.50)

	if h.Quantity != 10 {
		t.Errorf("Quantity = %d, want 10", h.Quantity)
	}
	if h.AvgCost != 1350.50 {
		t.Errorf("AvgCost = %v, want 1350.50", h.AvgCost)
	}
	if h.OpenPrice != 1350.50 {
		t.Errorf("OpenPrice = %v, want 1350.50", h.OpenPrice)
	}
	if h.LastPrice != 1350.50 {
		t.Errorf("LastPrice = %v, want 1350.50", h.LastPrice)
	}
	if h.NetChangePct != 0 || h.DayChangePct != 0 {
		t.Errorf("change pcts = %v/%v, want 0/0", h.NetChangePct, h.DayChangePct)
	}
	if h.IsLoss {
		t.Error("IsLoss = true for a fresh holding")
	}
}

func TestAccumulateBuy(t *testing.T) {
	tests := []struct {
		name       string
		start      domain.Holding
		qty        int64
		price      float64
		wantQty    int64
		wantAvg    float64
		wantOpen   float64
		wantNet    float64
		wantDay    float64
		wantIsLoss bool
	}{
		{
			name:     "weighted average blend",
			start:    domain.Holding{Quantity: 2, AvgCost: 100, LastPrice: 100, OpenPrice: 100},
			qty:      3,
			price:    120,
			wantQty:  5,
			wantAvg:  112,
			wantOpen: 100,
			wantNet:  (120.0 - 112.0) / 112.0 * 100,
			wantDay:  20,
		},
		{
			name:       "top-up below average is a loss",
			start:      domain.Holding{Quantity: 4, AvgCost: 200, LastPrice: 210, OpenPrice: 200},
			qty:        1,
			price:      100,
			wantQty:    5,
			wantAvg:    180,
			wantOpen:   200,
			wantNet:    (100.0 - 180.0) / 180.0 * 100,
			wantDay:    -50,
			wantIsLoss: true,
		},
		{
			name:     "legacy row without open price inherits prior average",
			start:    domain.Holding{Quantity: 2, AvgCost: 100, LastPrice: 100},
			qty:      2,
			price:    110,
			wantQty:  4,
			wantAvg:  105,
			wantOpen: 100,
			wantNet:  (110.0 - 105.0) / 105.0 * 100,
			wantDay:  10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := accumulateBuy(tt.start, tt.qty, tt.price)
			if got.Quantity != tt.wantQty {
				t.Errorf("Quantity = %d, want %d", got.Quantity, tt.wantQty)
			}
			if !approxEqual(got.AvgCost, tt.wantAvg) {
				t.Errorf("AvgCost = %v, want %v", got.AvgCost, tt.wantAvg)
			}
			if !approxEqual(got.OpenPrice, tt.wantOpen) {
				t.Errorf("OpenPrice = %v, want %v", got.OpenPrice, tt.wantOpen)
			}
			if got.LastPrice != tt.price {
				t.Errorf("LastPrice = %v, want %v", got.LastPrice, tt.price)
			}
			if !approxEqual(got.NetChangePct, tt.wantNet) {
				t.Errorf("NetChangePct = %v, want %v", got.NetChangePct, tt.wantNet)
			}
			if !approxEqual(got.DayChangePct, tt.wantDay) {
				t.Errorf("DayChangePct = %v, want %v", got.DayChangePct, tt.wantDay)
			}
			if got.IsLoss != tt.wantIsLoss {
				t.Errorf("IsLoss = %v, want %v", got.IsLoss, tt.wantIsLoss)
			}
		})
	}
}

// The weighted average must equal sum(qty*price)/sum(qty) regardless of the
// order the buys arrive in.
func TestAccumulateBuy_OrderIndependent(t *testing.T) {
	type buy struct {
		qty   int64
		price float64
	}
	buys := []buy{{2, 100}, {3, 120}, {5, 95.5}, {1, 140.25}}

	fold := func(order []buy) float64 {
		h := *openHolding(uuid.New(), "TCS", order[0].qty, order[0].price)
		for _, b := range order[1:] {
			h = accumulateBuy(h, b.qty, b.price)
		}
		return h.AvgCost
	}

	var totalQty int64
	var totalCost float64
	for _, b := range buys {
		totalQty += b.qty
		totalCost += float64(b.qty) * b.price
	}
	want := totalCost / float64(totalQty)

	forward := fold(buys)
	reversed := fold([]buy{buys[3], buys[2], buys[1], buys[0]})

	if !approxEqual(forward, want) {
		t.Errorf("forward avg = %v, want %v", forward, want)
	}
	if !approxEqual(reversed, want) {
		t.Errorf("reversed avg = %v, want %v", reversed, want)
	}
}

func TestReduceSell(t *testing.T) {
	base := domain.Holding{Quantity: 5, AvgCost: 112, LastPrice: 120, OpenPrice: 100}

	t.Run("partial sell keeps average cost", func(t *testing.T) {
		got, err := reduceSell(base, 4, 130)
		if err != nil {
			t.Fatalf("reduceSell() error = %v", err)
		}
		if got == nil {
			t.Fatal("reduceSell() removed the holding on a partial sell")
		}
		if got.Quantity != 1 {
			t.Errorf("Quantity = %d, want 1", got.Quantity)
		}
		if got.AvgCost != 112 {
			t.Errorf("AvgCost = %v, want 112 (selling must not move the cost basis)", got.AvgCost)
		}
		if got.OpenPrice != 100 {
			t.Errorf("OpenPrice = %v, want 100", got.OpenPrice)
		}
		wantNet := (130.0 - 112.0) / 112.0 * 100
		if !approxEqual(got.NetChangePct, wantNet) {
			t.Errorf("NetChangePct = %v, want %v", got.NetChangePct, wantNet)
		}
		if !approxEqual(got.DayChangePct, 30) {
			t.Errorf("DayChangePct = %v, want 30", got.DayChangePct)
		}
		if got.LastPrice != 130 {
			t.Errorf("LastPrice = %v, want 130", got.LastPrice)
		}
	})

	t.Run("full exit removes the holding", func(t *testing.T) {
		got, err := reduceSell(base, 5, 130)
		if err != nil {
			t.Fatalf("reduceSell() error = %v", err)
		}
		if got != nil {
			t.Errorf("reduceSell() = %+v, want nil on full exit", got)
		}
	})

	t.Run("oversell is rejected naming held quantity", func(t *testing.T) {
		_, err := reduceSell(base, 6, 130)
		var insufficient *InsufficientQuantityError
		if !errors.As(err, &insufficient) {
			t.Fatalf("reduceSell() error = %v, want InsufficientQuantityError", err)
		}
		if insufficient.Held != 5 {
			t.Errorf("Held = %d, want 5", insufficient.Held)
		}
		if !strings.Contains(err.Error(), "5") {
			t.Errorf("error message %q does not name the held quantity", err.Error())
		}
	})

	t.Run("sell below cost flags loss", func(t *testing.T) {
		got, err := reduceSell(base, 1, 90)
		if err != nil {
			t.Fatalf("reduceSell() error = %v", err)
		}
		if !got.IsLoss {
			t.Error("IsLoss = false for a sell below average cost")
		}
	})
}

// Worked sequence: open, top up, partial sell, full exit.
func TestHoldingLifecycle(t *testing.T) {
	h := *openHolding(uuid.New(), "RELIANCE", 2, 100)
	if h.AvgCost != 100 || h.Quantity != 2 {
		t.Fatalf("after open: qty=%d avg=%v", h.Quantity, h.AvgCost)
	}

	h = accumulateBuy(h, 3, 120)
	if h.Quantity != 5 || !approxEqual(h.AvgCost, 112) {
		t.Fatalf("after top-up: qty=%d avg=%v, want 5/112", h.Quantity, h.AvgCost)
	}

	next, err := reduceSell(h, 4, 130)
	if err != nil {
		t.Fatalf("partial sell: %v", err)
	}
	if next.Quantity != 1 || !approxEqual(next.AvgCost, 112) {
		t.Fatalf("after partial sell: qty=%d avg=%v, want 1/112", next.Quantity, next.AvgCost)
	}
	if !approxEqual(next.NetChangePct, (130.0-112.0)/112.0*100) {
		t.Fatalf("after partial sell: net=%v", next.NetChangePct)
	}

	final, err := reduceSell(*next, 1, 140)
	if err != nil {
		t.Fatalf("full exit: %v", err)
	}
	if final != nil {
		t.Fatalf("after full exit: holding = %+v, want nil", final)
	}
}
