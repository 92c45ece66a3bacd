package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yourorg/broker-ledger/internal/domain"
)

const quoteTTL = 24 * time.Hour

// QuoteRepo caches the last traded price per symbol and fans ticks out over
// pubsub. Ticks originate from executed orders, so a symbol has a quote only
// once someone has traded it.
type QuoteRepo struct {
	client *redis.Client
}

func NewQuoteRepo(client *redis.Client) *QuoteRepo {
	return &QuoteRepo{client: client}
}

func (r *QuoteRepo) Publish(ctx context.Context, tick domain.PriceTick) error {
	data, err := json.Marshal(tick)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Publish(ctx, "quotes."+tick.Symbol, data)
	pipe.Set(ctx, "quote:"+tick.Symbol, data, quoteTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// GetLastQuote returns (nil, nil) when the symbol has never traded.
func (r *QuoteRepo) GetLastQuote(ctx context.Context, symbol string) (*domain.PriceTick, error) {
	val, err := r.client.Get(ctx, "quote:"+symbol).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get quote: %w", err)
	}
	var tick domain.PriceTick
	if err := json.Unmarshal([]byte(val), &tick); err != nil {
		return nil, err
	}
	return &tick, nil
}

func (r *QuoteRepo) Subscribe(ctx context.Context, symbol string) *redis.PubSub {
	return r.client.Subscribe(ctx, "quotes."+symbol)
}
