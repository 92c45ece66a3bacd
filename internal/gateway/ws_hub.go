package gateway

import (
	"context"
	"encoding/json"
	"log/slog"

	redisRepo "github.com/yourorg/broker-ledger/internal/repository/redis"
)

type subscription struct {
	client *Client
	symbol string
}

type quoteMsg struct {
	symbol string
	data   []byte
}

// Hub fans executed-trade quotes out to websocket clients. One redis pubsub
// pump runs per symbol with at least one subscriber; it is torn down when the
// last subscriber leaves.
type Hub struct {
	clients     map[*Client]bool
	subs        map[string]map[*Client]bool
	pumpCancels map[string]context.CancelFunc

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	broadcast   chan quoteMsg

	quoteRepo *redisRepo.QuoteRepo
	logger    *slog.Logger
}

func NewHub(quoteRepo *redisRepo.QuoteRepo, logger *slog.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		subs:        make(map[string]map[*Client]bool),
		pumpCancels: make(map[string]context.CancelFunc),
		register:    make(chan *Client, 64),
		unregister:  make(chan *Client, 64),
		subscribe:   make(chan subscription, 64),
		unsubscribe: make(chan subscription, 64),
		broadcast:   make(chan quoteMsg, 256),
		quoteRepo:   quoteRepo,
		logger:      logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			h.dropClient(client)
		case sub := <-h.subscribe:
			h.addSub(ctx, sub)
		case sub := <-h.unsubscribe:
			h.dropSub(sub.symbol, sub.client)
		case msg := <-h.broadcast:
			h.fanOut(msg.symbol, msg.data)
		}
	}
}

func (h *Hub) addSub(ctx context.Context, sub subscription) {
	if _, ok := h.subs[sub.symbol]; !ok {
		h.subs[sub.symbol] = make(map[*Client]bool)
		pumpCtx, cancel := context.WithCancel(ctx)
		h.pumpCancels[sub.symbol] = cancel
		go h.pumpQuotes(pumpCtx, sub.symbol)
	}
	h.subs[sub.symbol][sub.client] = true

	// Seed the new subscriber with the last traded quote, if any.
	if tick, err := h.quoteRepo.GetLastQuote(ctx, sub.symbol); err == nil && tick != nil {
		if data, err := json.Marshal(tick); err == nil {
			sub.client.trySend(data)
		}
	}
}

func (h *Hub) dropSub(symbol string, client *Client) {
	clients, ok := h.subs[symbol]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		if cancel, ok := h.pumpCancels[symbol]; ok {
			cancel()
			delete(h.pumpCancels, symbol)
		}
		delete(h.subs, symbol)
	}
}

func (h *Hub) dropClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for sym, clients := range h.subs {
		if clients[client] {
			h.dropSub(sym, client)
		}
	}
	close(client.send)
}

func (h *Hub) pumpQuotes(ctx context.Context, symbol string) {
	pubsub := h.quoteRepo.Subscribe(ctx, symbol)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Hand off to the hub loop; subscription state is only
			// touched there.
			select {
			case h.broadcast <- quoteMsg{symbol: symbol, data: []byte(msg.Payload)}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *Hub) fanOut(symbol string, data []byte) {
	for client := range h.subs[symbol] {
		client.trySend(data)
	}
}
