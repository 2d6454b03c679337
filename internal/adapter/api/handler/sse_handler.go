package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// SSEMessage is the per-interval search rate, in searches per second, by provider.
type SSEMessage struct {
	Rates map[string]float64 `json:"rates"`
}

// SSEBroker streams live search rates to connected clients.
type SSEBroker struct {
	logger   *slog.Logger
	clients  map[chan []byte]struct{}
	mu       sync.RWMutex
	searches chan string
	interval time.Duration
}

// NewSSEBroker creates a new SSEBroker and starts its processing loop.
func NewSSEBroker(ctx context.Context, logger *slog.Logger) *SSEBroker {
	return newSSEBroker(ctx, logger, time.Second)
}

func newSSEBroker(ctx context.Context, logger *slog.Logger, interval time.Duration) *SSEBroker {
	broker := &SSEBroker{
		logger:   logger.With("component", "sse_broker"),
		clients:  make(map[chan []byte]struct{}),
		searches: make(chan string, 1000),
		interval: interval,
	}
	go broker.run(ctx)
	return broker
}

// ServeHTTP handles new client connections for the SSE stream.
func (b *SSEBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	messageChan := make(chan []byte, 1)
	b.addClient(messageChan)
	defer b.removeClient(messageChan)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messageChan:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// ReportSearch counts one search for provider. It never blocks the search path.
func (b *SSEBroker) ReportSearch(provider string) {
	select {
	case b.searches <- provider:
	default:
		b.logger.Warn("SSE search counter channel is full, dropping report")
	}
}

func (b *SSEBroker) addClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
	b.logger.Info("SSE client connected")
}

func (b *SSEBroker) removeClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client)
		b.logger.Info("SSE client disconnected")
	}
}

func (b *SSEBroker) broadcast(msg []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client <- msg:
		default:
			// Slow client; it gets the next interval instead.
		}
	}
}

func (b *SSEBroker) run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	counts := make(map[string]int)
	lastTimestamp := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case provider := <-b.searches:
			counts[provider]++
		case <-ticker.C:
			now := time.Now()
			elapsed := now.Sub(lastTimestamp).Seconds()

			msg := SSEMessage{Rates: make(map[string]float64, len(counts))}
			for provider, n := range counts {
				if elapsed > 0 {
					msg.Rates[provider] = float64(n) / elapsed
				}
			}
			jsonData, err := json.Marshal(msg)
			if err != nil {
				b.logger.Error("Failed to marshal SSE message", "error", err)
				continue
			}
			b.broadcast(jsonData)

			lastTimestamp = now
			clear(counts)
		}
	}
}
