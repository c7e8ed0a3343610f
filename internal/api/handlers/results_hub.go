package handlers

import (
	"sync"

	"github.com/gofiber/websocket/v2"

	"github.com/veriscan/backend/internal/storage/models"
	"github.com/veriscan/backend/pkg/logger"
)

// ResultHub fans completed analysis records out to websocket subscribers, so
// clients see verdicts as they land instead of polling the latest-result
// endpoint.
type ResultHub struct {
	mu   sync.Mutex
	subs map[chan models.AnalysisRecord]struct{}
}

func NewResultHub() *ResultHub {
	return &ResultHub{
		subs: make(map[chan models.AnalysisRecord]struct{}),
	}
}

// Publish delivers a record to every subscriber. A subscriber that cannot
// keep up misses the record rather than blocking the worker.
func (h *ResultHub) Publish(rec models.AnalysisRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- rec:
		default:
		}
	}
}

func (h *ResultHub) subscribe() chan models.AnalysisRecord {
	ch := make(chan models.AnalysisRecord, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *ResultHub) unsubscribe(ch chan models.AnalysisRecord) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

func (h *ResultHub) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	ch := h.subscribe()
	defer func() {
		h.unsubscribe(ch)
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case rec := <-ch:
			msg := map[string]interface{}{
				"type":   "result",
				"record": rec,
			}
			if err := c.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
