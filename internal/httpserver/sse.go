package httpserver

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 32
	sseHeartbeat     = 30 * time.Second
)

// message is one server-sent event.
type message struct {
	event string
	data  string
}

// subscriber is a single SSE connection.
type subscriber struct {
	ch     chan message
	gameID string
}

// Broadcaster fans game events out to SSE connections grouped by game.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*subscriber]struct{})}
}

// Register adds a connection for gameID.
func (b *Broadcaster) Register(gameID string) *subscriber {
	c := &subscriber{ch: make(chan message, sseChannelBuffer), gameID: gameID}
	b.mu.Lock()
	b.subs[c] = struct{}{}
	b.mu.Unlock()
	return c
}

// Unregister removes a connection and closes its channel. Safe to repeat.
func (b *Broadcaster) Unregister(c *subscriber) {
	b.mu.Lock()
	if _, ok := b.subs[c]; ok {
		delete(b.subs, c)
		close(c.ch)
	}
	b.mu.Unlock()
}

// Broadcast queues an event for every connection of gameID. Slow
// connections with a full buffer miss it.
func (b *Broadcaster) Broadcast(gameID, event, data string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for c := range b.subs {
		if c.gameID != gameID {
			continue
		}
		select {
		case c.ch <- message{event: event, data: data}:
		default:
		}
	}
}

// ClientCount returns the number of connections for gameID.
func (b *Broadcaster) ClientCount(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for c := range b.subs {
		if c.gameID == gameID {
			n++
		}
	}
	return n
}

// ServeSSE streams gameID's events until the client goes away. onConnect
// runs after registration, so it may queue an initial snapshot.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, gameID string, onConnect func(c *subscriber)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	c := b.Register(gameID)
	defer b.Unregister(c)
	if onConnect != nil {
		onConnect(c)
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c.ch:
			if !ok {
				return
			}
			if msg.event != "" {
				fmt.Fprintf(w, "event: %s\n", msg.event)
			}
			fmt.Fprintf(w, "data: %s\n\n", msg.data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
