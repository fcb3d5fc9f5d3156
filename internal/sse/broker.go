// Package sse implements a Server-Sent Events broker for real-time updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type songEventReq struct {
	kind string
	id   string
}

// DefaultKeepAlive is the interval between keep-alive comments on an idle
// stream.
const DefaultKeepAlive = 15 * time.Second

// retryMillis is the reconnect delay suggested to clients on connect.
const retryMillis = 3000

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set and the reload throttle
// state. Public methods talk to it over channels.
type Broker struct {
	reloadMin time.Duration
	keepAlive time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	songEventCh   chan songEventReq
	reloadCh      chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets the keep-alive comment interval for streaming clients.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.keepAlive = d
		}
	}
}

// NewBroker creates a new SSE broker. catalog.reloaded events are sent at
// most once per reloadThrottle; the latest suppressed one is delivered when
// the interval ends.
func NewBroker(reloadThrottle time.Duration, opts ...Option) *Broker {
	if reloadThrottle <= 0 {
		reloadThrottle = 2 * time.Second
	}

	b := &Broker{
		reloadMin:     reloadThrottle,
		keepAlive:     DefaultKeepAlive,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		songEventCh:   make(chan songEventReq, 256),
		reloadCh:      make(chan Event, 16),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var seq uint64
	reload := &reloadGate{min: b.reloadMin}

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		// Ids increase by one per broadcast so clients can spot dropped events.
		seq++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			reload.stop()
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.songEventCh:
			data := map[string]string{"id": req.id}
			switch req.kind {
			case "created":
				broadcast(Event{Type: "song.created", Data: data})
			case "updated":
				broadcast(Event{Type: "song.updated", Data: data})
			case "deleted":
				broadcast(Event{Type: "song.deleted", Data: data})
			}

		case event := <-b.reloadCh:
			if out, ok := reload.offer(time.Now(), event); ok {
				broadcast(out)
			}

		case <-reload.fire:
			if out, ok := reload.fired(time.Now()); ok {
				broadcast(out)
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishSongEvent publishes song.created, song.updated or song.deleted.
func (b *Broker) PublishSongEvent(kind, id string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.songEventCh <- songEventReq{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// PublishReload announces a rebuilt catalog snapshot (throttled).
func (b *Broker) PublishReload(buildID string, songs int) {
	if b.closed.Load() {
		return
	}
	event := Event{Type: "catalog.reloaded", Data: map[string]any{"build_id": buildID, "songs": songs}}
	select {
	case b.reloadCh <- event:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

// reloadGate limits catalog.reloaded broadcasts to one per min. An event
// arriving inside the window is held (newest wins) and sent when fire
// delivers. It is owned by the run loop and not safe for concurrent use.
type reloadGate struct {
	min     time.Duration
	last    time.Time
	pending *Event
	timer   *time.Timer
	fire    <-chan time.Time
}

// offer returns the event to broadcast now, if any.
func (t *reloadGate) offer(now time.Time, event Event) (Event, bool) {
	if wait := t.min - now.Sub(t.last); wait > 0 {
		t.pending = &event
		if t.timer == nil {
			t.timer = time.NewTimer(wait)
			t.fire = t.timer.C
		}
		return Event{}, false
	}
	// A direct send supersedes anything held, which would otherwise go out
	// later with an older build id.
	t.stop()
	t.last = now
	return event, true
}

// fired is called when fire delivers and returns the held event, if any.
func (t *reloadGate) fired(now time.Time) (Event, bool) {
	t.timer, t.fire = nil, nil
	if t.pending == nil {
		return Event{}, false
	}
	event := *t.pending
	t.pending = nil
	t.last = now
	return event, true
}

func (t *reloadGate) stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer, t.fire, t.pending = nil, nil, nil
}
