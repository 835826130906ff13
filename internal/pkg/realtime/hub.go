package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event types published by the services
const (
	EventHeartbeat             = "heartbeat"
	EventApplicationCreated    = "application.created"
	EventApplicationStatus     = "application.status"
	EventPaymentUpdated        = "payment.updated"
	EventDocumentUploaded      = "document.uploaded"
	EventOfflinePaymentCreated = "offline_payment.created"
	EventOfflinePaymentStatus  = "offline_payment.status"
)

// Event is one message fanned out to subscribers. Events without an agency
// only reach admins.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	AgencyID  string      `json:"agencyId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent builds an event scoped to an agency
func NewEvent(eventType, agencyID string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		AgencyID:  agencyID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher is what services depend on
type Publisher interface {
	Publish(event *Event)
}

// Subscriber receives events for one agency room, or for every room when admin
type Subscriber struct {
	ID       string
	AgencyID string
	Admin    bool
	send     chan *Event
}

// Events returns the receive side; it is closed when the subscriber is removed
func (s *Subscriber) Events() <-chan *Event {
	return s.send
}

const adminRoom = "*admin"

// Hub keeps subscribers grouped in rooms and fans out events without blocking
type Hub struct {
	// Subscribers organized by room: agency id, or adminRoom
	rooms map[string]map[*Subscriber]bool

	broadcast  chan *Event
	register   chan *Subscriber
	unregister chan *Subscriber
	done       chan struct{}

	mu           sync.RWMutex
	clientBuffer int
	logger       zerolog.Logger
}

// NewHub creates a new Hub; clientBuffer is the per-subscriber queue length
func NewHub(clientBuffer int, logger zerolog.Logger) *Hub {
	if clientBuffer <= 0 {
		clientBuffer = 32
	}
	return &Hub{
		rooms:        make(map[string]map[*Subscriber]bool),
		broadcast:    make(chan *Event, 256),
		register:     make(chan *Subscriber),
		unregister:   make(chan *Subscriber),
		done:         make(chan struct{}),
		clientBuffer: clientBuffer,
		logger:       logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-h.register:
			h.registerSubscriber(sub)
		case sub := <-h.unregister:
			h.unregisterSubscriber(sub)
		case event := <-h.broadcast:
			h.fanOut(event)
		}
	}
}

// Subscribe registers a new subscriber. It returns nil once the hub stopped.
func (h *Hub) Subscribe(agencyID string, admin bool) *Subscriber {
	sub := &Subscriber{
		ID:       uuid.NewString(),
		AgencyID: agencyID,
		Admin:    admin,
		send:     make(chan *Event, h.clientBuffer),
	}
	select {
	case h.register <- sub:
		return sub
	case <-h.done:
		return nil
	}
}

// Unsubscribe removes a subscriber and closes its channel
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Publish queues an event for fan-out. When the queue is full the event is dropped.
func (h *Hub) Publish(event *Event) {
	if event == nil {
		return
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Str("type", event.Type).Msg("Realtime queue full, event dropped")
	}
}

// SubscriberCount returns the number of live subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, subs := range h.rooms {
		n += len(subs)
	}
	return n
}

func roomOf(sub *Subscriber) string {
	if sub.Admin {
		return adminRoom
	}
	return sub.AgencyID
}

func (h *Hub) registerSubscriber(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := roomOf(sub)
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Subscriber]bool)
	}
	h.rooms[room][sub] = true

	h.logger.Debug().Str("room", room).Str("subscriberID", sub.ID).Msg("Subscriber registered")
}

func (h *Hub) unregisterSubscriber(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := roomOf(sub)
	if subs, ok := h.rooms[room]; ok {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			close(sub.send)
			if len(subs) == 0 {
				delete(h.rooms, room)
			}
			h.logger.Debug().Str("room", room).Str("subscriberID", sub.ID).Msg("Subscriber unregistered")
		}
	}
}

// fanOut delivers to the agency room and the admin room. A subscriber whose
// queue is full misses the event.
func (h *Hub) fanOut(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := []map[*Subscriber]bool{h.rooms[adminRoom]}
	if event.AgencyID != "" {
		targets = append(targets, h.rooms[event.AgencyID])
	}

	for _, subs := range targets {
		for sub := range subs {
			select {
			case sub.send <- event:
			default:
				h.logger.Debug().Str("subscriberID", sub.ID).Str("type", event.Type).Msg("Slow subscriber, event dropped")
			}
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	close(h.done)
	for room, subs := range h.rooms {
		for sub := range subs {
			close(sub.send)
		}
		delete(h.rooms, room)
	}
}

// NopPublisher discards events
type NopPublisher struct{}

func (NopPublisher) Publish(*Event) {}
