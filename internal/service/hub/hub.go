// Package hub fans dashboard notifications out to connected SSE clients.
// Delivery is at most once per connection: messages published while a
// subscriber's buffer is full are dropped for that subscriber, never queued
// or replayed.
package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

// subscriberBuffer bounds how far a slow client may fall behind before it
// starts losing messages.
const subscriberBuffer = 16

// Subscriber is one connected dashboard. A nil hospital scope receives
// every notification.
type Subscriber struct {
	id         uuid.UUID
	hospitalID *uuid.UUID
	ch         chan domain.Notification
	hub        *Hub
	closeOnce  sync.Once
}

func (s *Subscriber) ID() uuid.UUID { return s.id }

func (s *Subscriber) HospitalID() *uuid.UUID { return s.hospitalID }

func (s *Subscriber) Events() <-chan domain.Notification { return s.ch }

// Close detaches the subscriber and closes its channel. Safe to call more
// than once; the hub may race it on shutdown.
func (s *Subscriber) Close() {
	s.hub.unsubscribe(s)
}

type Hub struct {
	mu         sync.RWMutex
	byHospital map[uuid.UUID]map[*Subscriber]struct{}
	global     map[*Subscriber]struct{}
	closed     bool
}

func New() *Hub {
	return &Hub{
		byHospital: make(map[uuid.UUID]map[*Subscriber]struct{}),
		global:     make(map[*Subscriber]struct{}),
	}
}

// Subscribe registers a dashboard connection scoped to a hospital, or to
// everything when hospitalID is nil. After hub shutdown the returned
// subscriber's channel is already closed.
func (h *Hub) Subscribe(hospitalID *uuid.UUID) *Subscriber {
	sub := &Subscriber{
		id:         uuid.New(),
		hospitalID: hospitalID,
		ch:         make(chan domain.Notification, subscriberBuffer),
		hub:        h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.ch)
		return sub
	}

	if hospitalID == nil {
		h.global[sub] = struct{}{}
		return sub
	}

	set, ok := h.byHospital[*hospitalID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.byHospital[*hospitalID] = set
	}
	set[sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}

	removed := false
	if sub.hospitalID == nil {
		if _, ok := h.global[sub]; ok {
			delete(h.global, sub)
			removed = true
		}
	} else if set, ok := h.byHospital[*sub.hospitalID]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			removed = true
		}
		if len(set) == 0 {
			delete(h.byHospital, *sub.hospitalID)
		}
	}
	h.mu.Unlock()

	if removed {
		sub.closeOnce.Do(func() { close(sub.ch) })
	}
}

// Publish routes a notification to the subscribers of its hospital plus all
// global subscribers; a nil hospital reaches every connection. Sends never
// block: a subscriber whose buffer is full misses the message.
func (h *Hub) Publish(n domain.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	if n.HospitalID == nil {
		for _, set := range h.byHospital {
			for sub := range set {
				sub.offer(n)
			}
		}
	} else if set, ok := h.byHospital[*n.HospitalID]; ok {
		for sub := range set {
			sub.offer(n)
		}
	}

	for sub := range h.global {
		sub.offer(n)
	}
}

func (s *Subscriber) offer(n domain.Notification) {
	select {
	case s.ch <- n:
	default:
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := len(h.global)
	for _, set := range h.byHospital {
		count += len(set)
	}
	return count
}

// Close shuts the hub down and closes every subscriber channel. Publishes
// and subscribes after Close are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for sub := range h.global {
		sub.closeOnce.Do(func() { close(sub.ch) })
	}
	for _, set := range h.byHospital {
		for sub := range set {
			sub.closeOnce.Do(func() { close(sub.ch) })
		}
	}
	h.global = nil
	h.byHospital = nil
}
