package store

import (
	"context"
	"sync"

	"github.com/localnerve/carscan-store/internal/models"
)

// watchers fans collection snapshots out to per-user subscribers.
// Each subscriber only ever holds the most recent snapshot.
type watchers struct {
	mu   sync.Mutex
	subs map[string]map[chan []models.Collection]struct{}
}

func newWatchers() *watchers {
	return &watchers{subs: make(map[string]map[chan []models.Collection]struct{})}
}

// subscribe registers a channel for userID that is closed when ctx is done
func (w *watchers) subscribe(ctx context.Context, userID string) chan []models.Collection {
	ch := make(chan []models.Collection, 1)

	w.mu.Lock()
	set, ok := w.subs[userID]
	if !ok {
		set = make(map[chan []models.Collection]struct{})
		w.subs[userID] = set
	}
	set[ch] = struct{}{}
	w.mu.Unlock()

	go func() {
		<-ctx.Done()
		w.unsubscribe(userID, ch)
	}()

	return ch
}

// unsubscribe removes and closes ch; later calls for the same channel do nothing
func (w *watchers) unsubscribe(userID string, ch chan []models.Collection) {
	w.mu.Lock()
	defer w.mu.Unlock()

	set := w.subs[userID]
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(w.subs, userID)
	}
	close(ch)
}

func (w *watchers) has(userID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs[userID]) > 0
}

// publish replaces any undelivered snapshot with this one, never blocking
func (w *watchers) publish(userID string, snapshot []models.Collection) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for ch := range w.subs[userID] {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// offer delivers the initial state to one subscriber unless a newer snapshot is already queued
func (w *watchers) offer(userID string, ch chan []models.Collection, snapshot []models.Collection) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.subs[userID][ch]; !ok {
		return
	}
	select {
	case ch <- snapshot:
	default:
	}
}
