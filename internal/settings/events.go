package settings

import (
	"context"
	"sync"
)

// changeBroadcaster fans repository mutations out to subscribers. Delivery is
// best-effort: a subscriber that has not drained its buffer misses the event
// instead of blocking the writer.
type changeBroadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]chan ChangeEvent
	nextID uint64
}

func newChangeBroadcaster() *changeBroadcaster {
	return &changeBroadcaster{subs: make(map[uint64]chan ChangeEvent)}
}

// Subscribe registers a buffered event channel that closes once ctx ends. An
// already-cancelled context yields a closed channel immediately.
func (b *changeBroadcaster) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ch := make(chan ChangeEvent, 1)
	if ctx.Err() != nil {
		close(ch)
		return ch, nil
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(id)
	}()

	return ch, nil
}

func (b *changeBroadcaster) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(ch)
}

// Broadcast delivers evt to every live subscriber. Sends happen under the
// same mutex that guards unsubscribe, so a send can never race a close.
func (b *changeBroadcaster) Broadcast(evt ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
