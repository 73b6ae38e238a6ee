package output

import (
	"encoding/json"
	"sync"
	"sync/atomic"
)

// DefaultBuffer is how many messages a stream listener may lag behind
// before it starts losing them.
const DefaultBuffer = 64

// Broker fans game messages out to the SSE and WebSocket listeners of a
// community. A listener that falls behind loses messages; the game never
// waits on it.
type Broker struct {
	mu      sync.RWMutex
	buffer  int
	subs    map[CommunityID]map[chan []byte]struct{}
	dropped atomic.Uint64
}

// NewBroker returns a Broker whose listeners buffer up to buffer messages.
// A buffer of zero or less means DefaultBuffer.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{
		buffer: buffer,
		subs:   make(map[CommunityID]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded messages for the given community.
func (b *Broker) Subscribe(community CommunityID) chan []byte {
	ch := make(chan []byte, b.buffer)
	b.mu.Lock()
	if b.subs[community] == nil {
		b.subs[community] = make(map[chan []byte]struct{})
	}
	b.subs[community][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(community CommunityID, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[community], ch)
	if len(b.subs[community]) == 0 {
		delete(b.subs, community)
	}
	b.mu.Unlock()
}

// Publish implements Publisher. Messages for communities nobody listens
// to are not encoded.
func (b *Broker) Publish(msg Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := b.subs[msg.Community]
	if len(subs) == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for ch := range subs {
		select {
		case ch <- data:
		default:
			b.dropped.Add(1)
		}
	}
}

func (b *Broker) Subscribers(community CommunityID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[community])
}

// Dropped reports how many deliveries were lost to full listener buffers.
func (b *Broker) Dropped() uint64 {
	return b.dropped.Load()
}
