package broadcast

import (
	"log/slog"
	"sync"

	"github.com/cleroux/pi-xmas-hat/internal/adapter/metrics"
)

// MailboxSize is the number of undelivered messages a subscriber may hold
// before it is evicted.
const MailboxSize = 20

// Message is one announced payload. An empty Event means the message carries
// no event name.
type Message struct {
	Event string
	Data  string
}

// Subscription is a live subscriber's mailbox.
type Subscription struct {
	mailbox   chan Message
	done      chan struct{}
	closeOnce sync.Once
}

func newSubscription() *Subscription {
	return &Subscription{
		mailbox: make(chan Message, MailboxSize),
		done:    make(chan struct{}),
	}
}

// Messages returns the mailbox. It is never closed; select on Done as well.
func (s *Subscription) Messages() <-chan Message {
	return s.mailbox
}

// Done is closed once the subscription has been evicted or unsubscribed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Broadcaster fans announced messages out to every live subscriber.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers []*Subscription
	closed      bool
	metrics     *metrics.BroadcastMetrics
}

// NewBroadcaster creates an empty broadcaster. m may be nil.
func NewBroadcaster(m *metrics.BroadcastMetrics) *Broadcaster {
	return &Broadcaster{metrics: m}
}

// Subscribe registers a new mailbox and returns it immediately. After Close
// the returned subscription is already done.
func (b *Broadcaster) Subscribe() *Subscription {
	sub := newSubscription()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.close()
		return sub
	}
	b.subscribers = append(b.subscribers, sub)
	count := len(b.subscribers)
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.Subscribers.Set(float64(count))
	}
	slog.Debug("Subscriber added", "subscribers", count)
	return sub
}

// Unsubscribe removes sub from the live set. Unknown or already evicted
// subscriptions are ignored.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	for i, s := range b.subscribers {
		if s == sub {
			b.removeLocked(i)
			break
		}
	}
	count := len(b.subscribers)
	b.mu.Unlock()

	sub.close()

	if b.metrics != nil {
		b.metrics.Subscribers.Set(float64(count))
	}
}

// Announce enqueues msg to every subscriber without blocking. Subscribers
// whose mailbox is full are evicted; the message is not retried for them.
func (b *Broadcaster) Announce(msg Message) {
	b.mu.Lock()

	evicted := 0
	delivered := 0
	// Backward walk: removing index i only shifts entries already visited.
	for i := len(b.subscribers) - 1; i >= 0; i-- {
		sub := b.subscribers[i]
		select {
		case sub.mailbox <- msg:
			delivered++
		default:
			b.removeLocked(i)
			sub.close()
			evicted++
		}
	}
	count := len(b.subscribers)
	b.mu.Unlock()

	if evicted > 0 {
		slog.Debug("Evicted full subscribers", "evicted", evicted, "remaining", count)
	}
	if b.metrics != nil {
		b.metrics.Announces.Inc()
		b.metrics.Deliveries.Add(float64(delivered))
		b.metrics.Evictions.Add(float64(evicted))
		b.metrics.Subscribers.Set(float64(count))
	}
}

// Count returns the number of live subscribers.
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close evicts every subscriber and refuses new ones. Streams watching Done
// return.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	subs := b.subscribers
	b.subscribers = nil
	b.closed = true
	b.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
	if b.metrics != nil {
		b.metrics.Subscribers.Set(0)
	}
	slog.Info("Broadcaster closed", "disconnected_subscribers", len(subs))
}

func (b *Broadcaster) removeLocked(i int) {
	last := len(b.subscribers) - 1
	copy(b.subscribers[i:], b.subscribers[i+1:])
	b.subscribers[last] = nil
	b.subscribers = b.subscribers[:last]
}
