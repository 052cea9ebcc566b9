package input

import "sync"

// Subscription is a handle returned by PubSub.Subscribe.
type Subscription struct {
	fn func(Event)
}

// PubSub broadcasts raw key events to all subscribers.
type PubSub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewPubSub() *PubSub {
	return &PubSub{subs: make(map[*Subscription]struct{})}
}

func (p *PubSub) Subscribe(fn func(Event)) *Subscription {
	s := &Subscription{fn: fn}
	p.mu.Lock()
	p.subs[s] = struct{}{}
	p.mu.Unlock()
	return s
}

// Unsubscribe removes s. It's a no-op if s isn't subscribed. Once Unsubscribe
// returned, s won't receive further events.
func (p *PubSub) Unsubscribe(s *Subscription) {
	if s == nil {
		return
	}
	p.mu.Lock()
	delete(p.subs, s)
	p.mu.Unlock()
}

// Publish calls every subscriber with ev in the caller's goroutine.
func (p *PubSub) Publish(ev Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for s := range p.subs {
		s.fn(ev)
	}
}

func (p *PubSub) Subscribers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}
