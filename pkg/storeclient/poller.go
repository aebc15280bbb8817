package storeclient

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Poller drives badge counts and list views: re-fetch on a fixed interval
// plus on demand (regain of foreground). Polls may overlap; each request is
// sequence-stamped and a response is dropped if a newer request was issued
// after it started, so late arrivals never clobber fresher state.
type Poller[T any] struct {
	interval time.Duration
	fetch    func(ctx context.Context) (T, error)
	onUpdate func(T)
	onError  func(error)

	kick chan struct{}
	seq  atomic.Uint64
	mu   sync.Mutex
}

func NewPoller[T any](interval time.Duration, fetch func(ctx context.Context) (T, error), onUpdate func(T)) *Poller[T] {
	return &Poller[T]{
		interval: interval,
		fetch:    fetch,
		onUpdate: onUpdate,
		kick:     make(chan struct{}, 1),
	}
}

// OnError installs an optional error callback; poll errors are otherwise
// dropped, since the next tick retries anyway.
func (p *Poller[T]) OnError(fn func(error)) {
	p.onError = fn
}

// Kick requests an immediate poll, e.g. when the app returns to the
// foreground. Never blocks; a pending kick is enough.
func (p *Poller[T]) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run polls until the context is cancelled. It fetches once immediately.
func (p *Poller[T]) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		case <-p.kick:
			p.poll(ctx)
		}
	}
}

func (p *Poller[T]) poll(ctx context.Context) {
	id := p.seq.Add(1)

	go func() {
		v, err := p.fetch(ctx)

		p.mu.Lock()
		defer p.mu.Unlock()

		// Stale: a newer poll for this resource started after this one.
		if p.seq.Load() != id {
			return
		}

		if err != nil {
			if p.onError != nil {
				p.onError(err)
			}
			return
		}
		p.onUpdate(v)
	}()
}
