package state

import (
	"context"
	"sync"
	"time"
)

// poller runs fn on a fixed period until fn reports done or Stop is called.
// Stop cancels the context passed to fn, so in-flight requests abort, and
// blocks until the goroutine has exited: after Stop returns, fn will never
// run again.
type poller struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func startPoller(interval time.Duration, fn func(ctx context.Context) bool) *poller {
	ctx, cancel := context.WithCancel(context.Background())
	p := &poller{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if fn(ctx) {
					return
				}
			}
		}
	}()
	return p
}

func (p *poller) Stop() {
	p.once.Do(p.cancel)
	<-p.done
}

// stopped reports whether the goroutine has already exited, e.g. after fn
// reported done.
func (p *poller) stopped() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
