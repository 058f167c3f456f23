package caret

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// prober is what the Locator drives: the probe chain on Windows, a stub
// elsewhere, fakes in tests.
type prober interface {
	Locate() (Position, bool)
}

// Locator bounds probe-chain evaluation in wall-clock time. Native
// accessibility queries can stall when the target process is unresponsive,
// so every chain run happens on a dedicated worker and the caller waits at
// most the configured timeout; expiry counts as "not found".
//
// The worker is also where platform thread state lives (COM apartment
// initialization on Windows), hence the locked, long-lived goroutine rather
// than a goroutine per call.
type Locator struct {
	requests chan chan result
	timeout  time.Duration
	log      zerolog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

type result struct {
	pos Position
	ok  bool
}

// NewLocator starts a locator worker around p. setup, if non-nil, runs on
// the worker before any probing and returns a teardown func.
func NewLocator(p prober, timeout time.Duration, log zerolog.Logger, setup func() func()) *Locator {
	l := &Locator{
		requests: make(chan chan result),
		timeout:  timeout,
		log:      log,
		done:     make(chan struct{}),
	}
	go l.work(p, setup)
	return l
}

func (l *Locator) work(p prober, setup func() func()) {
	if setup != nil {
		teardown := setup()
		if teardown != nil {
			defer teardown()
		}
	}
	for {
		select {
		case <-l.done:
			return
		case reply := <-l.requests:
			pos, ok := p.Locate()
			reply <- result{pos, ok}
		}
	}
}

// Locate returns the current caret position, or false when no method found
// one or the probe chain did not answer within the timeout. It never blocks
// longer than the timeout and never returns an error.
func (l *Locator) Locate() (Position, bool) {
	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	// Buffered so a worker answering after our deadline does not block
	// forever on a reply nobody reads.
	reply := make(chan result, 1)

	select {
	case l.requests <- reply:
	case <-timer.C:
		l.log.Debug().Msg("Caret locator busy, treating as not found")
		return Position{}, false
	case <-l.done:
		return Position{}, false
	}

	select {
	case r := <-reply:
		return r.pos, r.ok
	case <-timer.C:
		l.log.Debug().Dur("timeout", l.timeout).Msg("Caret probe chain timed out")
		return Position{}, false
	case <-l.done:
		return Position{}, false
	}
}

// Close stops the worker. Pending Locate calls return not-found.
func (l *Locator) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}
