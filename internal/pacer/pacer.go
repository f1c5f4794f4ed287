// Package pacer reveals an already-computed string to the presentation
// layer at a throttled rate. The pacer is fully decoupled from generation:
// it only ever starts from a final string and can be cleared mid-reveal
// without leaving a timer behind.
package pacer

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"fuoco/internal/logging"
)

// ErrEmptyText rejects starting a reveal without a final string.
var ErrEmptyText = errors.New("pacer needs a final string to reveal")

// Pacer reveals text rune by rune on a fixed-interval timer. The interval
// is randomized once per message within [MinInterval, MaxInterval] so the
// cadence is not mechanically uniform across messages.
type Pacer struct {
	minInterval time.Duration
	maxInterval time.Duration

	mu     sync.Mutex
	cancel chan struct{} // non-nil while revealing
	rng    *rand.Rand
}

// New creates a pacer with the given interval band. Nonsensical bands fall
// back to a sane default.
func New(minInterval, maxInterval time.Duration) *Pacer {
	if minInterval <= 0 {
		minInterval = 18 * time.Millisecond
	}
	if maxInterval < minInterval {
		maxInterval = minInterval
	}
	return &Pacer{
		minInterval: minInterval,
		maxInterval: maxInterval,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins revealing final. onChar receives the revealed prefix after
// every step; onDone receives the fully revealed text once. Starting while
// a reveal is in progress clears the previous one first (its onDone never
// fires). Both callbacks may be nil.
func (p *Pacer) Start(final string, onChar func(revealed string), onDone func(revealed string)) error {
	if final == "" {
		return ErrEmptyText
	}

	p.mu.Lock()
	if p.cancel != nil {
		close(p.cancel)
	}
	cancel := make(chan struct{})
	p.cancel = cancel
	interval := p.minInterval
	if p.maxInterval > p.minInterval {
		interval += time.Duration(p.rng.Int63n(int64(p.maxInterval - p.minInterval)))
	}
	p.mu.Unlock()

	logging.PacerDebug("revealing %d bytes at %v/rune", len(final), interval)

	go p.reveal(final, interval, cancel, onChar, onDone)
	return nil
}

func (p *Pacer) reveal(final string, interval time.Duration, cancel chan struct{}, onChar, onDone func(string)) {
	runes := []rune(final)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 1; i <= len(runes); i++ {
		select {
		case <-cancel:
			logging.PacerDebug("cleared after %d/%d runes", i-1, len(runes))
			return
		case <-ticker.C:
		}
		if onChar != nil {
			onChar(string(runes[:i]))
		}
	}

	// Detach before the completion callback so a Clear from inside onDone
	// is a no-op rather than a self-cancel.
	p.mu.Lock()
	if p.cancel == cancel {
		p.cancel = nil
	}
	p.mu.Unlock()

	if onDone != nil {
		onDone(final)
	}
}

// Clear stops a reveal in progress. It is idempotent, safe to call when
// nothing is revealing, and safe to call even if a generation result
// arrives later; the late result is simply never revealed.
func (p *Pacer) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		close(p.cancel)
		p.cancel = nil
	}
}

// Revealing reports whether a reveal is currently in progress.
func (p *Pacer) Revealing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}
