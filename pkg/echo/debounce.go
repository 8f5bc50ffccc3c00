package echo

import (
	"sync"
	"time"
)

// DefaultQuiescence is the coalescing window for live recounts, matching the
// edit-settle delay the engine's frontends use.
const DefaultQuiescence = 250 * time.Millisecond

// Recounter coalesces rapid recount triggers: successive Trigger calls within
// the quiescence window collapse into a single RecountLive over the latest
// inputs. A scan whose inputs were superseded while it ran is never delivered,
// so the callback only ever sees the last-issued request's occurrences.
type Recounter struct {
	window   time.Duration
	deliver  func(phrase string, occurrences []Occurrence)
	mu       sync.Mutex
	timer    *time.Timer
	text     string
	phrase   string
	sequence uint64
	stopped  bool
}

// NewRecounter builds a coalescing recounter delivering to the given callback.
// A non-positive window falls back to DefaultQuiescence.
func NewRecounter(window time.Duration, deliver func(phrase string, occurrences []Occurrence)) *Recounter {
	if window <= 0 {
		window = DefaultQuiescence
	}
	return &Recounter{window: window, deliver: deliver}
}

// Trigger records the latest inputs and restarts the quiescence window.
func (r *Recounter) Trigger(currentText, phrase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.text = currentText
	r.phrase = phrase
	r.sequence++

	if r.timer != nil {
		r.timer.Stop()
	}
	seq := r.sequence
	r.timer = time.AfterFunc(r.window, func() { r.fire(seq) })
}

// fire runs the scan for the given sequence and delivers unless superseded.
func (r *Recounter) fire(seq uint64) {
	r.mu.Lock()
	if r.stopped || seq != r.sequence {
		r.mu.Unlock()
		return
	}
	text, phrase := r.text, r.phrase
	r.mu.Unlock()

	occurrences := RecountLive(text, phrase)

	r.mu.Lock()
	stale := r.stopped || seq != r.sequence
	r.mu.Unlock()
	if stale {
		return
	}
	r.deliver(phrase, occurrences)
}

// Flush runs any pending recount immediately instead of waiting out the
// window. No-op when nothing is pending.
func (r *Recounter) Flush() {
	r.mu.Lock()
	if r.stopped || r.timer == nil || !r.timer.Stop() {
		r.mu.Unlock()
		return
	}
	seq := r.sequence
	r.mu.Unlock()
	r.fire(seq)
}

// Stop discards any pending recount; further triggers are ignored.
func (r *Recounter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
	}
}
