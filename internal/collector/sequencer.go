package collector

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrSuperseded is returned for work whose selection was replaced by a newer one
// before it completed.
var ErrSuperseded = errors.New("superseded by a newer request")

// Sequencer hands out one generation per key. Starting a new generation
// cancels the context of the previous one, so only the latest selection of a
// viewer can publish its result.
type Sequencer struct {
	mu      sync.Mutex
	current map[string]*Ticket
	next    uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{current: make(map[string]*Ticket)}
}

// Ticket identifies one generation of a key.
type Ticket struct {
	seq    *Sequencer
	key    string
	gen    uint64
	cancel context.CancelFunc
}

// Begin starts a new generation for key and returns a context that is cancelled
// when the generation is superseded or released.
func (s *Sequencer) Begin(ctx context.Context, key string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.current[key]; ok {
		prev.cancel()
	}
	s.next++
	t := &Ticket{seq: s, key: key, gen: s.next, cancel: cancel}
	s.current[key] = t

	return ctx, t
}

// Current reports whether t is still the latest generation of its key.
func (t *Ticket) Current() bool {
	t.seq.mu.Lock()
	defer t.seq.mu.Unlock()
	return t.seq.current[t.key] == t
}

// Generation is the sequence number of the ticket.
func (t *Ticket) Generation() uint64 {
	return t.gen
}

// Done releases the ticket. A newer generation of the same key is untouched.
func (t *Ticket) Done() {
	t.seq.mu.Lock()
	defer t.seq.mu.Unlock()

	if t.seq.current[t.key] == t {
		delete(t.seq.current, t.key)
	}
	t.cancel()
}

// Active is the number of keys with an in-flight generation.
func (s *Sequencer) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.current)
}
