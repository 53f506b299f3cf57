package registration

import "sync"

// DefaultFeedSize is how many registrations the feed keeps.
const DefaultFeedSize = 50

// Feed holds the most recent registrations, newest first.
// Entries past the cap fall off the end, and a payment is only listed once.
type Feed struct {
	mu      sync.RWMutex
	max     int
	gen     uint64
	entries []Registration
	// seen maps each listed payment to the generation it was prepended in,
	// zero for entries loaded by Replace.
	seen map[int64]uint64
}

func NewFeed(max int) *Feed {
	if max < 1 {
		max = DefaultFeedSize
	}
	return &Feed{max: max, seen: make(map[int64]uint64)}
}

// Mark returns the current generation. Pass it to Replace to keep
// entries prepended after this point.
func (f *Feed) Mark() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.gen
}

// Prepend adds r at the head. It reports false if the payment is already listed.
func (f *Feed) Prepend(r Registration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, dup := f.seen[r.PaymentID]; dup {
		return false
	}

	f.gen++
	f.entries = append([]Registration{r}, f.entries...)
	f.seen[r.PaymentID] = f.gen

	for len(f.entries) > f.max {
		dropped := f.entries[len(f.entries)-1]
		delete(f.seen, dropped.PaymentID)
		f.entries = f.entries[:len(f.entries)-1]
	}
	return true
}

// Replace swaps the contents for entries, which must already be newest first.
// Entries prepended after since stay at the head, so a registration that
// arrives while entries were being fetched is not lost.
func (f *Feed) Replace(since uint64, entries []*Registration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make([]Registration, 0, f.max)
	seen := make(map[int64]uint64, len(entries))
	for _, r := range f.entries {
		if gen := f.seen[r.PaymentID]; gen > since {
			next = append(next, r)
			seen[r.PaymentID] = gen
		}
	}
	for _, r := range entries {
		if len(next) == f.max {
			break
		}
		if _, dup := seen[r.PaymentID]; dup {
			continue
		}
		next = append(next, *r)
		seen[r.PaymentID] = 0
	}

	f.entries = next
	f.seen = seen
}

// Snapshot returns a copy of the feed, newest first.
func (f *Feed) Snapshot() []Registration {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Registration, len(f.entries))
	copy(out, f.entries)
	return out
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

func (f *Feed) Cap() int {
	return f.max
}
