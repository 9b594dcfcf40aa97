package board

import "sync"

// Subscription is a scoped listener registration. Closing it releases the
// listener; Close is idempotent so every exit path, including error paths,
// can release unconditionally.
type Subscription struct {
	once    sync.Once
	release func()
}

// Close releases the subscription.
func (s *Subscription) Close() {
	s.once.Do(s.release)
}
