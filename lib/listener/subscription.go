package listener

import "sync"

// Subscription is handed to the caller of a registration.
// Cancel removes exactly that registration and is idempotent.
type Subscription struct {
	id     string
	once   sync.Once
	cancel func()
}

// NewSubscription creates a subscription that runs cancel at most once
func NewSubscription(id string, cancel func()) *Subscription {
	return &Subscription{id: id, cancel: cancel}
}

// ID returns the unique id of the registration
func (s *Subscription) ID() string {
	return s.id
}

// Cancel removes the registration. Calling it more than once has no effect.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
