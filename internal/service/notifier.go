package service

import "sync"

// ScoreNotifier tells observers that a session's round state changed.
// Notifications carry no payload: observers re-read the score from the
// store, so they never race against a stale event body. Late subscribers
// get nothing retroactively and must pull current state on subscribe.
type ScoreNotifier struct {
	mu        sync.RWMutex
	nextID    int
	observers map[int]func(sessionID string)
}

// NewScoreNotifier creates an empty notifier. It is owned by whoever wires
// the round service and passed by reference to consumers; there is no
// process-wide instance.
func NewScoreNotifier() *ScoreNotifier {
	return &ScoreNotifier{observers: make(map[int]func(sessionID string))}
}

// Subscribe registers fn and returns a function that unregisters it.
func (n *ScoreNotifier) Subscribe(fn func(sessionID string)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.observers[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.observers, id)
		n.mu.Unlock()
	}
}

// Notify synchronously invokes every observer registered at call time.
// Fire-and-forget: there is no delivery guarantee beyond that.
func (n *ScoreNotifier) Notify(sessionID string) {
	n.mu.RLock()
	fns := make([]func(string), 0, len(n.observers))
	for _, fn := range n.observers {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn(sessionID)
	}
}
