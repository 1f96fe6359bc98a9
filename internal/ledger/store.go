package ledger

import (
	"sync"

	"github.com/mannapay/mannapay/pkg/logger"
)

// Listener is called after every dispatched action with the resulting state.
// Listeners must not dispatch synchronously.
type Listener func(action Action, state State)

// Store holds the ledger state and serializes transitions.
type Store struct {
	mu    sync.Mutex
	state State

	listeners map[int]Listener
	order     []int
	nextID    int
	ticket    uint64

	// turn admits listener rounds in ticket order; served is guarded by turn.L.
	turn   *sync.Cond
	served uint64

	logger *logger.Logger
}

// NewStore returns a store starting from InitialState.
func NewStore(log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{
		state:     InitialState(),
		listeners: make(map[int]Listener),
		turn:      sync.NewCond(&sync.Mutex{}),
		logger:    log.Named("ledger"),
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies action and returns the new state.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	next, applied := reduce(s.state, action)
	s.state = next
	ticket := s.ticket
	s.ticket++
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.turn.L.Lock()
	for s.served != ticket {
		s.turn.Wait()
	}
	s.turn.L.Unlock()
	defer s.release()

	s.logAction(action, applied, next)
	for _, l := range listeners {
		l(action, next)
	}
	return next
}

// release hands the listener turn to the next dispatch.
func (s *Store) release() {
	s.turn.L.Lock()
	s.served++
	s.turn.L.Unlock()
	s.turn.Broadcast()
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// must be called with s.mu held
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.listeners[id])
	}
	return out
}

func (s *Store) logAction(action Action, applied bool, next State) {
	if !applied {
		s.logger.Debugw("action ignored", "action", action.Name())
		return
	}
	if a, ok := action.(AddSubscription); ok && next.Wallet == nil {
		s.logger.Warnw("subscription added without a wallet, balance not debited",
			"subscription", a.Subscription.ID)
		return
	}
	s.logger.Debugw("action applied", "action", action.Name())
}
