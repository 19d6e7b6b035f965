// Package observer implements a small generic publish/subscribe subject.
//
// A Subject delivers each published value to every registered observer in
// registration order. Publishing iterates over a snapshot of the observer
// list, so observers may subscribe or unsubscribe from inside a callback
// without corrupting the iteration. An observer removed during a publish is
// not called for the rest of that publish.
package observer

import "sync"

// Observer receives published values.
type Observer[T any] interface {
	Update(value T)
}

// Func adapts an ordinary function to the Observer interface.
type Func[T any] func(value T)

// Update calls f(value).
func (f Func[T]) Update(value T) { f(value) }

// Unsubscribe removes a previously registered observer. Calling it more than
// once is a no-op.
type Unsubscribe func()

type subscription[T any] struct {
	observer Observer[T]
	mu       sync.Mutex
	removed  bool
}

func (s *subscription[T]) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.removed
}

// Subject keeps an ordered list of observers.
//
// The clone function, if set, is applied once per observer before delivery
// so that no observer can mutate the value another observer sees.
type Subject[T any] struct {
	mu    sync.RWMutex
	subs  []*subscription[T]
	clone func(T) T
}

// NewSubject creates a subject. clone may be nil when T is immutable.
func NewSubject[T any](clone func(T) T) *Subject[T] {
	return &Subject[T]{clone: clone}
}

// Register adds an observer at the end of the list and returns the function
// that removes it. A nil observer is ignored.
func (s *Subject[T]) Register(o Observer[T]) Unsubscribe {
	if o == nil {
		return func() {}
	}
	sub := &subscription[T]{observer: o}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.mu.Lock()
			sub.removed = true
			sub.mu.Unlock()
			s.remove(sub)
		})
	}
}

// Subscribe is Register for a plain function.
func (s *Subject[T]) Subscribe(fn func(T)) Unsubscribe {
	if fn == nil {
		return func() {}
	}
	return s.Register(Func[T](fn))
}

func (s *Subject[T]) remove(target *subscription[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub == target {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered observers.
func (s *Subject[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Freeze returns a function that publishes to the observers registered at
// the time of the call. Observers registered afterwards are not reached by
// the returned function.
func (s *Subject[T]) Freeze() func(T) {
	s.mu.RLock()
	snapshot := make([]*subscription[T], len(s.subs))
	copy(snapshot, s.subs)
	s.mu.RUnlock()

	return func(value T) {
		for _, sub := range snapshot {
			if !sub.active() {
				continue
			}
			v := value
			if s.clone != nil {
				v = s.clone(value)
			}
			sub.observer.Update(v)
		}
	}
}

// Notify publishes value to every currently registered observer.
func (s *Subject[T]) Notify(value T) {
	s.Freeze()(value)
}
