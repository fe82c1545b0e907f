package memory

import (
	"context"
	"sync"

	"petadopt/internal/domain/repository"
)

// listeners holds the callbacks of one watched target. Callbacks run on the writer's
// goroutine after the store lock has been released.
type listeners[T any] struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(T, error)
}

func (l *listeners[T]) add(fn func(T, error)) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fns == nil {
		l.fns = make(map[int]func(T, error))
	}
	l.nextID++
	l.fns[l.nextID] = fn
	return l.nextID
}

func (l *listeners[T]) remove(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.fns, id)
}

func (l *listeners[T]) snapshot() []func(T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]func(T, error), 0, len(l.fns))
	for id := 1; id <= l.nextID; id++ {
		if fn, ok := l.fns[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (l *listeners[T]) emit(value func() T) {
	for _, fn := range l.snapshot() {
		fn(value(), nil)
	}
}

// fail delivers err and drops every listener, since a failed listener receives nothing more.
func (l *listeners[T]) fail(err error) {
	fns := l.snapshot()

	l.mu.Lock()
	l.fns = nil
	l.mu.Unlock()

	for _, fn := range fns {
		fn(*new(T), err)
	}
}

// subscribe registers fn and returns a subscription that also ends when ctx is done.
func (l *listeners[T]) subscribe(ctx context.Context, fn func(T, error)) repository.Subscription {
	id := l.add(fn)

	var once sync.Once
	stop := func() { once.Do(func() { l.remove(id) }) }

	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			stop()
		}()
	}
	return repository.SubscriptionFunc(stop)
}

func (l *listeners[T]) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}

type keyedListeners[T any] struct {
	mu    sync.Mutex
	byKey map[string]*listeners[T]
}

func (k *keyedListeners[T]) get(key string) *listeners[T] {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.byKey == nil {
		k.byKey = make(map[string]*listeners[T])
	}
	l, ok := k.byKey[key]
	if !ok {
		l = &listeners[T]{}
		k.byKey[key] = l
	}
	return l
}

func (k *keyedListeners[T]) count() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	n := 0
	for _, l := range k.byKey {
		n += l.count()
	}
	return n
}
