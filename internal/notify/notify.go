// Package notify provides a small observer registry with synchronous,
// in-order delivery and removable subscriptions.
package notify

import (
	"context"
	"strconv"
	"sync"

	"github.com/maniartech/signals"
)

// Token identifies one subscription. The zero Token identifies nothing.
type Token struct {
	field string
	id    uint64
}

// Field returns the name of the registry that issued the token.
func (t Token) Field() string {
	return t.field
}

// IsZero reports whether t was never issued.
func (t Token) IsZero() bool {
	return t.id == 0
}

// Registry fans a value out to its listeners in registration order.
// Listeners run on the goroutine calling Emit and their panics are not recovered.
// A listener must not add or remove subscriptions on the registry that is calling it.
type Registry[T any] struct {
	field string
	sig   signals.Signal[T]

	mu       sync.Mutex
	nextID   uint64
	ids      map[uint64]struct{}
	emitting bool
}

// NewRegistry returns an empty registry for the named field.
func NewRegistry[T any](field string) *Registry[T] {
	return &Registry[T]{
		field: field,
		sig:   signals.NewSync[T](),
		ids:   make(map[uint64]struct{}),
	}
}

// Field returns the field name the registry was created for.
func (r *Registry[T]) Field() string {
	return r.field
}

// Add subscribes fn and returns a token for removing it again.
func (r *Registry[T]) Add(fn func(T)) Token {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.ids[id] = struct{}{}
	r.mu.Unlock()

	r.sig.AddListener(func(_ context.Context, v T) {
		fn(v)
	}, listenerKey(id))
	return Token{field: r.field, id: id}
}

// Remove unsubscribes the listener behind tok. It reports false when the
// token belongs to another registry or was already removed.
func (r *Registry[T]) Remove(tok Token) bool {
	if tok.field != r.field || tok.IsZero() {
		return false
	}
	r.mu.Lock()
	_, ok := r.ids[tok.id]
	delete(r.ids, tok.id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	r.sig.RemoveListener(listenerKey(tok.id))
	return true
}

// Len returns the number of subscribed listeners.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// Emitting reports whether a fan-out is in progress. Writers use it to
// refuse changes coming from inside one of their own listeners.
func (r *Registry[T]) Emitting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emitting
}

// Emit calls every listener with v. A nested Emit from inside a listener is
// refused and reports false.
func (r *Registry[T]) Emit(v T) bool {
	r.mu.Lock()
	if r.emitting {
		r.mu.Unlock()
		return false
	}
	r.emitting = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.emitting = false
		r.mu.Unlock()
	}()
	r.sig.Emit(context.Background(), v)
	return true
}

func listenerKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}
