package system

import (
	"reflect"
	"slices"
)

// Binder is the untyped view of a Runner used by Manager during setup.
type Binder interface {
	// Name returns the runner (hook) name.
	Name() string
	// Bind subscribes sys under name if it implements the runner's hook and
	// reports whether it did.
	Bind(name string, sys any) bool
	// Len returns the number of subscribers.
	Len() int
	// Clear drops every subscriber.
	Clear()
}

type subscriber[H any] struct {
	name string
	sys  H
}

// Runner is an ordered broadcast channel for one lifecycle hook.
//
// H is the capability interface subscribers implement and A the argument the
// hook receives. Subscribers must be comparable (typically pointers); a value
// of an incomparable type is never considered already subscribed.
type Runner[H any, A any] struct {
	name   string
	invoke func(H, A)
	items  []subscriber[H]
}

// NewRunner creates an empty runner. invoke calls the hook on one subscriber.
func NewRunner[H any, A any](name string, invoke func(H, A)) *Runner[H, A] {
	return &Runner[H, A]{name: name, invoke: invoke}
}

// Name returns the runner name.
func (r *Runner[H, A]) Name() string { return r.name }

// Len returns the number of subscribers.
func (r *Runner[H, A]) Len() int { return len(r.items) }

// Empty reports whether the runner has no subscribers.
func (r *Runner[H, A]) Empty() bool { return len(r.items) == 0 }

// Subscribe appends sys under name unless it is already subscribed.
func (r *Runner[H, A]) Subscribe(name string, sys H) {
	if r.index(sys) >= 0 {
		return
	}
	r.items = append(r.items, subscriber[H]{name: name, sys: sys})
}

// Unsubscribe removes sys. It is a no-op when sys is not subscribed.
func (r *Runner[H, A]) Unsubscribe(sys H) {
	if i := r.index(sys); i >= 0 {
		// Copy on write so a snapshot taken by an in-flight Emit is unaffected.
		r.items = slices.Delete(slices.Clone(r.items), i, i+1)
	}
}

// Contains reports whether sys is subscribed.
func (r *Runner[H, A]) Contains(sys H) bool {
	return r.index(sys) >= 0
}

// Subscribers returns the subscribers in emission order.
func (r *Runner[H, A]) Subscribers() []H {
	out := make([]H, len(r.items))
	for i, it := range r.items {
		out[i] = it.sys
	}
	return out
}

// Names returns the registered names of the subscribers in emission order.
func (r *Runner[H, A]) Names() []string {
	out := make([]string, len(r.items))
	for i, it := range r.items {
		out[i] = it.name
	}
	return out
}

// Emit calls the hook on every subscriber in order with arg.
// Subscribers added or removed during the emission do not affect it.
func (r *Runner[H, A]) Emit(arg A) {
	for _, it := range r.items {
		r.invoke(it.sys, arg)
	}
}

// EmitWithCustomOptions calls the hook on every subscriber with the entry
// keyed by its registered name. Subscribers without an entry receive the zero
// value of A, which for pointer and interface arguments means "no argument".
func (r *Runner[H, A]) EmitWithCustomOptions(opts map[string]A) {
	for _, it := range r.items {
		r.invoke(it.sys, opts[it.name])
	}
}

// Reverse reverses the subscriber order in place.
func (r *Runner[H, A]) Reverse() {
	items := slices.Clone(r.items)
	slices.Reverse(items)
	r.items = items
}

// Clear drops every subscriber.
func (r *Runner[H, A]) Clear() {
	r.items = nil
}

// Bind subscribes sys under name when it implements H.
func (r *Runner[H, A]) Bind(name string, sys any) bool {
	h, ok := sys.(H)
	if !ok {
		return false
	}
	r.Subscribe(name, h)
	return true
}

func (r *Runner[H, A]) index(sys H) int {
	if !isComparable(sys) {
		return -1
	}
	for i, it := range r.items {
		if any(it.sys) == any(sys) {
			return i
		}
	}
	return -1
}

func isComparable(v any) bool {
	t := reflect.TypeOf(v)
	return t != nil && t.Comparable()
}
