package domain

// Maybe is an explicit present/absent value for joined projections, used
// where a hydration call may have failed or not resolved yet. It replaces
// the nil-pointer convention so absence is always deliberate.
type Maybe[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Maybe[T] {
	return Maybe[T]{value: v, ok: true}
}

func None[T any]() Maybe[T] {
	return Maybe[T]{}
}

func (m Maybe[T]) Get() (T, bool) {
	return m.value, m.ok
}

func (m Maybe[T]) Present() bool {
	return m.ok
}

// Or returns the value or the given fallback when absent.
func (m Maybe[T]) Or(fallback T) T {
	if m.ok {
		return m.value
	}
	return fallback
}
