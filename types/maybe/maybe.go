package maybe

// Maybe holds an optional value. The zero value is None.
type Maybe[T any] struct {
	value T
	ok    bool
}

func Some[T any](value T) Maybe[T] {
	return Maybe[T]{value: value, ok: true}
}

func None[T any]() Maybe[T] {
	return Maybe[T]{}
}

func (m Maybe[T]) IsValid() bool {
	return m.ok
}

// Value returns the zero value of T when m is None.
func (m Maybe[T]) Value() T {
	return m.value
}

func (m Maybe[T]) Get() (T, bool) {
	return m.value, m.ok
}

func (m Maybe[T]) ValueOrDefault(defaultValue T) T {
	if m.ok {
		return m.value
	}
	return defaultValue
}

// Map applies fn to the value of m, if any.
func Map[T, U any](m Maybe[T], fn func(T) U) Maybe[U] {
	if !m.ok {
		return None[U]()
	}
	return Some(fn(m.value))
}
