package object

// Opt is a nullable field value. The zero Opt is the null sentinel.
type Opt[T any] struct {
	v  T
	ok bool
}

// Some returns an Opt holding v.
func Some[T any](v T) Opt[T] { return Opt[T]{v: v, ok: true} }

// Null returns the null sentinel for T.
func Null[T any]() Opt[T] { return Opt[T]{} }

// IsNull reports whether o was never set.
func (o Opt[T]) IsNull() bool { return !o.ok }

// Get returns the value and whether it was set.
func (o Opt[T]) Get() (T, bool) { return o.v, o.ok }

// Or returns the value, or def when null.
func (o Opt[T]) Or(def T) T {
	if !o.ok {
		return def
	}
	return o.v
}

// FromPtr returns Some(*p), or null for a nil pointer.
func FromPtr[T any](p *T) Opt[T] {
	if p == nil {
		return Opt[T]{}
	}
	return Some(*p)
}
