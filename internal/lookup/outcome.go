package lookup

// Outcome is the result of a lookup that is allowed to fail without
// aborting the caller: either a value or the reason there is none.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Ok reports whether the lookup produced a value
func (o Outcome[T]) Ok() bool {
	return o.Err == nil
}

// Succeeded wraps a value
func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Failed wraps an error
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{Err: err}
}

// ErrorString returns the failure message, or "" on success
func (o Outcome[T]) ErrorString() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
