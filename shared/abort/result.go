package abort

// Result is the outcome of a pipeline stage: either a value or cancelled.
type Result[T any] struct {
	value T
	ok    bool
}

func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

func Cancelled[T any]() Result[T] {
	return Result[T]{}
}

func (r Result[T]) Get() (T, bool) {
	return r.value, r.ok
}

func (r Result[T]) IsCancelled() bool {
	return !r.ok
}

// Collapse applies transform to an Ok value and passes Cancelled through.
func Collapse[T, R any](r Result[T], transform func(T) R) Result[R] {
	v, ok := r.Get()
	if !ok {
		return Cancelled[R]()
	}
	return Ok(transform(v))
}

// Then runs next only when r is Ok.
func Then[T, R any](r Result[T], next func(T) Result[R]) Result[R] {
	v, ok := r.Get()
	if !ok {
		return Cancelled[R]()
	}
	return next(v)
}

// Finish converts a request's final result into what the caller sees:
// the token's reason when tripped, the value when present, otherwise
// no value and no error.
func Finish[T any](tok *Token, r Result[T]) (T, bool, error) {
	var zero T
	if tok.IsTripped() {
		return zero, false, tok.Reason()
	}
	v, ok := r.Get()
	if !ok {
		return zero, false, nil
	}
	return v, true, nil
}
