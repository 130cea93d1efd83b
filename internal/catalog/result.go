package catalog

// ErrorKind classifies resolver failures so callers can branch without
// string-matching.
type ErrorKind string

const (
	ErrNone        ErrorKind = ""
	ErrNotFound    ErrorKind = "not_found"
	ErrUnavailable ErrorKind = "unavailable"
	ErrDecode      ErrorKind = "decode"
)

// Result is the discriminated outcome of a resolver call: exactly one of
// Data (OK=true) or Err (OK=false) is meaningful.
type Result[T any] struct {
	OK   bool
	Data T
	Err  ErrorKind
}

func Ok[T any](data T) Result[T] {
	return Result[T]{OK: true, Data: data}
}

func Fail[T any](kind ErrorKind) Result[T] {
	return Result[T]{Err: kind}
}
