package iteratee

// Kind discriminates the three shapes of an Input.
type Kind uint8

const (
	// KindElem carries one value.
	KindElem Kind = iota
	// KindEOF marks the normal end of the stream.
	KindEOF
	// KindError marks the abnormal end of the stream.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindElem:
		return "elem"
	case KindEOF:
		return "eof"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Input is the unit delivered from an enumerator to an iteratee.
// EOF and Error are terminal: nothing follows them.
type Input[E any] struct {
	kind  Kind
	value E
	cause error
}

// Elem wraps v as an element input.
func Elem[E any](v E) Input[E] {
	return Input[E]{kind: KindElem, value: v}
}

// EOF returns the end-of-stream input.
func EOF[E any]() Input[E] {
	return Input[E]{kind: KindEOF}
}

// Err returns a failure input carrying cause.
func Err[E any](cause error) Input[E] {
	return Input[E]{kind: KindError, cause: cause}
}

// Kind returns the input's discriminator.
func (in Input[E]) Kind() Kind { return in.kind }

// Value returns the element; the zero value for EOF and Error.
func (in Input[E]) Value() E { return in.value }

// Cause returns the failure carried by an Error input, nil otherwise.
func (in Input[E]) Cause() error { return in.cause }

// IsTerminal reports whether in is EOF or Error.
func (in Input[E]) IsTerminal() bool { return in.kind != KindElem }

// retag carries a terminal input over to another element type.
func retag[I, O any](in Input[I]) Input[O] {
	return Input[O]{kind: in.kind, cause: in.cause}
}
