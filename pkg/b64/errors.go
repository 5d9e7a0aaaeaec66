package b64

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLength is returned when the input to decode is not a multiple
	// of 4 bytes long.
	ErrInvalidLength = errors.New("base64: input length is not a multiple of 4")

	// ErrInvalidCharacter is returned when the input contains a byte that is
	// neither in the alphabet nor the padding character.
	ErrInvalidCharacter = errors.New("base64: invalid character")

	// ErrPaddingViolation is returned when an alphabet character follows the
	// first padding character.
	ErrPaddingViolation = errors.New("base64: data after padding")

	// ErrShortBuffer is returned when the destination buffer is smaller than
	// EncodedLen or DecodedLen requires.
	ErrShortBuffer = errors.New("base64: destination buffer too small")
)

// DecodeError describes where decoding failed. It unwraps to one of the
// sentinel errors above.
type DecodeError struct {
	Kind   error
	Offset int  // index of the offending byte, or the input length for ErrInvalidLength
	Char   byte // offending byte; zero for length errors
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case ErrInvalidLength:
		return fmt.Sprintf("%v (got %d)", e.Kind, e.Offset)
	case ErrShortBuffer:
		return fmt.Sprintf("%v (need %d)", e.Kind, e.Offset)
	}
	return fmt.Sprintf("%v %q at offset %d", e.Kind, e.Char, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}
