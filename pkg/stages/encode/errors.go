package encode

import "errors"

var (
	// ErrInvalidState is returned when a session method is called in the wrong state.
	ErrInvalidState = errors.New("encode: invalid session state")

	// ErrNonMonotonicPTS is returned when a frame's PTS is not the next expected index.
	ErrNonMonotonicPTS = errors.New("encode: frame pts out of sequence")

	// ErrInvalidParams is returned for unusable session parameters.
	ErrInvalidParams = errors.New("encode: invalid parameters")
)
