package ports

import "errors"

var (
	// ErrNeedMoreInput means the encoder has no packet ready yet.
	ErrNeedMoreInput = errors.New("encoder needs more input")

	// ErrEndOfStream means the encoder has been drained completely.
	ErrEndOfStream = errors.New("end of stream")

	// ErrCodecNotFound means no encoder is available for the requested codec.
	ErrCodecNotFound = errors.New("codec not found")

	// ErrUnsupportedContainer means no container matches the output file name.
	ErrUnsupportedContainer = errors.New("unsupported container")

	// ErrOutputUnavailable means the output file could not be opened for writing.
	ErrOutputUnavailable = errors.New("output unavailable")
)
