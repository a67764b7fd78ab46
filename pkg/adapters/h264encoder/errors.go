package h264encoder

import "errors"

var (
	// ErrNotOpened is returned when encoder methods are called before Open or after Close.
	ErrNotOpened = errors.New("h264encoder: encoder not opened")

	// ErrAlreadyFlushed is returned when frames are sent after the flush.
	ErrAlreadyFlushed = errors.New("h264encoder: encoder already flushed")

	// ErrEncodingFailed is returned when the ffmpeg process fails mid-stream.
	ErrEncodingFailed = errors.New("h264encoder: encoding failed")

	// ErrInvalidParams is returned when codec parameters cannot be honoured.
	ErrInvalidParams = errors.New("h264encoder: invalid codec parameters")

	// ErrFrameMismatch is returned when a frame does not match the opened stream.
	ErrFrameMismatch = errors.New("h264encoder: frame does not match stream")

	// ErrFFmpegNotFound is returned when ffmpeg cannot be located.
	ErrFFmpegNotFound = errors.New("h264encoder: ffmpeg not found")
)
