package ports

// Muxer writes compressed packets into a container file.
type Muxer interface {
	// FormatName returns the short name of the container, e.g. "mpegts".
	FormatName() string

	// RequiresGlobalHeader reports whether codec headers must be stored
	// out of band instead of in the bitstream.
	RequiresGlobalHeader() bool

	// AddVideoStream declares a video stream and returns its index.
	AddVideoStream(params CodecParams) (int, error)

	// WriteHeader opens the output and writes the container header.
	WriteHeader() error

	// WritePacket writes one packet. Packets must arrive in timestamp order.
	WritePacket(pkt Packet) error

	// WriteTrailer finishes the container and flushes buffered output.
	WriteTrailer() error

	// BytesWritten returns the number of bytes written to the output so far.
	BytesWritten() int64

	// Close releases the output. It is safe to call more than once.
	Close() error
}

// MuxerFactory picks a container for an output path.
type MuxerFactory interface {
	// NewMuxer returns a muxer for path or an error wrapping ErrUnsupportedContainer.
	NewMuxer(path string) (Muxer, error)
}
