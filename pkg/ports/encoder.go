package ports

// VideoEncoder abstracts a send/receive video encoder.
//
// Frames go in with SendFrame and compressed packets come out with
// ReceivePacket. An encoder may buffer internally, so ReceivePacket returns
// ErrNeedMoreInput until output is available. Sending a nil frame starts
// draining; after that ReceivePacket returns the remaining packets and then
// ErrEndOfStream.
type VideoEncoder interface {
	// Open starts the encoder with the given parameters.
	Open(params CodecParams) error

	// SendFrame submits a frame for encoding, or nil to flush.
	SendFrame(frame *EncoderFrame) error

	// ReceivePacket returns the next encoded packet if one is ready.
	ReceivePacket() (Packet, error)

	// Close releases all encoder resources.
	Close() error
}

// EncoderFinder locates an encoder implementation for a codec name.
type EncoderFinder interface {
	// FindEncoder returns an unopened encoder or an error wrapping ErrCodecNotFound.
	FindEncoder(codec string) (VideoEncoder, error)
}
