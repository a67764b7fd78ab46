package ports

// PixelFormat identifies the memory layout of an encoder frame.
type PixelFormat int

const (
	// PixelFormatYUV420P is planar Y, Cb, Cr with 2x2 chroma subsampling.
	PixelFormatYUV420P PixelFormat = iota
)

// String returns the ffmpeg name of the pixel format.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatYUV420P:
		return "yuv420p"
	default:
		return "unknown"
	}
}

// Rational is a fraction used for time bases and frame rates.
type Rational struct {
	Num int
	Den int
}

// Plane is one component plane of a planar frame.
// Stride is the distance in bytes between the starts of consecutive rows
// and is never smaller than Width.
type Plane struct {
	Data   []byte
	Stride int
	Width  int
	Height int
}

// Row returns the visible bytes of row y.
func (p Plane) Row(y int) []byte {
	off := y * p.Stride
	return p.Data[off : off+p.Width]
}

// EncoderFrame is a planar image sized for the encoder's pixel format.
type EncoderFrame struct {
	Format PixelFormat
	Width  int
	Height int
	Planes []Plane
	PTS    int64 // presentation timestamp in stream time base (frame index)
}

// Release drops the frame's buffers. The frame must not be used afterwards.
func (f *EncoderFrame) Release() {
	f.Planes = nil
}

// Released reports whether Release has been called.
func (f *EncoderFrame) Released() bool {
	return f.Planes == nil
}

// Packet is one compressed access unit produced by an encoder.
type Packet struct {
	Data        []byte // Annex-B byte stream of one access unit
	StreamIndex int
	PTS         int64 // in stream time base
	DTS         int64
	Keyframe    bool
}

// CodecParams describes the video stream being produced.
type CodecParams struct {
	Codec        string // e.g. "h264"
	Width        int
	Height       int
	PixelFormat  PixelFormat
	TimeBase     Rational // 1/fps
	FrameRate    Rational // fps/1
	GOPSize      int
	MaxBFrames   int
	GlobalHeader bool
	Options      EncoderOptions
}

// EncoderOptions configures codec-specific quality settings.
type EncoderOptions struct {
	Bitrate int    // Target bitrate in kbps (0 = rate control by CRF)
	CRF     int    // Constant rate factor, 0-51 (0 = encoder default)
	Preset  string // Encoder speed preset, e.g. "veryfast"
}
