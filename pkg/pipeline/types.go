package pipeline

import (
	"image"
	"image/color"

	"github.com/user/tickclip/pkg/ports"
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// Point is a pixel position on the raster.
type Point struct {
	X int
	Y int
}

// =============================================================================
// Render Stage Types
// =============================================================================

// RasterChannels is the number of interleaved samples per raster pixel.
const RasterChannels = 3

// RasterRowAlignment is the byte alignment of raster rows.
const RasterRowAlignment = 4

// Raster is an interleaved 8-bit RGB image, row-major.
type Raster struct {
	Width    int
	Height   int
	Channels int
	Stride   int // bytes per row, >= Width*Channels
	Pix      []byte
}

// NewRaster allocates a zeroed raster with aligned rows.
func NewRaster(width, height int) Raster {
	stride := AlignUp(width*RasterChannels, RasterRowAlignment)
	return Raster{
		Width:    width,
		Height:   height,
		Channels: RasterChannels,
		Stride:   stride,
		Pix:      make([]byte, stride*height),
	}
}

// At returns the RGB sample at (x, y).
func (r Raster) At(x, y int) (red, green, blue uint8) {
	i := y*r.Stride + x*r.Channels
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

// ToImage copies the raster into an opaque RGBA image.
func (r Raster) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		src := r.Pix[y*r.Stride:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < r.Width; x++ {
			dst[x*4] = src[x*3]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return img
}

// AlignUp rounds n up to a multiple of align.
func AlignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// TextOverlay describes where and how the timestamp text is drawn.
type TextOverlay struct {
	Position Point // Left end of the text baseline
	FontSize float64
	FontPath string
	Color    color.Color
}

// RenderInput contains parameters for rendering one frame.
type RenderInput struct {
	Size       Dimension
	Text       string
	Background color.Color
	Overlay    TextOverlay
}

// DefaultRenderInput returns RenderInput with default values.
func DefaultRenderInput() RenderInput {
	return RenderInput{
		Size:       Dimension{Width: 640, Height: 240},
		Background: color.Black,
		Overlay: TextOverlay{
			Position: Point{X: 10, Y: 120},
			FontSize: 18,
			Color:    color.White,
		},
	}
}

// =============================================================================
// Convert Stage Types
// =============================================================================

// ConvertInput contains a raster and the layout the encoder expects.
type ConvertInput struct {
	Raster    Raster
	Format    ports.PixelFormat
	Size      Dimension
	Alignment int // Plane stride alignment in bytes
}

// ConvertResult contains the encoder-ready frame.
type ConvertResult struct {
	Frame *ports.EncoderFrame
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeParams configures the encoder/muxer session.
type EncodeParams struct {
	OutputPath string
	Codec      string // "h264"
	Size       Dimension
	FPS        int
	GOPSize    int // 0 uses FPS (one keyframe per second)
	Options    ports.EncoderOptions
}

// EncodeStats summarises what a session has written.
type EncodeStats struct {
	FramesSubmitted int
	PacketsWritten  int
	Keyframes       int
	BytesWritten    int64
	LastPTS         int64 // -1 before the first packet
}
