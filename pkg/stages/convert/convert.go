// Package convert implements the pixel format conversion stage.
//
// RGB rasters are converted to planar YUV 4:2:0 using BT.601 limited-range
// coefficients. Chroma samples are computed from the average of each 2x2
// block of source pixels.
package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/tickclip/pkg/pipeline"
	"github.com/user/tickclip/pkg/ports"
)

// DefaultAlignment is the plane stride alignment used by libavcodec.
const DefaultAlignment = 32

var (
	// ErrUnsupportedPixelFormat is returned for target formats the converter cannot produce.
	ErrUnsupportedPixelFormat = errors.New("convert: unsupported pixel format")

	// ErrSizeMismatch is returned when the raster does not match the target size.
	ErrSizeMismatch = errors.New("convert: raster size does not match target")
)

// Stage converts rasters into encoder frames.
type Stage struct{}

// NewStage creates a new convert stage.
func NewStage() *Stage {
	return &Stage{}
}

// Execute allocates an encoder frame and fills it from the raster.
func (s *Stage) Execute(ctx context.Context, input pipeline.ConvertInput) (pipeline.ConvertResult, error) {
	r := input.Raster
	if r.Width != input.Size.Width || r.Height != input.Size.Height {
		return pipeline.ConvertResult{}, fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrSizeMismatch, r.Width, r.Height, input.Size.Width, input.Size.Height)
	}
	if r.Channels != pipeline.RasterChannels {
		return pipeline.ConvertResult{}, fmt.Errorf("convert: raster has %d channels, want %d",
			r.Channels, pipeline.RasterChannels)
	}

	frame, err := AllocateFrame(input.Format, input.Size.Width, input.Size.Height, input.Alignment)
	if err != nil {
		return pipeline.ConvertResult{}, err
	}

	rgbToYUV420P(r, frame)
	return pipeline.ConvertResult{Frame: frame}, nil
}

// AllocateFrame allocates a frame whose plane strides are multiples of align.
func AllocateFrame(format ports.PixelFormat, width, height, align int) (*ports.EncoderFrame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("convert: invalid frame size %dx%d", width, height)
	}
	if align <= 0 {
		return nil, fmt.Errorf("convert: invalid alignment %d", align)
	}
	if format != ports.PixelFormatYUV420P {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPixelFormat, format)
	}

	cw, ch := (width+1)/2, (height+1)/2
	frame := &ports.EncoderFrame{
		Format: format,
		Width:  width,
		Height: height,
		Planes: []ports.Plane{
			newPlane(width, height, align),
			newPlane(cw, ch, align),
			newPlane(cw, ch, align),
		},
	}
	return frame, nil
}

func newPlane(width, height, align int) ports.Plane {
	stride := pipeline.AlignUp(width, align)
	return ports.Plane{
		Data:   make([]byte, stride*height),
		Stride: stride,
		Width:  width,
		Height: height,
	}
}

func rgbToYUV420P(r pipeline.Raster, f *ports.EncoderFrame) {
	yp, up, vp := f.Planes[0], f.Planes[1], f.Planes[2]

	for y := 0; y < r.Height; y++ {
		src := r.Pix[y*r.Stride:]
		dst := yp.Data[y*yp.Stride:]
		for x := 0; x < r.Width; x++ {
			dst[x] = luma(int(src[x*3]), int(src[x*3+1]), int(src[x*3+2]))
		}
	}

	for cy := 0; cy < up.Height; cy++ {
		for cx := 0; cx < up.Width; cx++ {
			var sr, sg, sb, n int
			for dy := 0; dy < 2; dy++ {
				y := cy*2 + dy
				if y >= r.Height {
					break
				}
				for dx := 0; dx < 2; dx++ {
					x := cx*2 + dx
					if x >= r.Width {
						break
					}
					i := y*r.Stride + x*3
					sr += int(r.Pix[i])
					sg += int(r.Pix[i+1])
					sb += int(r.Pix[i+2])
					n++
				}
			}
			sr, sg, sb = (sr+n/2)/n, (sg+n/2)/n, (sb+n/2)/n
			up.Data[cy*up.Stride+cx] = chromaB(sr, sg, sb)
			vp.Data[cy*vp.Stride+cx] = chromaR(sr, sg, sb)
		}
	}
}

func luma(r, g, b int) byte {
	return clamp(((66*r + 129*g + 25*b + 128) >> 8) + 16)
}

func chromaB(r, g, b int) byte {
	return clamp(((-38*r - 74*g + 112*b + 128) >> 8) + 128)
}

func chromaR(r, g, b int) byte {
	return clamp(((112*r - 94*g - 18*b + 128) >> 8) + 128)
}

func clamp(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
