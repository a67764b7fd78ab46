// Package render implements the frame rendering stage.
package render

import (
	"context"
	"fmt"

	"github.com/user/tickclip/pkg/pipeline"
	"github.com/user/tickclip/pkg/ports"
)

// Stage draws overlay text on a solid background and returns an RGB raster.
type Stage struct {
	renderer ports.Renderer
	logger   ports.Logger
}

// NewStage creates a new render stage.
func NewStage(renderer ports.Renderer, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		logger:   logger.WithComponent("render"),
	}
}

// Execute renders one frame.
func (s *Stage) Execute(ctx context.Context, input pipeline.RenderInput) (pipeline.Raster, error) {
	if input.Size.Width <= 0 || input.Size.Height <= 0 {
		return pipeline.Raster{}, fmt.Errorf("invalid raster size %dx%d", input.Size.Width, input.Size.Height)
	}

	canvas := s.renderer.CreateCanvas(input.Size.Width, input.Size.Height, input.Background)
	if input.Text != "" {
		canvas.DrawText(input.Text, input.Overlay.Position.X, input.Overlay.Position.Y, ports.TextStyle{
			FontSize: input.Overlay.FontSize,
			FontPath: input.Overlay.FontPath,
			Color:    input.Overlay.Color,
			Align:    ports.AlignLeft,
		})
	}

	img := canvas.ToImage()
	bounds := img.Bounds()
	if bounds.Dx() != input.Size.Width || bounds.Dy() != input.Size.Height {
		return pipeline.Raster{}, fmt.Errorf("canvas is %dx%d, want %dx%d",
			bounds.Dx(), bounds.Dy(), input.Size.Width, input.Size.Height)
	}

	// Pack RGBA into RGB, dropping alpha
	raster := pipeline.NewRaster(input.Size.Width, input.Size.Height)
	for y := 0; y < raster.Height; y++ {
		src := img.Pix[y*img.Stride:]
		dst := raster.Pix[y*raster.Stride:]
		for x := 0; x < raster.Width; x++ {
			copy(dst[x*3:x*3+3], src[x*4:x*4+3])
		}
	}

	s.logger.Debug("Rendered frame %q at %dx%d", input.Text, raster.Width, raster.Height)
	return raster, nil
}
