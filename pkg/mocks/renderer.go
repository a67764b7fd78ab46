package mocks

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/user/tickclip/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
// Canvases it creates record their DrawText calls on the Renderer.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ToImageFunc      func() *image.RGBA

	// Recorded calls for verification
	DrawTextCalls []DrawTextCall
}

// DrawTextCall records a call to Canvas.DrawText.
type DrawTextCall struct {
	Text  string
	X, Y  int
	Style ports.TextStyle
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	return &Canvas{owner: m, width: width, height: height, bg: bg}
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas.
type Canvas struct {
	owner  *Renderer
	width  int
	height int
	bg     color.Color
}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	if m.owner != nil {
		m.owner.DrawTextCalls = append(m.owner.DrawTextCalls, DrawTextCall{Text: text, X: x, Y: y, Style: style})
	}
}

func (m *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	return float64(len(text)) * style.FontSize / 2, style.FontSize
}

func (m *Canvas) ToImage() *image.RGBA {
	if m.owner != nil && m.owner.ToImageFunc != nil {
		return m.owner.ToImageFunc()
	}
	img := image.NewRGBA(image.Rect(0, 0, m.width, m.height))
	if m.bg != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(m.bg), image.Point{}, draw.Src)
	}
	return img
}

var _ ports.Canvas = (*Canvas)(nil)
