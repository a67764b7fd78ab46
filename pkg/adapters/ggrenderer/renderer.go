// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/user/tickclip/pkg/ports"
)

// Renderer implements ports.Renderer using the gg library.
// Font faces are parsed once and cached per path and size.
type Renderer struct {
	mu    sync.Mutex
	fonts map[string]*truetype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	path string
	size float64
}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{
		fonts: make(map[string]*truetype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// CreateCanvas creates a new drawing canvas.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	return &Canvas{dc: dc, renderer: r}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		opts := &jpeg.Options{Quality: quality}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// face returns a cached font face for the style.
func (r *Renderer) face(path string, size float64) (font.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := faceKey{path: path, size: size}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}

	ttf, ok := r.fonts[path]
	if !ok {
		var err error
		ttf, err = loadFont(path)
		if err != nil {
			return nil, err
		}
		r.fonts[path] = ttf
	}

	f := truetype.NewFace(ttf, &truetype.Options{Size: size, Hinting: font.HintingFull})
	r.faces[key] = f
	return f, nil
}

func loadFont(path string) (*truetype.Font, error) {
	if path == "" {
		return truetype.Parse(gobold.TTF)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc       *gg.Context
	renderer *Renderer
}

func (c *Canvas) applyStyle(style ports.TextStyle) {
	c.dc.SetColor(style.Color)
	face, err := c.renderer.face(style.FontPath, style.FontSize)
	if err != nil {
		// Fall back to the embedded face
		face, err = c.renderer.face("", style.FontSize)
		if err != nil {
			return
		}
	}
	c.dc.SetFontFace(face)
}

// DrawText draws text with its baseline at y.
func (c *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	c.applyStyle(style)

	// Calculate alignment offset
	ax := 0.0
	switch style.Align {
	case ports.AlignCenter:
		ax = 0.5
	case ports.AlignRight:
		ax = 1.0
	}

	c.dc.DrawStringAnchored(text, float64(x), float64(y), ax, 0)
}

// MeasureText returns the width and height of the text.
func (c *Canvas) MeasureText(text string, style ports.TextStyle) (width, height float64) {
	c.applyStyle(style)
	return c.dc.MeasureString(text)
}

// ToImage returns the canvas as an RGBA image.
func (c *Canvas) ToImage() *image.RGBA {
	if rgba, ok := c.dc.Image().(*image.RGBA); ok {
		return rgba
	}
	img := c.dc.Image()
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}

// Ensure Canvas implements ports.Canvas
var _ ports.Canvas = (*Canvas)(nil)
