// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	_ "golang.org/x/image/webp"

	"github.com/user/storyreel/pkg/ports"
)

// Renderer implements ports.Renderer using the gg library.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// CreateCanvas creates a new drawing canvas.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	return &Canvas{dc: dc, faces: map[faceKey]font.Face{}}
}

// DecodeImage decodes image data into an image.Image.
func (r *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	reader := bytes.NewReader(data)

	switch format {
	case ports.FormatJPEG:
		return jpeg.Decode(reader)
	case ports.FormatPNG:
		return png.Decode(reader)
	default:
		img, _, err := image.Decode(reader)
		return img, err
	}
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

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)

var (
	fontsOnce sync.Once
	boldFont  *truetype.Font
	plainFont *truetype.Font
	fontsErr  error
)

func embeddedFonts() (*truetype.Font, *truetype.Font, error) {
	fontsOnce.Do(func() {
		boldFont, fontsErr = truetype.Parse(gobold.TTF)
		if fontsErr != nil {
			return
		}
		plainFont, fontsErr = truetype.Parse(goregular.TTF)
	})
	return boldFont, plainFont, fontsErr
}

type faceKey struct {
	path string
	bold bool
	size float64
}

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc    *gg.Context
	faces map[faceKey]font.Face
}

// Clear fills the whole canvas.
func (c *Canvas) Clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

// DrawImageScaled draws an image scaled into the given rectangle.
// Parts of the rectangle outside the canvas are clipped.
func (c *Canvas) DrawImageScaled(img image.Image, x, y, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	dst, ok := c.dc.Image().(*image.RGBA)
	if !ok {
		// gg always backs its context with *image.RGBA; keep a slow path anyway.
		c.dc.Push()
		defer c.dc.Pop()
		bounds := img.Bounds()
		c.dc.Translate(float64(x), float64(y))
		c.dc.Scale(float64(width)/float64(bounds.Dx()), float64(height)/float64(bounds.Dy()))
		c.dc.DrawImage(img, 0, 0)
		return
	}
	dr := image.Rect(x, y, x+width, y+height)
	draw.ApproxBiLinear.Scale(dst, dr, img, img.Bounds(), draw.Over, nil)
}

// DrawRect draws a filled rectangle.
func (c *Canvas) DrawRect(x, y, w, h int, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.dc.Fill()
}

// DrawText draws a single line of text at the specified position.
func (c *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	c.applyFont(style)
	c.dc.SetColor(style.Color)

	ax := 0.0
	switch style.Align {
	case ports.AlignCenter:
		ax = 0.5
	case ports.AlignRight:
		ax = 1.0
	}
	ay := 0.5
	if style.Baseline {
		ay = 0
	}

	c.dc.DrawStringAnchored(text, float64(x), float64(y), ax, ay)
}

// MeasureText returns the width and height of the text.
func (c *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	c.applyFont(style)
	return c.dc.MeasureString(text)
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

// ToImage returns the canvas as an image.Image.
func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

func (c *Canvas) applyFont(style ports.TextStyle) {
	size := style.FontSize
	if size <= 0 {
		size = 24
	}
	key := faceKey{path: style.FontPath, bold: style.Bold, size: size}
	if face, ok := c.faces[key]; ok {
		c.dc.SetFontFace(face)
		return
	}

	if style.FontPath != "" {
		face, err := gg.LoadFontFace(style.FontPath, size)
		if err == nil {
			c.faces[key] = face
			c.dc.SetFontFace(face)
			return
		}
		// Fall through to the embedded font
	}

	bold, plain, err := embeddedFonts()
	if err != nil {
		return
	}
	f := plain
	if style.Bold {
		f = bold
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size})
	c.faces[key] = face
	c.dc.SetFontFace(face)
}

// Ensure Canvas implements ports.Canvas
var _ ports.Canvas = (*Canvas)(nil)
