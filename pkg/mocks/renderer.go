package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/storyreel/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	DecodeImageFunc  func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)

	mu       sync.Mutex
	Canvases []*Canvas
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	c := NewCanvas(width, height)
	m.mu.Lock()
	m.Canvases = append(m.Canvases, c)
	m.mu.Unlock()
	return c
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

var _ ports.Renderer = (*Renderer)(nil)

// CanvasOp records one drawing call.
type CanvasOp struct {
	Op     string // "clear", "image", "rect" or "text"
	X, Y   int
	W, H   int
	Color  color.Color
	Text   string
	Style  ports.TextStyle
	Source image.Image
}

// Canvas is a mock implementation of ports.Canvas that records drawing calls.
type Canvas struct {
	Width  int
	Height int
	Ops    []CanvasOp

	// MeasureTextFunc overrides the default width of 0.5*FontSize per byte.
	MeasureTextFunc func(text string, style ports.TextStyle) (float64, float64)

	img *image.RGBA
}

// NewCanvas creates a mock canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{Width: width, Height: height}
}

func (m *Canvas) Clear(c color.Color) {
	m.Ops = append(m.Ops, CanvasOp{Op: "clear", W: m.Width, H: m.Height, Color: c})
}

func (m *Canvas) DrawImageScaled(img image.Image, x, y, width, height int) {
	m.Ops = append(m.Ops, CanvasOp{Op: "image", X: x, Y: y, W: width, H: height, Source: img})
}

func (m *Canvas) DrawRect(x, y, w, h int, c color.Color) {
	m.Ops = append(m.Ops, CanvasOp{Op: "rect", X: x, Y: y, W: w, H: h, Color: c})
}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	m.Ops = append(m.Ops, CanvasOp{Op: "text", X: x, Y: y, Text: text, Style: style, Color: style.Color})
}

func (m *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	if m.MeasureTextFunc != nil {
		return m.MeasureTextFunc(text, style)
	}
	return float64(len(text)) * style.FontSize * 0.5, style.FontSize
}

func (m *Canvas) Size() (int, int) {
	return m.Width, m.Height
}

func (m *Canvas) ToImage() image.Image {
	if m.img == nil {
		m.img = image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	}
	return m.img
}

// OpsOf returns the recorded calls of one kind.
func (m *Canvas) OpsOf(op string) []CanvasOp {
	var out []CanvasOp
	for _, o := range m.Ops {
		if o.Op == op {
			out = append(out, o)
		}
	}
	return out
}

var _ ports.Canvas = (*Canvas)(nil)
