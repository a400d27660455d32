package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts image processing operations.
type Renderer interface {
	// CreateCanvas creates a new drawing canvas with the specified dimensions and background color.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// DecodeImage decodes image data into an image.Image.
	// FormatAuto sniffs the registered decoders (JPEG, PNG, GIF, WebP).
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)
}

// Canvas provides drawing operations for compositing frames.
type Canvas interface {
	// Clear fills the whole canvas with c.
	Clear(c color.Color)

	// DrawImageScaled draws an image scaled to the specified rectangle.
	// The rectangle may extend past the canvas; the excess is cropped.
	DrawImageScaled(img image.Image, x, y, width, height int)

	// DrawRect draws a filled rectangle. Translucent colors blend over existing pixels.
	DrawRect(x, y, w, h int, c color.Color)

	// DrawText draws a single line of text at the specified position.
	DrawText(text string, x, y int, style TextStyle)

	// MeasureText returns the width and height of the text.
	MeasureText(text string, style TextStyle) (width, height float64)

	// Size returns the canvas dimensions.
	Size() (width, height int)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	FontSize float64
	FontPath string // Empty selects the embedded Go font
	Bold     bool
	Color    color.Color
	Align    TextAlign
	Baseline bool // y is the text baseline instead of its vertical center
}

// TextAlign specifies text alignment.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
	FormatAuto
)
