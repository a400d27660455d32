package ports

import "context"

// RenderProduct is the finished output of one render.
type RenderProduct struct {
	Data       []byte
	Format     VideoFormat
	DurationMs int
	FrameCount int
}

// Delivery reports where a render product ended up.
type Delivery struct {
	Path          string
	GalleryItemID string // Empty when the product was not added to the gallery
}

// ProductSink offers a finished render to the user.
type ProductSink interface {
	Deliver(ctx context.Context, product RenderProduct) (Delivery, error)
}
