package ggrenderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/user/storyreel/pkg/ports"
)

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 100, color.White)
	if canvas == nil {
		t.Fatal("expected canvas to be created")
	}

	img := canvas.ToImage()
	bounds := img.Bounds()

	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("expected 100x100, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeDecodeJPEG(t *testing.T) {
	r := New()

	// Create test image
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}

	// Encode
	data, err := r.EncodeImage(img, ports.FormatJPEG, 80)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty data")
	}

	// Decode
	decoded, err := r.DecodeImage(data, ports.FormatJPEG)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("expected 50x50, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeDecodePNG(t *testing.T) {
	r := New()

	img := image.NewRGBA(image.Rect(0, 0, 30, 30))

	// Encode
	data, err := r.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	// Decode
	decoded, err := r.DecodeImage(data, ports.FormatPNG)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 30 || bounds.Dy() != 30 {
		t.Errorf("expected 30x30, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_DecodeAuto(t *testing.T) {
	r := New()

	img := image.NewRGBA(image.Rect(0, 0, 12, 8))
	data, err := r.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	decoded, err := r.DecodeImage(data, ports.FormatAuto)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if decoded.Bounds().Dx() != 12 || decoded.Bounds().Dy() != 8 {
		t.Errorf("expected 12x8, got %v", decoded.Bounds())
	}

	if _, err := r.DecodeImage([]byte("not an image"), ports.FormatAuto); err == nil {
		t.Error("expected error for garbage data")
	}
}

func TestCanvas_Clear(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(10, 10, color.White)

	canvas.Clear(color.Black)

	red, g, b, a := canvas.ToImage().At(5, 5).RGBA()
	if red != 0 || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("expected opaque black, got %d,%d,%d,%d", red, g, b, a)
	}
	if w, h := canvas.Size(); w != 10 || h != 10 {
		t.Errorf("expected 10x10, got %dx%d", w, h)
	}
}

func TestCanvas_DrawRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	// Draw red rectangle
	canvas.DrawRect(10, 10, 30, 30, color.RGBA{R: 255, A: 255})

	img := canvas.ToImage()

	// Check that pixel inside rectangle is red
	c := img.At(20, 20)
	red, _, _, _ := c.RGBA()
	if red == 0 {
		t.Error("expected red pixel inside rectangle")
	}
}

func TestCanvas_DrawRectTranslucent(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	canvas.DrawRect(0, 0, 100, 100, color.NRGBA{A: 178})

	red, _, _, a := canvas.ToImage().At(50, 50).RGBA()
	if a != 0xffff {
		t.Errorf("expected opaque result, got alpha %d", a)
	}
	// 70% black over white leaves roughly 30% brightness
	if red < 0x3000 || red > 0x5800 {
		t.Errorf("expected blended gray, got red %d", red)
	}
}

func TestCanvas_DrawImageScaled(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			small.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	// Larger than the canvas on both sides; the excess is cropped
	canvas.DrawImageScaled(small, -50, -50, 200, 200)

	img := canvas.ToImage()
	for _, p := range []image.Point{{0, 0}, {50, 50}, {99, 99}} {
		red, g, _, _ := img.At(p.X, p.Y).RGBA()
		if red != 0xffff || g != 0 {
			t.Errorf("expected red at %v, got r=%d g=%d", p, red, g)
		}
	}
}

func TestCanvas_DrawImageScaled_Partial(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	small := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			small.Set(x, y, color.RGBA{B: 255, A: 255})
		}
	}

	canvas.DrawImageScaled(small, 10, 10, 40, 40)

	img := canvas.ToImage()
	_, _, b, _ := img.At(30, 30).RGBA()
	if b != 0xffff {
		t.Error("expected blue pixel inside drawn rectangle")
	}
	red, _, _, _ := img.At(80, 80).RGBA()
	if red != 0xffff {
		t.Error("expected background outside drawn rectangle")
	}
}

func TestCanvas_DrawText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(200, 50, color.White)

	style := ports.TextStyle{
		FontSize: 14,
		Color:    color.Black,
		Align:    ports.AlignLeft,
	}

	// Should not panic
	canvas.DrawText("Olá mundo", 10, 25, style)

	img := canvas.ToImage()
	if img == nil {
		t.Error("expected image to be created")
	}
}

func TestCanvas_DrawTextBaselineCentered(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(300, 100, color.Black)

	style := ports.TextStyle{
		FontSize: 24,
		Bold:     true,
		Color:    color.White,
		Align:    ports.AlignCenter,
		Baseline: true,
	}
	canvas.DrawText("HHHH", 150, 60, style)

	// Glyphs sit above the baseline and around the center
	img := canvas.ToImage()
	lit := false
	for y := 40; y < 60; y++ {
		for x := 120; x < 180; x++ {
			if red, _, _, _ := img.At(x, y).RGBA(); red > 0x8000 {
				lit = true
			}
		}
	}
	if !lit {
		t.Error("expected text pixels above the baseline near the center")
	}
	for x := 0; x < 300; x++ {
		if red, _, _, _ := img.At(x, 75).RGBA(); red > 0x8000 {
			t.Fatalf("unexpected text pixel below the baseline at x=%d", x)
		}
	}
}

func TestCanvas_MeasureText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.Black)

	style := ports.TextStyle{FontSize: 24, Bold: true}
	short, _ := canvas.MeasureText("abc", style)
	long, _ := canvas.MeasureText("abcabcabc", style)

	if short <= 0 || long <= short {
		t.Errorf("expected longer text to measure wider: %v vs %v", short, long)
	}
}
