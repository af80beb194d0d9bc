package annotate

import (
	"image"
	"image/color"
	"testing"

	"github.com/ivlev/pagescan/internal/segment"
)

func TestRenderDrawsColorCodedBoxes(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for i := range page.Pix {
		page.Pix[i] = 255
	}

	regions := []segment.Region{
		{ID: "text_1", Kind: segment.KindText, BBox: segment.BBox{X: 10, Y: 30, W: 50, H: 20}},
		{ID: "image_1", Kind: segment.KindImage, BBox: segment.BBox{X: 100, Y: 40, W: 60, H: 40}},
	}

	out := Render(page, regions)

	if out.Bounds() != page.Bounds() {
		t.Fatalf("Expected bounds %v, got %v", page.Bounds(), out.Bounds())
	}

	// The stroked edges carry the kind color: blue for text, red for image.
	r, g, b := rgbAt(out, 10, 40)
	if b < 150 || r > 100 || g > 100 {
		t.Errorf("Text box edge not blue: (%d, %d, %d)", r, g, b)
	}
	r, g, b = rgbAt(out, 100, 60)
	if r < 150 || b > 100 || g > 100 {
		t.Errorf("Image box edge not red: (%d, %d, %d)", r, g, b)
	}

	// The original page is untouched.
	if page.RGBAAt(10, 40) != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Error("Render must not modify the input page")
	}
}

func TestRenderEmptyRegionList(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, 50, 50))
	out := Render(page, nil)
	if out.Bounds() != page.Bounds() {
		t.Errorf("Expected bounds %v, got %v", page.Bounds(), out.Bounds())
	}
}

func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}
