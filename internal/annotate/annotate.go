// Package annotate renders the detection result onto a copy of the page for
// visual inspection. Purely observational: nothing downstream reads the
// annotated image back.
package annotate

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/ivlev/pagescan/internal/segment"
)

// Render draws each region's bounding box and id label onto a copy of the
// page: blue for text regions, red for image regions.
func Render(page image.Image, regions []segment.Region) image.Image {
	dc := gg.NewContextForImage(page)
	dc.SetLineWidth(3)

	for _, r := range regions {
		if r.Kind == segment.KindImage {
			dc.SetRGB(1, 0, 0)
		} else {
			dc.SetRGB(0, 0, 1)
		}

		b := r.BBox
		dc.DrawRectangle(float64(b.X), float64(b.Y), float64(b.W), float64(b.H))
		dc.Stroke()

		// Label just above the box, or inside it when the box touches the
		// top of the page.
		labelY := b.Y - 10
		if b.Y <= 20 {
			labelY = b.Y + 20
		}
		dc.DrawString(r.ID, float64(b.X), float64(labelY))
	}

	return dc.Image()
}
