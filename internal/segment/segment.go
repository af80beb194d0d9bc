// Package segment partitions a de-rotated page into typed content regions.
// Detection runs in two passes: embedded images first (large external
// contours of the binarized page), then text blocks on a working copy where
// the accepted image boxes have been masked out, so that visually busy
// pictures cannot dilate into oversized text blobs.
package segment

import (
	"fmt"
	"image"
	"sort"

	"github.com/ivlev/pagescan/internal/raster"
)

// Params are the detection tunables, all supplied by the caller. DilationX
// and DilationY trade paragraph-merging recall against over-merging of
// unrelated blocks.
type Params struct {
	// DilationX and DilationY are the structuring-element sizes for the
	// horizontal and vertical text-merging passes (pixels).
	DilationX int
	DilationY int
	// MinContourArea is the noise floor for text contours (pixels).
	MinContourArea int
	// ImageAreaPercent is the minimum bounding-box area of an image region
	// as a percentage of the page area.
	ImageAreaPercent float64
	// MinImageSide is the minimum width and height of an image region,
	// guarding against thin full-width strips passing the area ratio alone.
	MinImageSide int
}

func (p Params) validate() error {
	if p.DilationX < 1 || p.DilationY < 1 {
		return fmt.Errorf("dilation kernel sizes must be at least 1, got (%d, %d)", p.DilationX, p.DilationY)
	}
	if p.MinContourArea < 0 || p.ImageAreaPercent < 0 || p.MinImageSide < 0 {
		return fmt.Errorf("detection thresholds must not be negative")
	}
	return nil
}

// DetectRegions finds the content regions of a page, classified as text or
// image, and returns them sorted by the top edge of their bounding boxes
// (stable, so equal-y regions keep discovery order).
//
// Region ids number each kind from 1 in contour-discovery order, before the
// vertical sort. An id is therefore not a reading-order position: text_3 can
// legitimately appear before text_1 in the returned sequence.
func DetectRegions(page image.Image, params Params) ([]Region, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	bounds := page.Bounds()
	pageW, pageH := bounds.Dx(), bounds.Dy()
	pageArea := float64(pageW) * float64(pageH)

	gray := raster.ToGray(page)
	binary := raster.Binarize(gray, raster.Otsu(gray), true)

	var regions []Region

	// Pass 1: image regions. Accepted boxes are painted black on the
	// working binary so the text pass cannot see them.
	imageCount := 0
	for _, c := range findComponents(binary) {
		w, h := c.rect.Dx(), c.rect.Dy()
		if w <= 0 || h <= 0 {
			continue
		}
		if float64(w*h) > pageArea*params.ImageAreaPercent/100 && w > params.MinImageSide && h > params.MinImageSide {
			imageCount++
			regions = append(regions, Region{
				ID:   regionID(KindImage, imageCount),
				Kind: KindImage,
				BBox: BBox{X: c.rect.Min.X, Y: c.rect.Min.Y, W: w, H: h},
			})
			fillRect(binary, c.rect, 0)
		}
	}

	// Pass 2: text regions. Merge characters into line runs, then lines
	// into paragraph blocks, and keep every contour above the noise floor.
	dilated := dilate(binary, params.DilationX, 1, 2)
	dilated = dilate(dilated, 1, params.DilationY, 2)

	textCount := 0
	for _, c := range findComponents(dilated) {
		w, h := c.rect.Dx(), c.rect.Dy()
		if w <= 0 || h <= 0 {
			continue
		}
		if c.area > params.MinContourArea {
			textCount++
			regions = append(regions, Region{
				ID:   regionID(KindText, textCount),
				Kind: KindText,
				BBox: BBox{X: c.rect.Min.X, Y: c.rect.Min.Y, W: w, H: h},
			})
		}
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].BBox.Y < regions[j].BBox.Y
	})

	return regions, nil
}
