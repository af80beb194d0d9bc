// Package raster provides the pixel-level primitives shared by the deskew
// and segmentation stages: grayscale conversion, Otsu binarization and
// same-size rotation about the image center.
package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ToGray converts an image to 8-bit grayscale.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}

	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	switch src := img.(type) {
	case *image.RGBA:
		// Fast path: go-fitz renders pages as RGBA.
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := src.Pix[(y-src.Rect.Min.Y)*src.Stride:]
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				i := (x - src.Rect.Min.X) * 4
				r, g, b := uint32(row[i]), uint32(row[i+1]), uint32(row[i+2])
				// Same luma weights as the standard GrayModel.
				gray.SetGray(x, y, color.Gray{Y: uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 16)})
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
			}
		}
	}

	return gray
}

// Invert returns a new grayscale image with every pixel flipped (255 - v).
func Invert(g *image.Gray) *image.Gray {
	out := image.NewGray(g.Bounds())
	for i, v := range g.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}

// Otsu computes the global threshold that maximizes between-class variance
// of the intensity histogram.
func Otsu(g *image.Gray) uint8 {
	var hist [256]int
	for _, v := range g.Pix {
		hist[v]++
	}
	total := len(g.Pix)
	if total == 0 {
		return 0
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	var best float64
	var threshold uint8
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(t)
		}
	}
	return threshold
}

// Binarize applies a fixed threshold. With invert=false, pixels strictly
// above the threshold become 255 and the rest 0; with invert=true the
// mapping is flipped, so dark pixels (ink) become the 255 foreground.
func Binarize(g *image.Gray, threshold uint8, invert bool) *image.Gray {
	out := image.NewGray(g.Bounds())
	hi, lo := uint8(255), uint8(0)
	if invert {
		hi, lo = lo, hi
	}
	for i, v := range g.Pix {
		if v > threshold {
			out.Pix[i] = hi
		} else {
			out.Pix[i] = lo
		}
	}
	return out
}

// rotationMatrix maps source coordinates onto destination coordinates for a
// rotation of the given angle (degrees) about the image center.
func rotationMatrix(bounds image.Rectangle, degrees float64) f64.Aff3 {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx := float64(bounds.Min.X) + float64(bounds.Dx())/2
	cy := float64(bounds.Min.Y) + float64(bounds.Dy())/2
	return f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
}

// RotateGrayInto rotates src about its center by the given angle (degrees)
// into dst, which must have identical bounds. Pixels that fall outside the
// rotated source keep whatever dst already holds, so callers clear dst to
// the border value first.
func RotateGrayInto(src *image.Gray, dst *image.Gray, degrees float64) {
	draw.CatmullRom.Transform(dst, rotationMatrix(src.Bounds(), degrees), src, src.Bounds(), draw.Src, nil)
}

// Rotate rotates an image about its center by the given angle (degrees),
// keeping the original dimensions and filling uncovered corners with the
// fill color. Resampling is Catmull-Rom (cubic).
func Rotate(src image.Image, degrees float64, fill color.Color) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(fill), image.Point{}, draw.Src)
	draw.CatmullRom.Transform(dst, rotationMatrix(bounds, degrees), src, bounds, draw.Over, nil)
	return dst
}
