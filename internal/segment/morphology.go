package segment

import "image"

// dilate grows the foreground of a binary image by a rectangular structuring
// element of kw x kh pixels, repeated for the given number of iterations.
// The kernels used by the detector are always one-dimensional ((kw,1) to
// merge characters into line runs, (1,kh) to merge lines into blocks), so
// each pass is a run-length expansion along one axis.
func dilate(src *image.Gray, kw, kh, iterations int) *image.Gray {
	out := src
	for i := 0; i < iterations; i++ {
		if kw > 1 {
			out = dilateRows(out, kw)
		}
		if kh > 1 {
			out = dilateColumns(out, kh)
		}
	}
	if out == src {
		// Degenerate 1x1 kernel: dilation is the identity.
		cp := image.NewGray(src.Bounds())
		copy(cp.Pix, src.Pix)
		out = cp
	}
	return out
}

func dilateRows(src *image.Gray, kw int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	extL, extR := kw/2, (kw-1)/2

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		outRow := out.Pix[y*out.Stride : y*out.Stride+w]
		x := 0
		for x < w {
			if row[x] == 0 {
				x++
				continue
			}
			start := x
			for x < w && row[x] != 0 {
				x++
			}
			lo, hi := start-extL, x+extR
			if lo < 0 {
				lo = 0
			}
			if hi > w {
				hi = w
			}
			for i := lo; i < hi; i++ {
				outRow[i] = 255
			}
		}
	}
	return out
}

func dilateColumns(src *image.Gray, kh int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	extT, extB := kh/2, (kh-1)/2

	for x := 0; x < w; x++ {
		y := 0
		for y < h {
			if src.Pix[y*src.Stride+x] == 0 {
				y++
				continue
			}
			start := y
			for y < h && src.Pix[y*src.Stride+x] != 0 {
				y++
			}
			lo, hi := start-extT, y+extB
			if lo < 0 {
				lo = 0
			}
			if hi > h {
				hi = h
			}
			for i := lo; i < hi; i++ {
				out.Pix[i*out.Stride+x] = 255
			}
		}
	}
	return out
}

// component is one connected foreground region: its bounding box and the
// number of foreground pixels it contains.
type component struct {
	rect image.Rectangle
	area int
}

// findComponents extracts the external contours of a binary image as
// 8-connected components, in row-major discovery order.
func findComponents(g *image.Gray) []component {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	visited := make([]bool, w*h)

	var components []component
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if g.Pix[y*g.Stride+x] != 0 && !visited[y*w+x] {
				components = append(components, floodFill(g, visited, x, y))
			}
		}
	}
	return components
}

// floodFill walks one 8-connected component starting at (startX, startY) and
// returns its bounding rectangle and pixel count.
func floodFill(g *image.Gray, visited []bool, startX, startY int) component {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	minX, minY := startX, startY
	maxX, maxY := startX, startY
	area := 0

	stack := []image.Point{{X: startX, Y: startY}}
	visited[startY*w+startX] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		area++

		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				if visited[ny*w+nx] || g.Pix[ny*g.Stride+nx] == 0 {
					continue
				}
				visited[ny*w+nx] = true
				stack = append(stack, image.Point{X: nx, Y: ny})
			}
		}
	}

	return component{
		rect: image.Rect(minX, minY, maxX+1, maxY+1),
		area: area,
	}
}

// fillRect paints a solid rectangle onto a binary image, used to mask out
// accepted image regions before text dilation.
func fillRect(g *image.Gray, r image.Rectangle, v uint8) {
	b := g.Bounds()
	r = r.Intersect(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = v
		}
	}
}
