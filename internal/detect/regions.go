package detect

import "github.com/gnusam/sprite-splitter/internal/raster"

const (
	// opaqueThreshold is the minimum alpha for a pixel to count as sprite
	// material. Anything below is background regardless of its RGB.
	opaqueThreshold = 10

	// minRegionPixels drops speck components left over from antialiasing
	// or background keying.
	minRegionPixels = 50

	// boxPadding is added on every side of a detected component so the
	// crop keeps a clean transparent rim.
	boxPadding = 1
)

// FindRegions labels 4-connected components of opaque pixels and returns
// one padded bounding box per component, in row-major discovery order.
// An all-transparent raster yields an empty slice.
func FindRegions(r *raster.Raster) []Box {
	w, h := r.W, r.H
	visited := make([]bool, w*h)
	var boxes []Box

	// Explicit stack: regions can span the whole sheet, recursion would
	// overflow on large uploads.
	stack := make([]int, 0, 1024)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if visited[idx] || r.Pix[idx*4+3] < opaqueThreshold {
				continue
			}

			minX, maxX := x, x
			minY, maxY := y, y
			count := 0

			stack = stack[:0]
			stack = append(stack, idx)
			visited[idx] = true

			for len(stack) > 0 {
				curr := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				count++

				cx := curr % w
				cy := curr / w
				if cx < minX {
					minX = cx
				}
				if cx > maxX {
					maxX = cx
				}
				if cy < minY {
					minY = cy
				}
				if cy > maxY {
					maxY = cy
				}

				push := func(ni int) {
					if !visited[ni] && r.Pix[ni*4+3] >= opaqueThreshold {
						visited[ni] = true
						stack = append(stack, ni)
					}
				}
				if cx > 0 {
					push(curr - 1)
				}
				if cx < w-1 {
					push(curr + 1)
				}
				if cy > 0 {
					push(curr - w)
				}
				if cy < h-1 {
					push(curr + w)
				}
			}

			if count < minRegionPixels {
				continue
			}

			boxes = append(boxes, padAndClamp(minX, minY, maxX, maxY, w, h))
		}
	}

	return boxes
}

// padAndClamp expands a component extent by boxPadding per side while
// keeping the box inside the raster.
func padAndClamp(minX, minY, maxX, maxY, w, h int) Box {
	x := max(0, minX-boxPadding)
	y := max(0, minY-boxPadding)
	bw := min(maxX-minX+1+2*boxPadding, w-x)
	bh := min(maxY-minY+1+2*boxPadding, h-y)
	return Box{X: x, Y: y, Width: bw, Height: bh}
}
