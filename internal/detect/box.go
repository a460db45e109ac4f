package detect

// Box is an axis-aligned region in source-raster coordinates.
// Invariant after clamping: X, Y >= 0, X+W <= raster width, Y+H <= raster height.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Overlaps reports strict area overlap. Boxes that merely share an edge
// do not overlap.
func (a Box) Overlaps(b Box) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

// Union returns the minimal box covering both a and b.
func (a Box) Union(b Box) Box {
	x := min(a.X, b.X)
	y := min(a.Y, b.Y)
	return Box{
		X:      x,
		Y:      y,
		Width:  max(a.X+a.Width, b.X+b.Width) - x,
		Height: max(a.Y+a.Height, b.Y+b.Height) - y,
	}
}
