package video

// Rect is a placement on a frame in luma pixels.
type Rect struct {
	X, Y int
	W, H int
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Intersect clips r to the frame bounds. The result may be empty.
func (r Rect) Intersect(width, height int) Rect {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.X+r.W, width), min(r.Y+r.H, height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Fill paints the whole frame with c.
func (f *Frame) Fill(c Color) {
	y, u, v := c.YUV()
	fillBytes(f.Y(), y)
	fillBytes(f.U(), u)
	fillBytes(f.V(), v)
}

// FillRect paints r, clipped to the frame, with c.
func (f *Frame) FillRect(r Rect, c Color) {
	clip := r.Intersect(f.Width, f.Height)
	if clip.Empty() {
		return
	}
	y, u, v := c.YUV()

	luma := f.Y()
	for row := clip.Y; row < clip.Y+clip.H; row++ {
		off := row*f.Width + clip.X
		fillBytes(luma[off:off+clip.W], y)
	}

	cw, _ := ChromaSize(f.Width, f.Height)
	cx0, cy0 := clip.X/2, clip.Y/2
	cx1, cy1 := (clip.X+clip.W+1)/2, (clip.Y+clip.H+1)/2
	up, vp := f.U(), f.V()
	for row := cy0; row < cy1; row++ {
		off := row * cw
		fillBytes(up[off+cx0:off+cx1], u)
		fillBytes(vp[off+cx0:off+cx1], v)
	}
}

// Draw samples src through m into rectangle r of f. m must have been built
// for src's size and r's size; pixels of r outside f are skipped.
func (f *Frame) Draw(src *Frame, r Rect, m *ScaleMap) {
	clip := r.Intersect(f.Width, f.Height)
	if clip.Empty() {
		return
	}

	dstY, srcY := f.Y(), src.Y()
	for row := clip.Y; row < clip.Y+clip.H; row++ {
		srcRow := srcY[m.Y[row-r.Y]*src.Width:]
		dstRow := dstY[row*f.Width:]
		for col := clip.X; col < clip.X+clip.W; col++ {
			dstRow[col] = srcRow[m.X[col-r.X]]
		}
	}

	// Chroma: r starts at chroma column r.X>>1 with parity r.X&1 (arithmetic
	// shift keeps this right for negative offsets).
	dcw, dch := ChromaSize(f.Width, f.Height)
	scw, _ := ChromaSize(src.Width, src.Height)
	px, py := r.X&1, r.Y&1
	mapX, mapY := m.ChromaX[px], m.ChromaY[py]
	baseX, baseY := r.X>>1, r.Y>>1

	cx0, cx1 := max(baseX, 0), min(baseX+len(mapX), dcw)
	cy0, cy1 := max(baseY, 0), min(baseY+len(mapY), dch)
	// Keep chroma inside the clipped luma span so neighbouring regions drawn
	// earlier are not overwritten by a half-pixel overhang.
	cx0, cx1 = max(cx0, clip.X/2), min(cx1, (clip.X+clip.W+1)/2)
	cy0, cy1 = max(cy0, clip.Y/2), min(cy1, (clip.Y+clip.H+1)/2)

	dstU, dstV := f.U(), f.V()
	srcU, srcV := src.U(), src.V()
	for row := cy0; row < cy1; row++ {
		so := mapY[row-baseY] * scw
		do := row * dcw
		for col := cx0; col < cx1; col++ {
			sx := mapX[col-baseX]
			dstU[do+col] = srcU[so+sx]
			dstV[do+col] = srcV[so+sx]
		}
	}
}

func fillBytes(b []byte, v byte) {
	if len(b) == 0 {
		return
	}
	b[0] = v
	for filled := 1; filled < len(b); filled *= 2 {
		copy(b[filled:], b[:filled])
	}
}
