package gridsheet

// scrollThumb sizes a scrollbar thumb within a track: proportional to the
// visible share of the content, never smaller than one cell, positioned
// so the full scroll range maps onto the full track travel.
func scrollThumb(track, content, viewport, offset int) (pos, length int) {
	if track <= 0 {
		return 0, 0
	}
	if content <= viewport {
		return 0, track
	}
	length = max(1, track*viewport/content)
	maxPos := track - length
	maxOff := content - viewport
	pos = offset * maxPos / maxOff
	pos = clamp(pos, 0, maxPos)
	return pos, length
}

// thumbToOffset is the inverse mapping used while dragging a thumb: a
// thumb position back to a content offset.
func thumbToOffset(track, content, viewport, pos, length int) int {
	maxPos := track - length
	if maxPos <= 0 {
		return 0
	}
	maxOff := content - viewport
	return clamp(pos*maxOff/maxPos, 0, maxOff)
}

// vThumbRect returns the vertical scrollbar thumb rect for the frame.
func (f *gridFrame) vThumbRect() Rect {
	bar := f.lay.vBar
	if bar.Empty() {
		return Rect{}
	}
	pos, length := scrollThumb(bar.H, f.met.total, f.lay.body.H, f.scrollY)
	return Rect{X: bar.X, Y: bar.Y + pos, W: bar.W, H: length}
}

// hThumbRect returns the horizontal scrollbar thumb rect for the frame.
func (f *gridFrame) hThumbRect() Rect {
	bar := f.lay.hBar
	if bar.Empty() {
		return Rect{}
	}
	viewW := f.lay.body.W - f.lay.pinnedWidth
	pos, length := scrollThumb(bar.W-f.lay.pinnedWidth, f.lay.scrollContentW, viewW, f.scrollX)
	return Rect{X: bar.X + f.lay.pinnedWidth + pos, Y: bar.Y, W: length, H: bar.H}
}
