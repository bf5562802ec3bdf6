// Package cursor keeps a focused row visible in a scrolling list.
package cursor

// Cursor holds the focused row and the scroll offset of a list. The list
// length and viewport height are passed to methods rather than stored,
// since they can change dynamically.
type Cursor struct {
	pos    int // focused row (0-indexed)
	offset int // first visible row
	margin int // rows kept visible above/below the focused one
}

// New creates a Cursor with the specified scroll margin.
func New(margin int) Cursor {
	return Cursor{margin: margin}
}

// Pos returns the focused row.
func (c Cursor) Pos() int {
	return c.pos
}

// Offset returns the current scroll offset.
func (c Cursor) Offset() int {
	return c.offset
}

// Jump focuses pos, clamped to the list, and scrolls it into view.
// If listLen is 0, this is a no-op.
func (c *Cursor) Jump(pos, listLen, height int) {
	if listLen == 0 {
		return
	}
	c.pos = clamp(pos, listLen-1)
	c.EnsureVisible(listLen, height)
}

// EnsureVisible adjusts the scroll offset to keep the focused row and its
// margin on screen. Call it after the viewport is resized.
func (c *Cursor) EnsureVisible(listLen, height int) {
	if height <= 0 || listLen == 0 {
		return
	}
	margin := min(c.margin, (height-1)/2)

	if c.pos < c.offset+margin {
		c.offset = max(c.pos-margin, 0)
	}
	if c.pos >= c.offset+height-margin {
		c.offset = c.pos - height + margin + 1
	}

	c.offset = clamp(c.offset, max(listLen-height, 0))
}

// VisibleRange returns the range of visible indices [start, end).
func (c Cursor) VisibleRange(listLen, height int) (start, end int) {
	if listLen == 0 || height <= 0 {
		return 0, 0
	}
	start = min(c.offset, listLen)
	end = min(c.offset+height, listLen)
	return start, end
}

func clamp(v, maxVal int) int {
	if v < 0 {
		return 0
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
