package layout

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMismatch is returned when the number of placed labels
// differs from the number of usable pixels.
var ErrMismatch = errors.New("label count does not match usable pixels")

// MiniLayout assigns a label to every usable pixel of c,
// and returns the pixels in canvas coordinates.
//
// Classes get pixels according to Allocate and contend, then the
// labels are matched to pixels by recursive median bisection so
// that labels placed near each other end up near each other.
func (c *Cluster) MiniLayout() ([]Pixel, error) {
	cells := c.Usable()
	if len(cells) == 0 {
		return nil, nil
	}

	c.layout = make([]entry, 0, len(cells))
	if len(c.Classes) == 1 {
		var label int
		for l := range c.Classes {
			label = l
		}
		for _, k := range cells {
			c.layout = append(c.layout, c.local(k, label))
		}
		return c.pixels(), nil
	}

	c.Allocate()
	tags, err := c.contend(cells)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(cells) {
		return nil, fmt.Errorf("%d labels for %d pixels: %w", len(tags), len(cells), ErrMismatch)
	}

	local := make([]CellKey, len(cells))
	for i, k := range cells {
		local[i] = CellKey{k.Row - c.Origin.Row, k.Col - c.Origin.Col}
	}
	c.layout = bisect(tags, local, c.layout)
	return c.pixels(), nil
}

func (c *Cluster) local(k CellKey, label int) entry {
	return entry{DY: k.Row - c.Origin.Row, DX: k.Col - c.Origin.Col, Label: label}
}

func (c *Cluster) pixels() []Pixel {
	v := make([]Pixel, len(c.layout))
	for i, e := range c.layout {
		v[i] = Pixel{
			X:     c.Origin.Col + e.DX,
			Y:     c.Origin.Row + e.DY,
			Label: e.Label,
		}
	}
	return v
}

// bisect matches tags to cells, which must have the same length.
// It splits the cells along their longer side at the median
// position of the tags, and recurses on both halves.
func bisect(tags []entry, cells []CellKey, out []entry) []entry {
	switch len(tags) {
	case 0:
		return out
	case 1:
		return append(out, entry{DY: cells[0].Row, DX: cells[0].Col, Label: tags[0].Label})
	}

	r0, r1 := cells[0].Row, cells[0].Row
	c0, c1 := cells[0].Col, cells[0].Col
	for _, k := range cells[1:] {
		r0, r1 = min(r0, k.Row), max(r1, k.Row)
		c0, c1 = min(c0, k.Col), max(c1, k.Col)
	}

	mid := len(tags) / 2
	var one, two []CellKey
	if r1-r0 >= c1-c0 {
		sort.SliceStable(tags, func(i, j int) bool { return tags[i].DY < tags[j].DY })
		line := clamp(tags[mid].DY, r0, r1)
		one, two = splitCells(cells, func(k CellKey) bool { return k.Row <= line })
		if len(one) == 0 || len(two) == 0 {
			one, two = splitCells(cells, func(k CellKey) bool { return k.Row < line })
		}
	} else {
		sort.SliceStable(tags, func(i, j int) bool { return tags[i].DX < tags[j].DX })
		line := clamp(tags[mid].DX, c0, c1)
		one, two = splitCells(cells, func(k CellKey) bool { return k.Col < line })
		if len(one) == 0 || len(two) == 0 {
			one, two = splitCells(cells, func(k CellKey) bool { return k.Col <= line })
		}
	}

	n := len(one)
	out = bisect(tags[:n], one, out)
	return bisect(tags[n:], two, out)
}

func splitCells(cells []CellKey, first func(k CellKey) bool) (one, two []CellKey) {
	for _, k := range cells {
		if first(k) {
			one = append(one, k)
		} else {
			two = append(two, k)
		}
	}
	return one, two
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
