package quadtree

import (
	"math"
	"sort"
)

// Point is a labeled data point in canvas coordinates.
type Point struct {
	X, Y  float64
	Label int

	// offset within the enclosing cell, rewritten by Split
	lx, ly float64
}

// Cell is a square region of the canvas.
// A cell at Level L has an edge length of 2^-L canvas pixels,
// so level 0 cells are exactly one pixel.
type Cell struct {
	X, Y   float64 // top left corner
	W, H   float64
	Level  int
	Points []Point
}

// Size returns the edge length of cells at level.
func Size(level int) float64 {
	return math.Pow(2, float64(-level))
}

// insert adds p to c. The local offset of p is measured from the
// corner of the grid cell (row, col) of size s that c occupies.
func (c *Cell) insert(p Point, s float64, row, col int) {
	p.lx = p.X - float64(col)*s
	p.ly = p.Y - float64(row)*s
	c.Points = append(c.Points, p)
}

// Split quarters c into its children:
//
//	0 | 1
//	--+--
//	2 | 3
//
// Each point goes to the quadrant its local offset falls into.
// Children without points are nil.
func (c *Cell) Split() [4]*Cell {
	dx, dy := c.W/2, c.H/2
	var ch [4]*Cell
	for _, p := range c.Points {
		qi := quad(p, dx, dy)
		if ch[qi] == nil {
			ch[qi] = &Cell{
				X:     c.X + dx*float64(qi%2),
				Y:     c.Y + dy*float64(qi/2),
				W:     dx,
				H:     dy,
				Level: c.Level + 1,
			}
		}
		p.lx = math.Mod(p.lx, dx)
		p.ly = math.Mod(p.ly, dy)
		ch[qi].Points = append(ch[qi].Points, p)
	}
	return ch
}

// quad reports which quadrant p is in
// within a cell having half extents dx, dy.
func quad(p Point, dx, dy float64) (qi int) {
	if p.lx >= dx {
		qi++
	}
	if p.ly >= dy {
		qi += 2
	}
	return qi
}

// Mesh is a sparse Rows × Cols matrix of cells sharing the same level.
type Mesh struct {
	Rows, Cols int

	cells map[int]*Cell // key is row*Cols+col
}

// NewMesh creates an empty mesh.
func NewMesh(rows, cols int) *Mesh {
	return &Mesh{
		Rows:  rows,
		Cols:  cols,
		cells: make(map[int]*Cell),
	}
}

// Grid creates the initial mesh covering a w × h canvas
// with cells at level. Points must be within the canvas.
func Grid(pts []Point, w, h float64, level int) *Mesh {
	s := Size(level)
	m := NewMesh(int(math.Ceil(h/s)), int(math.Ceil(w/s)))
	for _, p := range pts {
		col := int(math.Floor(p.X / s))
		row := int(math.Floor(p.Y / s))
		c := m.At(row, col)
		if c == nil {
			c = &Cell{
				X:     float64(col) * s,
				Y:     float64(row) * s,
				W:     s,
				H:     s,
				Level: level,
			}
			m.Set(row, col, c)
		}
		c.insert(p, s, row, col)
	}
	return m
}

// At returns the cell at row, col or nil if there is none.
func (m *Mesh) At(row, col int) *Cell {
	if row < 0 || row >= m.Rows || col < 0 || col >= m.Cols {
		return nil
	}
	return m.cells[row*m.Cols+col]
}

// Set stores c at row, col. It panics if row, col is outside m.
func (m *Mesh) Set(row, col int, c *Cell) {
	if row < 0 || row >= m.Rows || col < 0 || col >= m.Cols {
		panic("quadtree: mesh position out of range")
	}
	if c == nil {
		delete(m.cells, row*m.Cols+col)
		return
	}
	m.cells[row*m.Cols+col] = c
}

// Len returns the number of populated cells.
func (m *Mesh) Len() int {
	return len(m.cells)
}

// Level returns the level of the cells in m,
// and false if m has no cells.
func (m *Mesh) Level() (int, bool) {
	for _, c := range m.cells {
		return c.Level, true
	}
	return 0, false
}

// Each calls f for all populated cells in row-major order.
func (m *Mesh) Each(f func(row, col int, c *Cell)) {
	keys := make([]int, 0, len(m.cells))
	for k := range m.cells {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		f(k/m.Cols, k%m.Cols, m.cells[k])
	}
}

// Partition splits every cell in m, and returns the children
// in a new mesh with twice the rows and columns of m.
func (m *Mesh) Partition() *Mesh {
	pm := NewMesh(m.Rows*2, m.Cols*2)
	m.Each(func(row, col int, c *Cell) {
		for qi, child := range c.Split() {
			if child != nil {
				pm.Set(row*2+qi/2, col*2+qi%2, child)
			}
		}
	})
	return pm
}
