package clusterer

import (
	"github.com/tajtiattila/pixelmap/quadtree"
)

// Component is a connected group of populated mesh cells.
type Component struct {
	// Mesh is the minimal bounding sub-mesh of the component.
	Mesh *quadtree.Mesh

	// Row and Col is the position of Mesh within the mesh
	// it was extracted from.
	Row, Col int

	// Cells holds the cells of the component in the order
	// they joined it.
	Cells []*quadtree.Cell
}

// Level reports the level of the cells in c.
func (c Component) Level() int {
	return c.Cells[0].Level
}

// Counts returns the number of points in each cell of c.
func (c Component) Counts() []float64 {
	v := make([]float64, len(c.Cells))
	for i, cell := range c.Cells {
		v[i] = float64(len(cell.Points))
	}
	return v
}

// Components finds the connected components of populated cells in m.
//
// Cells are visited in row-major order, and each cell is connected
// to its populated neighbours right, down-left, down and down-right.
// When two groups meet, members of the smaller one are moved
// to the larger one. Groups are returned in the order they were created.
func Components(m *quadtree.Mesh) []Component {
	type ent struct {
		row, col int
		group    int
	}

	// flat index of populated cells in scan order
	var pts []ent
	idx := make(map[int]int, m.Len())
	m.Each(func(row, col int, c *quadtree.Cell) {
		idx[row*m.Cols+col] = len(pts)
		pts = append(pts, ent{row: row, col: col, group: -1})
	})

	var grps [][]int
	for i := range pts {
		ei := &pts[i]
		if ei.group == -1 {
			ei.group = len(grps)
			grps = append(grps, []int{i})
		}
		cur := ei.group
		for dx := -1; dx < 2; dx++ {
			for dy := 0; dy < 2; dy++ {
				if dy == 0 && dx < 1 {
					continue
				}
				r, c := ei.row+dy, ei.col+dx
				if c < 0 || c >= m.Cols || r >= m.Rows {
					continue
				}
				j, ok := idx[r*m.Cols+c]
				if !ok {
					continue
				}
				ej := &pts[j]
				switch {
				case ej.group == -1:
					ej.group = cur
					grps[cur] = append(grps[cur], j)
				case ej.group == cur:
					// already joined
				default:
					ogrp := ej.group
					if len(grps[ogrp]) > len(grps[cur]) {
						cur, ogrp = ogrp, cur
					}
					for _, k := range grps[ogrp] {
						pts[k].group = cur
					}
					grps[cur] = append(grps[cur], grps[ogrp]...)
					grps[ogrp] = nil
				}
			}
		}
	}

	var res []Component
	for _, g := range grps {
		if len(g) == 0 {
			// merged into another group
			continue
		}
		rmin, rmax := pts[g[0]].row, pts[g[0]].row
		cmin, cmax := pts[g[0]].col, pts[g[0]].col
		for _, i := range g[1:] {
			rmin = min(rmin, pts[i].row)
			rmax = max(rmax, pts[i].row)
			cmin = min(cmin, pts[i].col)
			cmax = max(cmax, pts[i].col)
		}
		comp := Component{
			Mesh:  quadtree.NewMesh(rmax-rmin+1, cmax-cmin+1),
			Row:   rmin,
			Col:   cmin,
			Cells: make([]*quadtree.Cell, 0, len(g)),
		}
		for _, i := range g {
			e := pts[i]
			cell := m.At(e.row, e.col)
			comp.Mesh.Set(e.row-rmin, e.col-cmin, cell)
			comp.Cells = append(comp.Cells, cell)
		}
		res = append(res, comp)
	}
	return res
}
