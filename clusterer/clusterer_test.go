package clusterer

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/tajtiattila/pixelmap/quadtree"
)

func TestComponents(t *testing.T) {
	tests := []struct {
		mesh string
		want []string
	}{
		{
			mesh: "X.X|.X.|...|XX.",
			want: []string{"0,0 1,1 0,2", "3,0 3,1"},
		},
		{
			// equal sized groups merge into the earlier one
			mesh: "X..X|.XX.",
			want: []string{"0,0 1,1 0,3 1,2"},
		},
		{
			mesh: "X.X.X|.....|X.X.X",
			want: []string{"0,0", "0,2", "0,4", "2,0", "2,2", "2,4"},
		},
		{
			mesh: ".X|X.",
			want: []string{"0,1 1,0"},
		},
		{
			mesh: "X.|.X",
			want: []string{"0,0 1,1"},
		},
		{
			mesh: "....",
			want: nil,
		},
	}
	for _, tt := range tests {
		m := parseMesh(tt.mesh)
		comps := Components(m)
		var got []string
		for _, c := range comps {
			got = append(got, cellString(c.Cells))
			testBounds(t, tt.mesh, c)
		}
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("Components(%q) yields %q, want %q", tt.mesh, got, tt.want)
		}
	}
}

func TestComponentsIsolated(t *testing.T) {
	var pts []quadtree.Point
	for _, p := range [][2]float64{{0, 0}, {5, 2}, {2, 8}, {9, 9}, {7, 5}} {
		pts = append(pts,
			quadtree.Point{X: p[0] + 0.2, Y: p[1] + 0.2},
			quadtree.Point{X: p[0] + 0.7, Y: p[1] + 0.3},
			quadtree.Point{X: p[0] + 0.6, Y: p[1] + 0.9, Label: 1},
		)
	}
	m := quadtree.Grid(pts, 10, 10, 0)
	comps := Components(m)
	if len(comps) != 5 {
		t.Fatalf("mesh should have %d components, not %d", 5, len(comps))
	}
	for _, c := range comps {
		if len(c.Cells) != 1 {
			t.Errorf("isolated component has %d cells", len(c.Cells))
		}
	}

	pcomps := Components(m.Partition())
	if len(pcomps) != len(comps) {
		t.Fatalf("partitioned mesh has %d components, want %d", len(pcomps), len(comps))
	}
	for i, c := range pcomps {
		if len(c.Cells) != 3 {
			t.Errorf("component %d has %d cells after partition, want 3", i, len(c.Cells))
		}
		x, y := c.Cells[0].X, c.Cells[0].Y
		if math.Floor(x) != comps[i].Cells[0].X || math.Floor(y) != comps[i].Cells[0].Y {
			t.Errorf("component %d moved from %v,%v to %v,%v", i,
				comps[i].Cells[0].X, comps[i].Cells[0].Y, x, y)
		}
	}
}

func TestKurtosis(t *testing.T) {
	tests := []struct {
		v    []float64
		want float64
	}{
		{[]float64{5, 5, 5, 5}, -3},
		{[]float64{7}, -3},
		{[]float64{1, 2, 3, 4, 5}, -1.3},
		{[]float64{5, 3, 4, 1, 2}, -1.3},
		{[]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 100}, 7},
	}
	for _, tt := range tests {
		got := Kurtosis(tt.v)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Kurtosis(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}

	if m := median([]float64{3, 1, 2, 4}); m != 2.5 {
		t.Errorf("median = %v, want 2.5", m)
	}
}

func TestRefine(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	var pts []quadtree.Point
	// dense blob in a sparse field
	for i := 0; i < 2000; i++ {
		pts = append(pts, quadtree.Point{
			X:     30 + r.NormFloat64()*2,
			Y:     30 + r.NormFloat64()*2,
			Label: r.Intn(2),
		})
	}
	for i := 0; i < 200; i++ {
		pts = append(pts, quadtree.Point{
			X:     r.Float64() * 63.9,
			Y:     r.Float64() * 63.9,
			Label: 2,
		})
	}
	for i := range pts {
		pts[i].X = math.Max(0, math.Min(63.9, pts[i].X))
		pts[i].Y = math.Max(0, math.Min(63.9, pts[i].Y))
	}

	tests := []struct {
		init, max int
		kurt      float64
	}{
		{-2, 2, 10},
		{-2, 2, -10},
		{-2, -2, -10},
		{0, 3, 1},
	}
	for _, tt := range tests {
		groups := Refine(quadtree.Grid(pts, 64, 64, tt.init), tt.max, tt.kurt)
		n := 0
		for _, g := range groups {
			lvl := g[0].Level
			for _, c := range g {
				n += len(c.Points)
				if c.Level != lvl {
					t.Errorf("group has mixed levels %d and %d", lvl, c.Level)
				}
			}
			if lvl < tt.init || lvl > max(tt.max, tt.init) {
				t.Errorf("group level %d outside %d..%d", lvl, tt.init, tt.max)
			}
			if tt.kurt < -3 && len(g) > 1 && lvl < tt.max {
				t.Errorf("group with %d cells finalized at level %d", len(g), lvl)
			}
		}
		if n != len(pts) {
			t.Errorf("Refine(%d, %d, %v) yields %d points, want %d", tt.init, tt.max, tt.kurt, n, len(pts))
		}

		again := Refine(quadtree.Grid(pts, 64, 64, tt.init), tt.max, tt.kurt)
		if groupString(again) != groupString(groups) {
			t.Errorf("Refine(%d, %d, %v) is not deterministic", tt.init, tt.max, tt.kurt)
		}
	}
}

func TestRefineMaxLevel(t *testing.T) {
	pts := []quadtree.Point{
		{X: 0.1, Y: 0.1}, {X: 1.1, Y: 1.1}, {X: 1.2, Y: 1.3}, {X: 1.6, Y: 1.8},
	}
	groups := Refine(quadtree.Grid(pts, 4, 4, -1), -1, -10)
	if len(groups) != 1 || len(groups[0]) != 1 {
		t.Fatalf("Refine at max level yields %s", groupString(groups))
	}
	if len(groups[0][0].Points) != len(pts) {
		t.Errorf("group has %d points, want %d", len(groups[0][0].Points), len(pts))
	}
}

// parseMesh creates a mesh from rows separated by '|',
// where 'X' marks a populated cell.
func parseMesh(s string) *quadtree.Mesh {
	rows := strings.Split(s, "|")
	m := quadtree.NewMesh(len(rows), len(rows[0]))
	for i, row := range rows {
		for j, ch := range row {
			if ch == 'X' {
				m.Set(i, j, &quadtree.Cell{
					X: float64(j), Y: float64(i), W: 1, H: 1,
					Points: []quadtree.Point{{X: float64(j), Y: float64(i)}},
				})
			}
		}
	}
	return m
}

// testBounds checks that c.Mesh holds exactly the cells of c.
func testBounds(t *testing.T, name string, c Component) {
	if c.Mesh.Len() != len(c.Cells) {
		t.Errorf("%s: sub-mesh has %d cells, want %d", name, c.Mesh.Len(), len(c.Cells))
	}
	seen := make(map[*quadtree.Cell]bool)
	c.Mesh.Each(func(row, col int, cell *quadtree.Cell) {
		seen[cell] = true
		if int(cell.Y) != c.Row+row || int(cell.X) != c.Col+col {
			t.Errorf("%s: cell at %v,%v stored at %d,%d", name, cell.Y, cell.X, c.Row+row, c.Col+col)
		}
	})
	for _, cell := range c.Cells {
		if !seen[cell] {
			t.Errorf("%s: cell at %v,%v missing from sub-mesh", name, cell.Y, cell.X)
		}
	}
	var rmin, cmin = math.Inf(1), math.Inf(1)
	for _, cell := range c.Cells {
		rmin = math.Min(rmin, cell.Y)
		cmin = math.Min(cmin, cell.X)
	}
	if int(rmin) != c.Row || int(cmin) != c.Col {
		t.Errorf("%s: sub-mesh at %d,%d, want %v,%v", name, c.Row, c.Col, rmin, cmin)
	}
}

func cellString(cells []*quadtree.Cell) string {
	var parts []string
	for _, c := range cells {
		parts = append(parts, fmt.Sprintf("%v,%v", c.Y, c.X))
	}
	return strings.Join(parts, " ")
}

func groupString(groups [][]*quadtree.Cell) string {
	var parts []string
	for _, g := range groups {
		parts = append(parts, "["+cellString(g)+"]")
	}
	return strings.Join(parts, " ")
}
