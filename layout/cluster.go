package layout

import (
	"math"

	"github.com/tajtiattila/pixelmap/quadtree"
)

// CellKey identifies a pixel of the canvas.
type CellKey struct {
	Row, Col int
}

// Pixel is a canvas pixel with the label drawn there.
type Pixel struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Label int `json:"label"`
}

// Params holds the settings shared by all clusters of a render.
type Params struct {
	// canvas size in pixels
	Width, Height int

	// fraction of points non-outlier classes should represent, 0.5..1
	NonOutlierMass float64

	// maximum boost for outlier classes, at least 1
	OutlierEmphasis float64
}

// Cluster is a finalized group of cells.
//
// Its usable area shrinks as cells are excluded by overlap resolution
// and density culling. Excluded cells are kept in Fixed and remain
// available to contention as low priority candidates.
type Cluster struct {
	Origin CellKey // smallest row and column of the cluster
	Level  int
	Points int

	Classes map[int]int // point count by label

	// Prefer is the point count by label for every pixel
	// touched by a point of the cluster.
	Prefer map[CellKey]map[int]int

	Tolerance float64
	Emphasis  float64

	// area holds the pixels covered by the cells,
	// pointArea the pixels touched by the points.
	// They differ only at negative levels.
	area      keySet
	pointArea keySet

	initialArea int

	excluded map[CellKey]bool
	Fixed    []CellKey

	Budget map[int]int

	layout []entry
}

// keySet is a set of cells keeping insertion order.
type keySet struct {
	keys []CellKey
	has  map[CellKey]bool
}

func (s *keySet) add(k CellKey) bool {
	if s.has == nil {
		s.has = make(map[CellKey]bool)
	}
	if s.has[k] {
		return false
	}
	s.has[k] = true
	s.keys = append(s.keys, k)
	return true
}

func (s *keySet) len() int { return len(s.keys) }

// Claims records the clusters covering each pixel at non-negative levels.
type Claims struct {
	owners    map[CellKey][]int
	contested []CellKey
}

func (cl *Claims) claim(k CellKey, idx int) {
	v := cl.owners[k]
	if len(v) != 0 && v[len(v)-1] == idx {
		return
	}
	cl.owners[k] = append(v, idx)
	if len(v) == 1 {
		cl.contested = append(cl.contested, k)
	}
}

// Contested returns the pixels claimed by more than one cluster
// in the order they were detected.
func (cl *Claims) Contested() []CellKey {
	return cl.contested
}

// Owners returns the indices of the clusters claiming k.
func (cl *Claims) Owners(k CellKey) []int {
	return cl.owners[k]
}

// Build creates a cluster for each group of cells.
func Build(groups [][]*quadtree.Cell, p Params) ([]*Cluster, *Claims) {
	claims := &Claims{owners: make(map[CellKey][]int)}
	clusters := make([]*Cluster, 0, len(groups))
	for i, g := range groups {
		c := newCluster(g, p)
		if c.Level >= 0 {
			for _, k := range c.area.keys {
				claims.claim(k, i)
			}
		}
		clusters = append(clusters, c)
	}
	return clusters, claims
}

func newCluster(cells []*quadtree.Cell, p Params) *Cluster {
	c := &Cluster{
		Level:    cells[0].Level,
		Classes:  make(map[int]int),
		Prefer:   make(map[CellKey]map[int]int),
		Emphasis: p.OutlierEmphasis,
		excluded: make(map[CellKey]bool),
	}
	for _, cell := range cells {
		if cell.Level < 0 {
			y0, y1 := int(cell.Y), min(int(cell.Y+cell.H), p.Height)
			x0, x1 := int(cell.X), min(int(cell.X+cell.W), p.Width)
			for gy := y0; gy < y1; gy++ {
				for gx := x0; gx < x1; gx++ {
					c.area.add(CellKey{gy, gx})
				}
			}
			for _, pt := range cell.Points {
				c.pointArea.add(pixelOf(pt))
			}
		} else {
			c.area.add(CellKey{int(math.Floor(cell.Y)), int(math.Floor(cell.X))})
		}
		for _, pt := range cell.Points {
			k := pixelOf(pt)
			m := c.Prefer[k]
			if m == nil {
				m = make(map[int]int)
				c.Prefer[k] = m
			}
			m[pt.Label]++
			c.Classes[pt.Label]++
			c.Points++
		}
	}

	c.Origin = CellKey{math.MaxInt, math.MaxInt}
	for _, s := range []*keySet{&c.area, &c.pointArea} {
		for _, k := range s.keys {
			c.Origin.Row = min(c.Origin.Row, k.Row)
			c.Origin.Col = min(c.Origin.Col, k.Col)
		}
	}

	if n := float64(len(c.Classes)); n > 1 {
		c.Tolerance = (1 - p.NonOutlierMass) * n / (n - 1)
	}
	c.initialArea = c.area.len()
	return c
}

func pixelOf(p quadtree.Point) CellKey {
	return CellKey{int(math.Floor(p.Y)), int(math.Floor(p.X))}
}

// Exclude removes k from the usable area of c permanently.
func (c *Cluster) Exclude(k CellKey) {
	if c.excluded[k] {
		return
	}
	c.excluded[k] = true
	c.Fixed = append(c.Fixed, k)
}

// Excluded reports whether k was excluded from c.
func (c *Cluster) Excluded(k CellKey) bool {
	return c.excluded[k]
}

// Area returns the pixels covered by the cells of c
// that are not excluded.
func (c *Cluster) Area() []CellKey {
	return c.filter(&c.area)
}

// Usable returns the pixels available for the layout of c.
// At negative levels it is the pixels touched by points,
// otherwise it is the same as Area.
func (c *Cluster) Usable() []CellKey {
	if c.Level < 0 {
		return c.filter(&c.pointArea)
	}
	return c.filter(&c.area)
}

func (c *Cluster) filter(s *keySet) []CellKey {
	v := make([]CellKey, 0, s.len())
	for _, k := range s.keys {
		if !c.excluded[k] {
			v = append(v, k)
		}
	}
	return v
}

// weight returns the total point count at k.
func (c *Cluster) weight(k CellKey) int {
	n := 0
	for _, v := range c.Prefer[k] {
		n += v
	}
	return n
}

// round rounds half values up.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}
