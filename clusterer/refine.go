package clusterer

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/tajtiattila/pixelmap/quadtree"
)

// Refine clusters m, and splits components that are still uneven
// until every component is final. A component is final when it
// has a single cell, its level is at least maxLevel, or the
// excess kurtosis of its cell point counts is at most maxKurtosis.
//
// The cells of the final components are returned in the order
// they were found. Components are processed level by level.
func Refine(m *quadtree.Mesh, maxLevel int, maxKurtosis float64) [][]*quadtree.Cell {
	var done [][]*quadtree.Cell
	meshes := []*quadtree.Mesh{m}
	for len(meshes) != 0 {
		var split []*quadtree.Mesh
		for _, mesh := range meshes {
			for _, c := range Components(mesh) {
				if isFinal(c, maxLevel, maxKurtosis) {
					done = append(done, c.Cells)
				} else {
					split = append(split, c.Mesh)
				}
			}
		}
		meshes = meshes[:0]
		for _, mesh := range split {
			meshes = append(meshes, mesh.Partition())
		}
	}
	return done
}

func isFinal(c Component, maxLevel int, maxKurtosis float64) bool {
	return len(c.Cells) == 1 ||
		c.Level() >= maxLevel ||
		Kurtosis(c.Counts()) <= maxKurtosis
}

// Kurtosis returns the excess kurtosis of v, using the median
// as the center instead of the mean.
//
// A list without spread has kurtosis -3, the limit of the
// formula as the fourth moment vanishes.
func Kurtosis(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	med := median(v)
	n := float64(len(v))

	d := make([]float64, len(v))
	for i, x := range v {
		d[i] = (x - med) * (x - med)
	}
	std := math.Sqrt(floats.Sum(d) / n)
	if std == 0 {
		return -3
	}

	for i, x := range v {
		z := (x - med) / std
		d[i] = z * z * z * z
	}
	return floats.Sum(d)/n - 3
}

// median returns the 0.5 quantile of v using
// linear interpolation between closest ranks.
func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	h := float64(len(s)-1) * 0.5
	i := int(math.Floor(h))
	if i+1 >= len(s) {
		return s[i]
	}
	return s[i] + (h-float64(i))*(s[i+1]-s[i])
}
