package scatter

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tajtiattila/pixelmap/quadtree"
)

// Margin keeps scaled points off the right and bottom canvas edges.
const Margin = 1e-6

// Scale maps pts linearly onto a w × h canvas, so that the extremes
// touch the canvas edges. If all points share a coordinate, they are
// put in the middle of the canvas along that axis.
// The result is a new slice.
func Scale(pts []quadtree.Point, w, h int) []quadtree.Point {
	if len(pts) == 0 {
		return nil
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	sx := linear(floats.Min(xs), floats.Max(xs), float64(w)-Margin)
	sy := linear(floats.Min(ys), floats.Max(ys), float64(h)-Margin)

	res := make([]quadtree.Point, len(pts))
	for i, p := range pts {
		res[i] = quadtree.Point{X: sx(p.X), Y: sy(p.Y), Label: p.Label}
	}
	return res
}

// linear returns a function mapping lo..hi to 0..r.
func linear(lo, hi, r float64) func(float64) float64 {
	d := hi - lo
	if d == 0 {
		return func(float64) float64 { return r / 2 }
	}
	if math.IsInf(d, 0) {
		// span overflows, work with halves
		d = hi/2 - lo/2
		return func(v float64) float64 {
			return math.Min(r, math.Max(0, (v/2-lo/2)/d*r))
		}
	}
	return func(v float64) float64 {
		return math.Min(r, math.Max(0, (v-lo)/d*r))
	}
}
