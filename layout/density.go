package layout

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Observation is a value with its weight in a histogram.
type Observation struct {
	Value, Weight float64
}

// EqualizeHist maps each distinct value in obs to the fraction of
// total weight at or below it. If the total weight is zero,
// every value maps to 1.
func EqualizeHist(obs []Observation) map[float64]float64 {
	bins := make(map[float64]float64)
	for _, o := range obs {
		bins[o.Value] += o.Weight
	}
	values := make([]float64, 0, len(bins))
	weights := make([]float64, 0, len(bins))
	for v := range bins {
		values = append(values, v)
	}
	sort.Float64s(values)
	for _, v := range values {
		weights = append(weights, bins[v])
	}

	floats.CumSum(weights, weights)
	res := make(map[float64]float64, len(values))
	var total float64
	if len(weights) != 0 {
		total = weights[len(weights)-1]
	}
	for i, v := range values {
		if total == 0 {
			res[v] = 1
		} else {
			res[v] = weights[i] / total
		}
	}
	return res
}

// Density returns the points per covered pixel of c,
// and the number of covered pixels as its weight.
func (c *Cluster) Density() Observation {
	n := len(c.Area())
	if n == 0 {
		return Observation{}
	}
	return Observation{float64(c.Points) / float64(n), float64(n)}
}

// Cull excludes the sparsest pixels of c so that it covers about
// grey times its area. Pixels are ranked by their point count.
//
// At negative levels, cells cover more pixels than the points touch,
// and the culled count is never positive.
func (c *Cluster) Cull(grey float64) int {
	usable := c.Usable()
	pixels := float64(len(c.Area()))

	var n int
	if c.Level < 0 {
		pa := len(usable)
		n = pa - max(round(pixels*grey), pa)
	} else {
		n = round(pixels * (1 - grey))
	}
	if n <= 0 {
		return 0
	}

	ranked := make([]weightedCell, len(usable))
	for i, k := range usable {
		ranked[i] = weightedCell{k, c.weight(k)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].w < ranked[j].w
	})
	n = min(n, len(ranked))
	for _, wc := range ranked[:n] {
		c.Exclude(wc.key)
	}
	return n
}

// NormalizeDensity culls every cluster according to how its density
// ranks among all clusters. It returns the number of culled pixels.
func NormalizeDensity(clusters []*Cluster) int {
	obs := make([]Observation, len(clusters))
	for i, c := range clusters {
		obs[i] = c.Density()
	}
	grey := EqualizeHist(obs)
	n := 0
	for i, c := range clusters {
		n += c.Cull(grey[obs[i].Value])
	}
	return n
}
