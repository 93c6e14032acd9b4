package scatter

import (
	"math"

	"github.com/tajtiattila/pixelmap/clusterer"
	"github.com/tajtiattila/pixelmap/layout"
	"github.com/tajtiattila/pixelmap/quadtree"
)

// Stats describes a finished render.
type Stats struct {
	Points int `json:"points"`
	Labels int `json:"labels"`

	StartLevel int `json:"startLevel"`
	Clusters   int `json:"clusters"`

	// pixels removed by overlap resolution and density culling
	Overlaps int `json:"overlaps"`
	Culled   int `json:"culled"`

	Pixels int `json:"pixels"`
}

// Render lays out pts on the canvas described by cfg, and returns
// one labeled pixel for each canvas pixel that represents data.
//
// The input is not modified. On error no pixels are returned.
func Render(cfg Config, pts []quadtree.Point) ([]layout.Pixel, error) {
	px, _, err := RenderStats(cfg, pts)
	return px, err
}

// RenderStats is like Render but also reports statistics.
func RenderStats(cfg Config, pts []quadtree.Point) ([]layout.Pixel, Stats, error) {
	var st Stats
	if err := cfg.Validate(); err != nil {
		return nil, st, err
	}
	if err := checkPoints(pts); err != nil {
		return nil, st, err
	}
	st.Points = len(pts)
	st.Labels = countLabels(pts)

	scaled := Scale(pts, cfg.CanvasWidth, cfg.CanvasHeight)
	st.StartLevel = cfg.StartLevel()
	mesh := quadtree.Grid(scaled, float64(cfg.CanvasWidth), float64(cfg.CanvasHeight), st.StartLevel)
	groups := clusterer.Refine(mesh, cfg.MaxLevel, cfg.MaxKurtosis)

	clusters, claims := layout.Build(groups, layout.Params{
		Width:           cfg.CanvasWidth,
		Height:          cfg.CanvasHeight,
		NonOutlierMass:  cfg.NonOutlierMass,
		OutlierEmphasis: cfg.OutlierEmphasis,
	})
	st.Clusters = len(clusters)
	st.Overlaps = layout.ResolveOverlaps(clusters, claims)
	if cfg.DensityCulling {
		st.Culled = layout.NormalizeDensity(clusters)
	}

	var res []layout.Pixel
	for _, c := range clusters {
		px, err := c.MiniLayout()
		if err != nil {
			return nil, Stats{}, &InvariantError{err}
		}
		res = append(res, px...)
	}
	st.Pixels = len(res)
	return res, st, nil
}

func checkPoints(pts []quadtree.Point) error {
	if len(pts) == 0 {
		return &InputError{Index: -1, Msg: "empty dataset"}
	}
	for i, p := range pts {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return &InputError{Index: i, Msg: "coordinate is not finite"}
		}
	}
	return nil
}

func countLabels(pts []quadtree.Point) int {
	m := make(map[int]struct{})
	for _, p := range pts {
		m[p.Label] = struct{}{}
	}
	return len(m)
}
