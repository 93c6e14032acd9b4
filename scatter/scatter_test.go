package scatter

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/tajtiattila/pixelmap/layout"
	"github.com/tajtiattila/pixelmap/quadtree"
)

func TestRenderCorners(t *testing.T) {
	pts := []quadtree.Point{
		{X: 0, Y: 0, Label: 0},
		{X: 100, Y: 100, Label: 0},
		{X: 0, Y: 100, Label: 1},
		{X: 100, Y: 0, Label: 1},
	}
	want := "[{0 0 0} {99 0 1} {0 99 1} {99 99 0}]"

	for _, mode := range []string{InitManual, InitAuto} {
		cfg := DefaultConfig()
		cfg.CanvasWidth, cfg.CanvasHeight = 100, 100
		cfg.MaxLevel = 1
		cfg.InitLevelMode = mode
		px, st, err := RenderStats(cfg, pts)
		if err != nil {
			t.Fatal(err)
		}
		if got := fmt.Sprint(sortPixels(px)); got != want {
			t.Errorf("%s: Render yields %s, want %s", mode, got, want)
		}
		if st.Clusters != 4 || st.Points != 4 || st.Labels != 2 {
			t.Errorf("%s: stats are %+v", mode, st)
		}
	}
	if pts[1].X != 100 {
		t.Error("Render modified its input")
	}
}

func TestRenderSingleLabel(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	want := map[layout.CellKey]bool{{Row: 0, Col: 0}: true, {Row: 99, Col: 99}: true}
	for len(want) < 500 {
		want[layout.CellKey{Row: r.Intn(100), Col: r.Intn(100)}] = true
	}
	var pts []quadtree.Point
	for k := range want {
		x, y := float64(k.Col)+0.5, float64(k.Row)+0.5
		pts = append(pts, quadtree.Point{X: x, Y: y, Label: 3})
		switch k {
		case layout.CellKey{Row: 0, Col: 0}:
			x, y = 0, 0
		case layout.CellKey{Row: 99, Col: 99}:
			x, y = 100-Margin, 100-Margin
		}
		pts = append(pts, quadtree.Point{X: x, Y: y, Label: 3})
	}
	if len(pts) != 1000 {
		t.Fatalf("dataset has %d points", len(pts))
	}

	cfg := DefaultConfig()
	cfg.CanvasWidth, cfg.CanvasHeight = 100, 100
	cfg.InitLevelMode = InitManual
	cfg.InitLevel = 0
	cfg.MaxLevel = 0
	px, err := Render(cfg, pts)
	if err != nil {
		t.Fatal(err)
	}
	if len(px) != len(want) {
		t.Fatalf("Render yields %d pixels, want %d", len(px), len(want))
	}
	for _, p := range px {
		if p.Label != 3 {
			t.Errorf("pixel %v has wrong label", p)
		}
		if !want[layout.CellKey{Row: p.Y, Col: p.X}] {
			t.Errorf("pixel %v not in dataset", p)
		}
	}
}

func TestRenderMixed(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	n := 50000
	if testing.Short() {
		n = 5000
	}
	var pts []quadtree.Point
	for i := 0; i < n; i++ {
		l := r.Intn(4)
		cx, cy := float64(l%2)*40, float64(l/2)*40
		pts = append(pts, quadtree.Point{
			X:     cx + r.NormFloat64()*15,
			Y:     cy + r.NormFloat64()*15,
			Label: l,
		})
	}
	for i := 0; i < 20; i++ {
		pts = append(pts, quadtree.Point{X: r.Float64() * 40, Y: r.Float64() * 40, Label: 9})
	}

	for _, cull := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.CanvasWidth, cfg.CanvasHeight = 160, 120
		cfg.DensityCulling = cull
		px, st, err := RenderStats(cfg, pts)
		if err != nil {
			t.Fatal(err)
		}
		if len(px) == 0 || len(px) > cfg.CanvasWidth*cfg.CanvasHeight {
			t.Fatalf("Render yields %d pixels", len(px))
		}
		if !cull && st.Culled != 0 {
			t.Errorf("culled %d pixels with culling disabled", st.Culled)
		}
		seen := make(map[layout.CellKey]bool)
		for _, p := range px {
			k := layout.CellKey{Row: p.Y, Col: p.X}
			if seen[k] {
				t.Fatalf("pixel %v rendered twice", k)
			}
			seen[k] = true
			if p.X < 0 || p.X >= cfg.CanvasWidth || p.Y < 0 || p.Y >= cfg.CanvasHeight {
				t.Fatalf("pixel %v outside canvas", p)
			}
			if p.Label != 9 && (p.Label < 0 || p.Label > 3) {
				t.Fatalf("pixel %v has unknown label", p)
			}
		}

		again, err := Render(cfg, pts)
		if err != nil {
			t.Fatal(err)
		}
		if fmt.Sprint(again) != fmt.Sprint(px) {
			t.Error("Render is not deterministic")
		}
	}
}

func TestRenderErrors(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := Render(cfg, nil); !IsInput(err) {
		t.Errorf("empty dataset: got %v", err)
	}
	_, err := Render(cfg, []quadtree.Point{{X: 1}, {X: math.NaN()}})
	if !IsInput(err) || IsConfig(err) {
		t.Errorf("NaN dataset: got %v", err)
	}
	if e, ok := err.(*InputError); !ok || e.Index != 1 {
		t.Errorf("NaN dataset: got %#v", err)
	}
	cause := errors.New("bad record")
	if err := error(&InputError{Index: 2, Msg: "bad record", Err: cause}); !errors.Is(err, cause) || !IsInput(err) {
		t.Errorf("InputError does not wrap its cause")
	}
	cfg.CanvasWidth = -1
	if _, err := Render(cfg, []quadtree.Point{{X: 1}}); !IsConfig(err) {
		t.Errorf("bad canvas: got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		f     func(c *Config)
		field string
	}{
		{func(c *Config) {}, ""},
		{func(c *Config) { c.CanvasHeight = 0 }, "height"},
		{func(c *Config) { c.CanvasWidth = MaxCanvasSize + 1 }, "width"},
		{func(c *Config) { c.MaxKurtosis = -1 }, "maxKurtosis"},
		{func(c *Config) { c.MaxKurtosis = 0 }, ""},
		{func(c *Config) { c.OutlierEmphasis = 0.5 }, "outlierEmphasis"},
		{func(c *Config) { c.NonOutlierMass = 0.4 }, "nonOutlierMass"},
		{func(c *Config) { c.NonOutlierMass = 1 }, ""},
		{func(c *Config) { c.NonOutlierMass = math.NaN() }, "nonOutlierMass"},
		{func(c *Config) { c.MaxLevel = 13 }, "maxLevel"},
		{func(c *Config) { c.InitLevelMode = "fixed" }, "initLevelMode"},
		{func(c *Config) { c.InitLevelMode = InitManual; c.InitLevel = -20 }, "initLevel"},
		{func(c *Config) { c.InitLevelMode = InitManual; c.InitLevel = -3 }, ""},
	}
	for i, tt := range tests {
		cfg := DefaultConfig()
		tt.f(&cfg)
		err := cfg.Validate()
		var field string
		if err != nil {
			ce, ok := err.(*ConfigError)
			if !ok {
				t.Errorf("%d: Validate returned %T", i, err)
				continue
			}
			field = ce.Field
		}
		if field != tt.field {
			t.Errorf("%d: Validate complains about %q, want %q", i, field, tt.field)
		}
	}
}

func TestStartLevel(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{900, 900, -1},
		{1000, 500, -1},
		{1400, 900, -1},
		{300, 2000, -2},
		{4000, 4000, -3},
		{100, 100, 2},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.CanvasWidth, cfg.CanvasHeight = tt.w, tt.h
		if got := cfg.StartLevel(); got != tt.want {
			t.Errorf("StartLevel(%d×%d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
	cfg := DefaultConfig()
	cfg.InitLevelMode, cfg.InitLevel = InitManual, -4
	if got := cfg.StartLevel(); got != -4 {
		t.Errorf("manual StartLevel = %d, want -4", got)
	}
}

func TestScale(t *testing.T) {
	pts := []quadtree.Point{
		{X: -5, Y: 3, Label: 1},
		{X: 5, Y: 3, Label: 2},
		{X: 0, Y: 3},
	}
	got := Scale(pts, 200, 100)
	want := []quadtree.Point{
		{X: 0, Y: 50 - Margin/2, Label: 1},
		{X: 200 - Margin, Y: 50 - Margin/2, Label: 2},
		{X: 100 - Margin/2, Y: 50 - Margin/2},
	}
	for i := range want {
		if math.Abs(got[i].X-want[i].X) > 1e-9 || math.Abs(got[i].Y-want[i].Y) > 1e-9 || got[i].Label != want[i].Label {
			t.Errorf("Scale point %d = %v, want %v", i, got[i], want[i])
		}
	}
	if got[1].X >= 200 {
		t.Errorf("Scale maps max to %v", got[1].X)
	}
	if pts[0].X != -5 {
		t.Error("Scale modified its input")
	}
}

func TestScaleHugeSpan(t *testing.T) {
	pts := []quadtree.Point{
		{X: -1e308, Y: 0},
		{X: 1e308, Y: 1, Label: 1},
		{X: 0, Y: 0.5},
	}
	got := Scale(pts, 100, 100)
	wantX := []float64{0, 100 - Margin, 50 - Margin/2}
	for i, p := range got {
		if math.IsNaN(p.X) || math.Abs(p.X-wantX[i]) > 1e-9 {
			t.Errorf("Scale point %d has x %v, want %v", i, p.X, wantX[i])
		}
	}

	px, err := Render(DefaultConfig(), pts)
	if err != nil {
		t.Fatal(err)
	}
	if len(px) == 0 {
		t.Fatal("Render yields no pixels")
	}
	for _, p := range px {
		if p.X < 0 || p.X >= 900 || p.Y < 0 || p.Y >= 900 {
			t.Errorf("pixel %v outside canvas", p)
		}
	}
}

func sortPixels(px []layout.Pixel) []layout.Pixel {
	sort.Slice(px, func(i, j int) bool {
		if px[i].Y != px[j].Y {
			return px[i].Y < px[j].Y
		}
		return px[i].X < px[j].X
	})
	return px
}
