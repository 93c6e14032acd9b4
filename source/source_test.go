package source

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/tajtiattila/pixelmap/quadtree"
)

type memSource []quadtree.Point

func (m memSource) ModTime() (time.Time, error)       { return time.Unix(1, 0), nil }
func (m memSource) Points() ([]quadtree.Point, error) { return m, nil }
func (m memSource) Close() error                      { return nil }

func TestRegistry(t *testing.T) {
	Register("mem-test", func(arg string) (PointSource, error) {
		return memSource{{X: 1, Label: 2}, {Y: 1, Label: 2}, {Label: 5}}, nil
	})
	src, err := Open("mem-test", "")
	if err != nil {
		t.Fatal(err)
	}
	pts, info, err := Load(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 3 || info.Points != 3 || info.Labels != 2 || info.ModTime.Unix() != 1 {
		t.Errorf("Load = %v, %+v", pts, info)
	}
	if _, err := Open("no-such-source", ""); err == nil {
		t.Error("opened unknown source")
	}
	found := false
	for _, n := range Names() {
		found = found || n == "mem-test"
	}
	if !found {
		t.Errorf("Names() = %v", Names())
	}
}

func TestErrFormat(t *testing.T) {
	base := errors.New("boom")
	err := error(NewErrFormat("f.json", 3, base))
	if !IsFormat(err) || !errors.Is(err, base) {
		t.Errorf("%v is not a format error wrapping %v", err, base)
	}
	if s := err.Error(); !strings.Contains(s, "record 3") {
		t.Errorf("error text %q", s)
	}
	if !IsFormat(fmt.Errorf("dataset: %w", err)) {
		t.Error("wrapped format error not recognized")
	}
	if IsFormat(base) {
		t.Error("plain error is a format error")
	}
}

func TestLocationFromReader(t *testing.T) {
	_, _, err := LocationFromReader(strings.NewReader("plain text"))
	if !IsNoLoc(err) {
		t.Errorf("got %v, want *ErrNoLoc", err)
	}
}

func TestMercator(t *testing.T) {
	tests := []struct {
		lat, long float64
		x, y      float64
	}{
		{0, 0, 0, 0},
		{0, -120, -120, 0},
		{85.0511287798, 10, 10, -180},
		{-85.0511287798, 10, 10, 180},
	}
	for _, tt := range tests {
		x, y := Mercator(tt.lat, tt.long)
		if math.Abs(x-tt.x) > 1e-6 || math.Abs(y-tt.y) > 1e-6 {
			t.Errorf("Mercator(%v, %v) = %v, %v, want %v, %v", tt.lat, tt.long, x, y, tt.x, tt.y)
		}
	}
}
