package source

import (
	"fmt"
	"sort"
	"time"

	"github.com/tajtiattila/pixelmap/quadtree"
)

type Info struct {
	ModTime time.Time

	// number of points and distinct labels
	Points int
	Labels int
}

type PointSource interface {
	// ModTime returns the time the data was last modified.
	ModTime() (time.Time, error)

	// Points returns all points of the dataset.
	Points() ([]quadtree.Point, error)

	// Close closes this source.
	Close() error
}

// Open opens the source registered with name using
// the argument provided.
func Open(name string, arg string) (PointSource, error) {
	f, ok := sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown point source %q", name)
	}
	return f(arg)
}

// Names returns the names of registered sources in sorted order.
func Names() []string {
	var v []string
	for n := range sources {
		v = append(v, n)
	}
	sort.Strings(v)
	return v
}

var sources map[string]NewSourceFunc

type NewSourceFunc func(arg string) (PointSource, error)

func Register(name string, f NewSourceFunc) {
	if sources == nil {
		sources = make(map[string]NewSourceFunc)
	}
	if _, ok := sources[name]; ok {
		panic(fmt.Sprintf("source %q already exists", name))
	}
	sources[name] = f
}

// Load reads all points of src and summarizes them.
func Load(src PointSource) ([]quadtree.Point, Info, error) {
	mt, err := src.ModTime()
	if err != nil {
		return nil, Info{}, err
	}
	pts, err := src.Points()
	if err != nil {
		return nil, Info{}, err
	}
	labels := make(map[int]struct{})
	for _, p := range pts {
		labels[p.Label] = struct{}{}
	}
	return pts, Info{ModTime: mt, Points: len(pts), Labels: len(labels)}, nil
}
