package main

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/tajtiattila/pixelmap/layout"
	"github.com/tajtiattila/pixelmap/quadtree"
	"github.com/tajtiattila/pixelmap/rendercache"
	"github.com/tajtiattila/pixelmap/scatter"
	"github.com/tajtiattila/pixelmap/source"
)

var errNoDataset = errors.New("no such dataset")

// Library holds the configured datasets.
type Library struct {
	cache *rendercache.Cache // nil if caching is disabled

	// read-only after NewLibrary
	sets  map[string]*dataset
	names []string
}

type dataset struct {
	DatasetConfig
	src source.PointSource
}

type DatasetInfo struct {
	DatasetConfig
	ModTime time.Time `json:"modTime"`
}

// NewLibrary opens the sources of sets. Cache may be nil.
func NewLibrary(sets []DatasetConfig, cache *rendercache.Cache) (*Library, error) {
	l := &Library{
		cache: cache,
		sets:  make(map[string]*dataset),
	}
	for _, dc := range sets {
		src, err := source.Open(dc.Source, dc.Arg)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("dataset %q: %w", dc.Name, err)
		}
		l.sets[dc.Name] = &dataset{dc, src}
		l.names = append(l.names, dc.Name)
	}
	sort.Strings(l.names)
	return l, nil
}

func (l *Library) Close() error {
	var err error
	for _, ds := range l.sets {
		if e := ds.src.Close(); err == nil {
			err = e
		}
	}
	if l.cache != nil {
		if e := l.cache.Close(); err == nil {
			err = e
		}
	}
	return err
}

// Datasets lists the datasets in name order.
func (l *Library) Datasets() []DatasetInfo {
	v := make([]DatasetInfo, 0, len(l.names))
	for _, n := range l.names {
		ds := l.sets[n]
		mt, err := ds.src.ModTime()
		if err != nil {
			log.Printf("dataset %q: %v", n, err)
		}
		v = append(v, DatasetInfo{ds.DatasetConfig, mt})
	}
	return v
}

// Render renders the named dataset with cfg,
// and returns the pixels with the modification time of the dataset.
func (l *Library) Render(name string, cfg scatter.Config) ([]layout.Pixel, time.Time, error) {
	ds, ok := l.sets[name]
	if !ok {
		return nil, time.Time{}, errNoDataset
	}
	if err := cfg.Validate(); err != nil {
		return nil, time.Time{}, err
	}
	mt, err := ds.src.ModTime()
	if err != nil {
		return nil, time.Time{}, err
	}
	render := func() ([]layout.Pixel, error) {
		pts, info, err := source.Load(ds.src)
		if err != nil {
			return nil, inputError(err)
		}
		log.Printf("%s: %d points, %d labels", name, info.Points, info.Labels)
		return renderPoints(name, cfg, pts)
	}
	var px []layout.Pixel
	if l.cache != nil {
		px, err = l.cache.Render(ds.Source+":"+ds.Arg, mt, cfg, render)
	} else {
		px, err = render()
	}
	return px, mt, err
}

func renderPoints(name string, cfg scatter.Config, pts []quadtree.Point) ([]layout.Pixel, error) {
	start := time.Now()
	px, st, err := scatter.RenderStats(cfg, pts)
	if err != nil {
		return nil, err
	}
	log.Printf("%s: layout %v, level %d, %d clusters, %d overlaps, %d culled, %d pixels",
		name, time.Since(start), st.StartLevel, st.Clusters, st.Overlaps, st.Culled, st.Pixels)
	return px, nil
}

// inputError turns malformed source data into a *scatter.InputError.
// Other errors are returned unchanged.
func inputError(err error) error {
	var fe *source.ErrFormat
	if !errors.As(err, &fe) {
		return err
	}
	return &scatter.InputError{Index: fe.Index, Msg: fe.Error(), Err: err}
}
