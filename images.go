package main

import (
	"sync"
	"time"

	"github.com/tajtiattila/pixelmap/rendercache"
	"github.com/tajtiattila/pixelmap/scatter"
)

// imageMap keeps encoded PNG images of recent renders in memory.
type imageMap struct {
	lib *Library

	mtx sync.Mutex // protects m
	m   map[imageKey]*genImage
	n   int // max entries
}

type imageKey struct {
	name  string
	cfg   string // rendercache.Key of the settings
	thumb int    // thumbnail size, or zero for full size
}

type genImage struct {
	once  sync.Once
	image []byte
	mt    time.Time
	err   error
}

func newImageMap(lib *Library, n int) *imageMap {
	return &imageMap{
		lib: lib,
		m:   make(map[imageKey]*genImage),
		n:   n,
	}
}

// Get returns the PNG image of the named dataset rendered with cfg.
// If thumb is positive, the image is scaled down to fit in thumb × thumb.
func (im *imageMap) Get(name string, cfg scatter.Config, thumb int) ([]byte, time.Time, error) {
	k := imageKey{name, rendercache.Key(name, cfg), thumb}

	im.mtx.Lock()
	gi, ok := im.m[k]
	if !ok {
		if len(im.m) >= im.n {
			// drop everything rather than track usage
			im.m = make(map[imageKey]*genImage)
		}
		gi = new(genImage)
		im.m[k] = gi
	}
	im.mtx.Unlock()

	gi.init(im.lib, name, cfg, thumb)
	if gi.err != nil {
		im.mtx.Lock()
		if im.m[k] == gi {
			delete(im.m, k)
		}
		im.mtx.Unlock()
		return nil, time.Time{}, gi.err
	}

	// drop stale images
	if ds, ok := im.lib.sets[name]; ok {
		if mt, err := ds.src.ModTime(); err == nil && !mt.Equal(gi.mt) {
			im.mtx.Lock()
			if im.m[k] == gi {
				delete(im.m, k)
			}
			im.mtx.Unlock()
			return im.Get(name, cfg, thumb)
		}
	}
	return gi.image, gi.mt, nil
}

func (gi *genImage) init(lib *Library, name string, cfg scatter.Config, thumb int) {
	gi.once.Do(func() {
		px, mt, err := lib.Render(name, cfg)
		if err != nil {
			gi.err = err
			return
		}
		img := drawPixels(px, cfg.CanvasWidth, cfg.CanvasHeight)
		if thumb > 0 {
			gi.image = encodePNG(thumbnail(img, thumb))
		} else {
			gi.image = encodePNG(img)
		}
		gi.mt = mt
	})
}
