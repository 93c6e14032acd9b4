// Package photodir turns a directory tree of geotagged photos into
// a dataset. Each photo is a point at its mercator-projected GPS
// position. Photos directly in the root directory get label 0, photos
// anywhere under the n-th top-level subdirectory (in name order)
// get label n.
package photodir

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tajtiattila/pixelmap/quadtree"
	"github.com/tajtiattila/pixelmap/source"
)

func init() {
	source.Register("photos", func(root string) (source.PointSource, error) {
		return New(root)
	})
}

type photo struct {
	path  string
	label int
}

type Dir struct {
	root    string
	photos  []photo
	modTime time.Time

	// Groups holds the top-level subdirectory name for each label.
	// Groups[0] is empty.
	Groups []string
}

// New scans root for photo files.
func New(root string) (*Dir, error) {
	absroot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	d := &Dir{root: absroot, Groups: []string{""}}
	return d, d.prepare()
}

func (d *Dir) prepare() error {
	label := make(map[string]int)
	return filepath.WalkDir(d.root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			if path == d.root {
				return err
			}
			log.Println(err)
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if e.IsDir() {
			if rel != "." && len(parts) == 1 {
				label[parts[0]] = len(d.Groups)
				d.Groups = append(d.Groups, parts[0])
			}
			return nil
		}
		if !isPhoto(path) {
			return nil
		}
		info, err := e.Info()
		if err != nil {
			log.Println(err)
			return nil
		}
		if mt := info.ModTime(); mt.After(d.modTime) {
			d.modTime = mt
		}
		p := photo{path: path}
		if len(parts) > 1 {
			p.label = label[parts[0]]
		}
		d.photos = append(d.photos, p)
		return nil
	})
}

func isPhoto(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".tif", ".tiff":
		return true
	}
	return false
}

func (d *Dir) ModTime() (time.Time, error) {
	return d.modTime, nil
}

// Points reads the location of every photo. Photos without
// a location are skipped.
func (d *Dir) Points() ([]quadtree.Point, error) {
	var pts []quadtree.Point
	var noloc int
	for _, p := range d.photos {
		lat, long, err := readLocation(p.path)
		if err != nil {
			if source.IsNoLoc(err) {
				noloc++
			} else {
				log.Println(err)
			}
			continue
		}
		x, y := source.Mercator(lat, long)
		pts = append(pts, quadtree.Point{X: x, Y: y, Label: p.label})
	}
	if noloc != 0 {
		log.Printf("%s: %d of %d photos have no location", d.root, noloc, len(d.photos))
	}
	return pts, nil
}

func readLocation(path string) (lat, long float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	return source.LocationFromReader(f)
}

func (d *Dir) Close() error {
	return nil
}
