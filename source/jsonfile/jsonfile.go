// Package jsonfile reads datasets stored as a JSON array
// of {"x": number, "y": number, "label": integer} objects.
package jsonfile

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/tajtiattila/pixelmap/quadtree"
	"github.com/tajtiattila/pixelmap/source"
)

func init() {
	source.Register("json", func(path string) (source.PointSource, error) {
		return New(path)
	})
}

type File struct {
	path string
}

// New returns the source for the JSON file at path.
func New(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return &File{path}, nil
}

func (f *File) ModTime() (time.Time, error) {
	fi, err := os.Stat(f.path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

func (f *File) Points() ([]quadtree.Point, error) {
	r, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Decode(f.path, r)
}

func (f *File) Close() error {
	return nil
}

type record struct {
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Label *int     `json:"label"`
}

// Decode reads a point array from r.
// The name is used only in error messages.
func Decode(name string, r io.Reader) ([]quadtree.Point, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, source.NewErrFormat(name, -1, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, source.NewErrFormat(name, -1, errors.New("dataset is not an array"))
	}
	var pts []quadtree.Point
	for i := 0; dec.More(); i++ {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			return nil, source.NewErrFormat(name, i, err)
		}
		switch {
		case rec.X == nil:
			return nil, source.NewErrFormat(name, i, errors.New("x missing"))
		case rec.Y == nil:
			return nil, source.NewErrFormat(name, i, errors.New("y missing"))
		case rec.Label == nil:
			return nil, source.NewErrFormat(name, i, errors.New("label missing"))
		}
		pts = append(pts, quadtree.Point{X: *rec.X, Y: *rec.Y, Label: *rec.Label})
	}
	if _, err := dec.Token(); err != nil {
		return nil, source.NewErrFormat(name, -1, err)
	}
	return pts, nil
}
