package source

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/rwcarlsen/goexif/exif"
)

// ErrFormat reports a malformed dataset file.
type ErrFormat struct {
	Path  string
	Index int // record index, or -1
	e     error
}

func NewErrFormat(path string, index int, e error) *ErrFormat {
	return &ErrFormat{Path: path, Index: index, e: e}
}

func (e *ErrFormat) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Path, e.e)
	}
	return fmt.Sprintf("%s: record %d: %v", e.Path, e.Index, e.e)
}

func (e *ErrFormat) Unwrap() error { return e.e }

// IsFormat reports whether err is or wraps an *ErrFormat.
func IsFormat(err error) bool {
	var e *ErrFormat
	return errors.As(err, &e)
}

type ErrNoLoc struct {
	e error
}

func (e *ErrNoLoc) Error() string { return e.e.Error() }

func IsNoLoc(err error) bool {
	var e *ErrNoLoc
	return errors.As(err, &e)
}

// LocationFromReader reads the GPS position from the exif data in r.
// If r has no exif data or no location, an error of type *ErrNoLoc
// is returned.
func LocationFromReader(r io.Reader) (lat, long float64, err error) {
	x, err := exif.Decode(r)
	if err != nil {
		return 0, 0, &ErrNoLoc{err}
	}
	lat, long, err = x.LatLong()
	if err != nil {
		return 0, 0, &ErrNoLoc{err}
	}
	return lat, long, nil
}

// Mercator returns the map position of the location lat, long.
// The y axis points south so that north is at the top of the canvas.
func Mercator(lat, long float64) (x, y float64) {
	return long, -lat2merc(lat)
}

// lat2merc projects latitude values (-85..85) to vertical mercator
// coordinates into the range ~(-180..180) so that locations appear
// evenly spaced out on a map using mercator projection.
func lat2merc(lat float64) float64 {
	return 180 / math.Pi * math.Log(math.Tan(math.Pi/4+lat*math.Pi/180/2))
}
