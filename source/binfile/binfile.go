// Package binfile reads and writes packed point files.
//
// A file starts with the magic "PXPT", a little-endian uint32 version
// and a uint64 point count, followed by one record per point:
// float64 x, float64 y and int32 label, all little-endian.
package binfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/edsrzf/mmap-go"
	"github.com/tajtiattila/pixelmap/quadtree"
	"github.com/tajtiattila/pixelmap/source"
)

const (
	Magic   = "PXPT"
	Version = 1

	headerSize = 16
	recordSize = 20
)

func init() {
	source.Register("bin", func(path string) (source.PointSource, error) {
		return Open(path)
	})
}

// File is a point file mapped into memory.
type File struct {
	path string
	f    *os.File
	m    mmap.MMap
	mt   time.Time
}

// Open maps the file at path and checks its header.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.Size() < headerSize {
		f.Close()
		return nil, source.NewErrFormat(path, -1, errors.New("file too short"))
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	bf := &File{path: path, f: f, m: m, mt: fi.ModTime()}
	if err := bf.check(); err != nil {
		bf.Close()
		return nil, err
	}
	return bf, nil
}

func (bf *File) check() error {
	if string(bf.m[:4]) != Magic {
		return source.NewErrFormat(bf.path, -1, errors.New("bad magic"))
	}
	if v := binary.LittleEndian.Uint32(bf.m[4:]); v != Version {
		return source.NewErrFormat(bf.path, -1, fmt.Errorf("unsupported version %d", v))
	}
	n := binary.LittleEndian.Uint64(bf.m[8:])
	if have := uint64(len(bf.m)-headerSize) / recordSize; n > have {
		return source.NewErrFormat(bf.path, -1, fmt.Errorf("header says %d points, file holds %d", n, have))
	}
	return nil
}

// Len returns the number of points in the file.
func (bf *File) Len() int {
	return int(binary.LittleEndian.Uint64(bf.m[8:]))
}

// At returns the i-th point.
func (bf *File) At(i int) quadtree.Point {
	r := bf.m[headerSize+i*recordSize:]
	return quadtree.Point{
		X:     math.Float64frombits(binary.LittleEndian.Uint64(r)),
		Y:     math.Float64frombits(binary.LittleEndian.Uint64(r[8:])),
		Label: int(int32(binary.LittleEndian.Uint32(r[16:]))),
	}
}

func (bf *File) ModTime() (time.Time, error) {
	return bf.mt, nil
}

func (bf *File) Points() ([]quadtree.Point, error) {
	pts := make([]quadtree.Point, bf.Len())
	for i := range pts {
		pts[i] = bf.At(i)
	}
	return pts, nil
}

func (bf *File) Close() error {
	err := bf.m.Unmap()
	if cerr := bf.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Write writes pts to w in the packed format.
func Write(w io.Writer, pts []quadtree.Point) error {
	bw := bufio.NewWriter(w)
	var buf [headerSize]byte
	copy(buf[:], Magic)
	binary.LittleEndian.PutUint32(buf[4:], Version)
	binary.LittleEndian.PutUint64(buf[8:], uint64(len(pts)))
	bw.Write(buf[:])
	for i, p := range pts {
		if p.Label < math.MinInt32 || p.Label > math.MaxInt32 {
			return fmt.Errorf("binfile: point %d: label %d out of range", i, p.Label)
		}
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Y))
		bw.Write(buf[:])
		binary.LittleEndian.PutUint32(buf[:], uint32(int32(p.Label)))
		bw.Write(buf[:4])
	}
	return bw.Flush()
}

// WriteFile writes pts into the file named fn.
func WriteFile(fn string, pts []quadtree.Point) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := Write(f, pts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
