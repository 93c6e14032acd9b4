package rendercache

import (
	"encoding/binary"
	"errors"

	"github.com/tajtiattila/pixelmap/layout"
)

var errCorrupt = errors.New("rendercache: corrupt pixel data")

// AppendPixels appends the binary form of px to buf.
//
// Pixels are stored as a count followed by varint x, y and label
// triples. X is stored as a difference to the previous pixel
// because clusters emit runs of nearby pixels.
func AppendPixels(buf []byte, px []layout.Pixel) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(px)))
	var lastX int
	for _, p := range px {
		buf = binary.AppendVarint(buf, int64(p.X-lastX))
		buf = binary.AppendVarint(buf, int64(p.Y))
		buf = binary.AppendVarint(buf, int64(p.Label))
		lastX = p.X
	}
	return buf
}

// DecodePixels decodes data produced by AppendPixels.
func DecodePixels(data []byte) ([]layout.Pixel, error) {
	n, k := binary.Uvarint(data)
	if k <= 0 || n > uint64(len(data)) {
		return nil, errCorrupt
	}
	data = data[k:]
	px := make([]layout.Pixel, n)
	var v [3]int64
	var lastX int
	for i := range px {
		for j := range v {
			v[j], k = binary.Varint(data)
			if k <= 0 {
				return nil, errCorrupt
			}
			data = data[k:]
		}
		lastX += int(v[0])
		px[i] = layout.Pixel{X: lastX, Y: int(v[1]), Label: int(v[2])}
	}
	if len(data) != 0 {
		return nil, errCorrupt
	}
	return px, nil
}
