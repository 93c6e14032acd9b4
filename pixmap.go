package main

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"

	"github.com/tajtiattila/pixelmap/layout"
)

// d3 category10
var palette = mustPalette(
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
)

func mustPalette(hex ...string) []color.RGBA {
	p := make([]color.RGBA, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		r, g, b := c.RGB255()
		p[i] = color.RGBA{r, g, b, 255}
	}
	return p
}

func labelColor(label int) color.RGBA {
	i := label % len(palette)
	if i < 0 {
		i += len(palette)
	}
	return palette[i]
}

// drawPixels draws px on a white w × h image.
func drawPixels(px []layout.Pixel, w, h int) *image.RGBA {
	im := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(im, im.Bounds(), image.White, image.Point{}, draw.Src)
	for _, p := range px {
		im.SetRGBA(p.X, p.Y, labelColor(p.Label))
	}
	return im
}

// thumbnail scales im to fit in size × size.
func thumbnail(im image.Image, size int) image.Image {
	return resize.Thumbnail(uint(size), uint(size), im, resize.Bilinear)
}

func encodePNG(im image.Image) []byte {
	buf := new(bytes.Buffer)
	err := png.Encode(buf, im)
	if err != nil {
		panic(err) // impossible
	}
	return buf.Bytes()
}
