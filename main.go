package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tajtiattila/pixelmap/rendercache"
	"github.com/tajtiattila/pixelmap/source"

	_ "github.com/tajtiattila/pixelmap/source/binfile"
	_ "github.com/tajtiattila/pixelmap/source/jsonfile"
	_ "github.com/tajtiattila/pixelmap/source/photodir"
)

func main() {
	cfgfile := flag.String("config", "", "YAML configuration file")
	addr := flag.String("addr", "", "HTTP listen address")
	cachedir := flag.String("cache", "", "render cache directory")
	nocache := flag.Bool("nocache", false, "disable the render cache")
	srcname := flag.String("source", "", "dataset source: "+strings.Join(source.Names(), ", "))
	srcarg := flag.String("arg", "", "dataset source argument, usually a path")
	out := flag.String("o", "", "render the dataset into this .png or .json file and exit")
	dsname := flag.String("dataset", "", "dataset to render with -o")
	width := flag.Int("width", 0, "canvas width")
	height := flag.Int("height", 0, "canvas height")
	culling := flag.Bool("culling", true, "density culling")
	flag.Parse()

	cfg, err := loadConfig(*cfgfile)
	if err != nil {
		log.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "cache":
			cfg.CacheDir = *cachedir
		case "nocache":
			cfg.NoCache = *nocache
		case "width":
			cfg.Render.CanvasWidth = *width
		case "height":
			cfg.Render.CanvasHeight = *height
		case "culling":
			cfg.Render.DensityCulling = *culling
		}
	})
	if *srcname != "" {
		name := filepath.Base(*srcarg)
		cfg.Datasets = append(cfg.Datasets, DatasetConfig{Name: name, Source: *srcname, Arg: *srcarg})
		if *dsname == "" {
			*dsname = name
		}
	}
	if err := cfg.check(); err != nil {
		log.Fatal(err)
	}

	var cache *rendercache.Cache
	if !cfg.NoCache {
		cache, err = rendercache.Open(cfg.CacheDir)
		if err != nil {
			log.Fatal(err)
		}
	}
	lib, err := NewLibrary(cfg.Datasets, cache)
	if err != nil {
		log.Fatal(err)
	}
	defer lib.Close()

	if *out != "" {
		if err := renderFile(lib, cfg, *dsname, *out); err != nil {
			lib.Close()
			log.Fatal(err)
		}
		return
	}

	log.Printf("serving %d datasets on %s", len(cfg.Datasets), cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, NewHandler(lib, cfg.Render)); err != nil {
		lib.Close()
		log.Fatal(err)
	}
}

func renderFile(lib *Library, cfg Config, name, fn string) error {
	if name == "" {
		return fmt.Errorf("no dataset to render")
	}
	px, _, err := lib.Render(name, cfg.Render)
	if err != nil {
		return err
	}
	var data []byte
	switch strings.ToLower(filepath.Ext(fn)) {
	case ".json":
		data, err = json.Marshal(px)
		if err != nil {
			return err
		}
	case ".png":
		data = encodePNG(drawPixels(px, cfg.Render.CanvasWidth, cfg.Render.CanvasHeight))
	default:
		return fmt.Errorf("unknown output format %q", fn)
	}
	return os.WriteFile(fn, data, 0666)
}
