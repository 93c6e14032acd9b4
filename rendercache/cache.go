// Package rendercache stores finished renders in a LevelDB database.
package rendercache

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/tajtiattila/pixelmap/layout"
	"github.com/tajtiattila/pixelmap/scatter"
)

const (
	pixelsPfx = "pixels|"
)

type Cache struct {
	db *leveldb.DB

	enc *zstd.Encoder
	dec *zstd.Decoder

	gen *parallelGroup
}

// Open opens the cache database in dir. If dir is empty,
// the user cache directory is used.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "PixelMap")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	db, err := leveldb.OpenFile(filepath.Join(dir, "rendercache.leveldb"), nil)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{
		db:  db,
		enc: enc,
		dec: dec,
		gen: newParallelGroup(4),
	}, nil
}

func (c *Cache) Close() error {
	c.enc.Close()
	c.dec.Close()
	return c.db.Close()
}

// Render returns the pixels of dataset id rendered with cfg.
// A cached result is used if it was stored for the dataset
// modification time mt, otherwise render is called and
// its result stored.
func (c *Cache) Render(id string, mt time.Time, cfg scatter.Config, render func() ([]layout.Pixel, error)) ([]layout.Pixel, error) {
	key := Key(id, cfg)
	v, err := c.gen.Do(key, func() (interface{}, error) {
		px, err := c.load(key, mt)
		if err == nil {
			return px, nil
		}
		if err != leveldb.ErrNotFound {
			log.Printf("rendercache load %q: %v", id, err)
		}
		px, err = render()
		if err != nil {
			return nil, err
		}
		if err := c.store(key, mt, px); err != nil {
			log.Println("can't store render in cache:", err)
		}
		return px, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]layout.Pixel), nil
}

// Forget removes the cached render of dataset id with cfg.
func (c *Cache) Forget(id string, cfg scatter.Config) error {
	return c.db.Delete([]byte(pixelsPfx+Key(id, cfg)), nil)
}

// Key returns the cache key for dataset id rendered with cfg.
func Key(id string, cfg scatter.Config) string {
	raw, err := json.Marshal(cfg)
	if err != nil {
		panic("can't marshal scatter.Config")
	}
	h := sha1.New()
	h.Write([]byte(id))
	h.Write([]byte{0})
	h.Write(raw)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// load returns the stored pixels, or leveldb.ErrNotFound
// if there is none for mt.
func (c *Cache) load(key string, mt time.Time) ([]layout.Pixel, error) {
	data, err := c.db.Get([]byte(pixelsPfx+key), nil)
	if err != nil {
		return nil, err
	}
	if len(data) < 8 || int64(binary.BigEndian.Uint64(data)) != mt.UnixNano() {
		// stale
		if err := c.db.Delete([]byte(pixelsPfx+key), nil); err != nil {
			log.Printf("delete from cache %q: %v", key, err)
		}
		return nil, leveldb.ErrNotFound
	}
	raw, err := c.dec.DecodeAll(data[8:], nil)
	if err != nil {
		return nil, err
	}
	return DecodePixels(raw)
}

func (c *Cache) store(key string, mt time.Time, px []layout.Pixel) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(mt.UnixNano()))
	buf = c.enc.EncodeAll(AppendPixels(nil, px), buf)
	return c.db.Put([]byte(pixelsPfx+key), buf, nil)
}
