package photodir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/tajtiattila/pixelmap/source"
)

func TestScan(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"top.jpg",
		"notes.txt",
		"b/x.JPG",
		"b/deep/y.jpeg",
		"a/z.tif",
		"c/readme.md",
	}
	for _, fn := range files {
		p := filepath.Join(root, filepath.FromSlash(fn))
		if err := os.MkdirAll(filepath.Dir(p), 0777); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("not a photo"), 0666); err != nil {
			t.Fatal(err)
		}
	}

	src, err := source.Open("photos", root)
	if err != nil {
		t.Fatal(err)
	}
	d := src.(*Dir)
	if got := fmt.Sprint(d.Groups); got != "[ a b c]" {
		t.Errorf("groups are %s", got)
	}
	var got []string
	for _, p := range d.photos {
		rel, _ := filepath.Rel(d.root, p.path)
		got = append(got, fmt.Sprintf("%s:%d", filepath.ToSlash(rel), p.label))
	}
	sort.Strings(got)
	want := "[a/z.tif:1 b/deep/y.jpeg:2 b/x.JPG:2 top.jpg:0]"
	if fmt.Sprint(got) != want {
		t.Errorf("photos are %v, want %s", got, want)
	}

	pts, err := d.Points()
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 0 {
		t.Errorf("got %d points from files without location", len(pts))
	}
	if mt, _ := d.ModTime(); mt.IsZero() {
		t.Error("ModTime is zero")
	}
}

func TestMissingRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("scanned a missing directory")
	}
}
