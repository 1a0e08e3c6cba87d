package views

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimg/internal/files"
	"github.com/zjrosen/vimg/internal/manipulate"
	"github.com/zjrosen/vimg/internal/thumbnail"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name     string
		selected int
		total    int
		height   int
		want     int
	}{
		{"fits", 3, 5, 10, 0},
		{"top", 1, 100, 10, 0},
		{"middle", 50, 100, 10, 45},
		{"bottom", 99, 100, 10, 90},
		{"no height", 50, 100, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, window(tt.selected, tt.total, tt.height))
		})
	}
}

func TestImage(t *testing.T) {
	out := ansi.Strip(Image(ImageInfo{
		Path:   "/pics/cat.png",
		Index:  "2/5",
		Size:   "1.2 kB",
		Width:  640,
		Height: 480,
		Marked: true,
		Edited: true,
	}, 60, 10))
	require.Contains(t, out, "* cat.png")
	require.Contains(t, out, "/pics")
	require.Contains(t, out, "2/5  640x480  1.2 kB  modified")
	require.Len(t, strings.Split(out, "\n"), 10)
}

func TestImage_EmptyAndError(t *testing.T) {
	require.Contains(t, ansi.Strip(Image(ImageInfo{}, 20, 3)), "No image")

	out := ansi.Strip(Image(ImageInfo{Path: "/pics/bad.png", Err: errors.New("decode failed")}, 40, 5))
	require.Contains(t, out, "decode failed")
}

func TestLibrary(t *testing.T) {
	lib := files.NewLibrary()
	lib.Load([]string{"/d/a.png", "/d/b.png"}, []string{"/d/sub"})
	marks := files.NewMarks()
	marks.Mark("/d/b.png")

	out := ansi.Strip(Library(lib, marks, 20, 5))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "  sub/", strings.TrimRight(lines[0], " "))
	require.Equal(t, "  a.png", lines[1])
	require.Equal(t, "* b.png", lines[2])
}

func TestLibrary_Empty(t *testing.T) {
	out := ansi.Strip(Library(files.NewLibrary(), nil, 30, 2))
	require.Contains(t, out, "Directory is empty")
}

func TestThumbnails(t *testing.T) {
	g := thumbnail.NewGrid(128)
	g.Load([]string{"/d/a.png", "/d/b.png", "/d/c.png"}, 0)
	g.SetColumns(2)
	g.Set(thumbnail.Created{Index: 0, Path: "/d/a.png", Image: image.NewRGBA(image.Rect(0, 0, 128, 96))})
	g.Set(thumbnail.Created{Index: 1, Path: "/d/b.png", Err: errors.New("broken")})

	out := ansi.Strip(Thumbnails(g, nil, 80, 10))
	require.Contains(t, out, "a.png")
	require.Contains(t, out, "128x96")
	require.Contains(t, out, "failed")
	require.Contains(t, out, "…")
	require.Len(t, strings.Split(out, "\n"), 10)
}

func TestColumns(t *testing.T) {
	require.Equal(t, 18, CellWidth(128))
	require.Equal(t, 4, Columns(128, 80))
	require.Equal(t, 1, Columns(512, 10))
}

func TestManipulatePanel(t *testing.T) {
	panel := ansi.Strip(ManipulatePanel(manipulate.Values{Brightness: 20, Contrast: -5}, manipulate.Contrast, true))
	require.Contains(t, panel, "brightness   20")
	require.Contains(t, panel, "contrast     -5")
	require.Contains(t, panel, "processing...")

	bg := strings.Repeat(strings.Repeat(".", 40)+"\n", 9) + strings.Repeat(".", 40)
	out := OverlayPanel(ManipulatePanel(manipulate.Values{}, manipulate.Brightness, false), bg, 40, 10)
	require.Len(t, strings.Split(out, "\n"), 10)
	require.Contains(t, out, "brightness")
}
