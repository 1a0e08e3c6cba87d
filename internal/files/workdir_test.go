package files

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimg/internal/mode"
)

func TestWorkingDirectory_Chdir(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, "a.png")
	sub := mkdir(t, dir, "sub")
	writeFile(t, dir, "readme", "text")

	wd := NewWorkingDirectory(WorkingDirectoryConfig{})
	var loaded string
	wd.OnLoad(func(d string, _, _ []string) { loaded = d })

	require.NoError(t, wd.Chdir(dir))
	require.Equal(t, dir, wd.Dir())
	require.Equal(t, dir, loaded)
	require.Equal(t, []string{img}, wd.Images())
	require.Equal(t, []string{sub}, wd.Directories())

	require.Error(t, wd.Chdir(img))
	require.Equal(t, dir, wd.Dir())
}

func TestWorkingDirectory_ShowHidden(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, ".secret.png")

	wd := NewWorkingDirectory(WorkingDirectoryConfig{})
	require.NoError(t, wd.Chdir(dir))
	require.Empty(t, wd.Images())

	require.NoError(t, wd.SetShowHidden(true))
	require.Len(t, wd.Images(), 1)
	require.True(t, wd.ShowHidden())
}

func TestLibrary_DirectoriesFirst(t *testing.T) {
	l := NewLibrary()
	require.Empty(t, l.Selected())

	l.Load([]string{"/d/a.png", "/d/b.png"}, []string{"/d/sub"})
	require.Equal(t, []string{"/d/sub", "/d/a.png", "/d/b.png"}, l.Entries())
	require.True(t, l.IsDir(0))
	require.False(t, l.IsDir(1))

	l.Scroll(10)
	require.Equal(t, "/d/b.png", l.Selected())
	l.Scroll(-1)
	require.Equal(t, "/d/a.png", l.Selected())

	// Reloading keeps the selected path.
	l.Load([]string{"/d/0.png", "/d/a.png"}, nil)
	require.Equal(t, "/d/a.png", l.Selected())

	l.Select(-1)
	require.Equal(t, "/d/a.png", l.Selected())
	l.Select(1)
	require.Equal(t, "/d/0.png", l.Selected())
	require.True(t, l.SelectPath("/d/a.png"))
	require.False(t, l.SelectPath("/nope"))
}

func TestPathReceiver(t *testing.T) {
	list := NewFileList()
	list.Load([]string{"/a.png"}, "")
	modes := &fakeModes{}
	r := NewPathReceiver(list, modes)

	require.Equal(t, "/a.png", r.Current())

	r.SetSource(mode.Library, func() string { return "/lib" })
	modes.current, modes.active = mode.Library, true
	require.Equal(t, "/lib", r.Current())

	modes.current = mode.Thumbnail
	require.Equal(t, "/a.png", r.Current())
	require.Equal(t, "/lib", r.CurrentPath(mode.Library))
}

func TestOpener(t *testing.T) {
	dir := t.TempDir()
	a := writeImage(t, dir, "a.png")
	b := writeImage(t, dir, "b.png")
	sub := mkdir(t, dir, "sub")
	c := writeImage(t, sub, "c.png")

	newOpener := func() (*Opener, *WorkingDirectory, *FileList, *fakeModes) {
		wd := NewWorkingDirectory(WorkingDirectoryConfig{})
		list := NewFileList()
		modes := &fakeModes{}
		return NewOpener(wd, list, modes), wd, list, modes
	}

	t.Run("single image loads its directory", func(t *testing.T) {
		o, wd, list, modes := newOpener()
		require.NoError(t, o.Open([]string{b}))
		require.Equal(t, dir, wd.Dir())
		require.Equal(t, []string{a, b}, list.Paths())
		require.Equal(t, b, list.Current())
		require.Equal(t, []mode.Mode{mode.Image}, modes.entered)
	})

	t.Run("several images load only those", func(t *testing.T) {
		o, _, list, _ := newOpener()
		require.NoError(t, o.Open([]string{c, a}))
		require.Equal(t, []string{c, a}, list.Paths())
		require.Equal(t, c, list.Current())
	})

	t.Run("directory opens library", func(t *testing.T) {
		o, wd, _, modes := newOpener()
		require.NoError(t, o.Open([]string{sub}))
		require.Equal(t, sub, wd.Dir())
		require.Equal(t, []mode.Mode{mode.Library}, modes.entered)
	})

	t.Run("relative to working directory", func(t *testing.T) {
		o, wd, list, _ := newOpener()
		require.NoError(t, wd.Chdir(sub))
		require.NoError(t, o.Open([]string{filepath.Join("..", "a.png")}))
		require.Equal(t, a, list.Current())
	})

	t.Run("nothing valid", func(t *testing.T) {
		o, _, _, modes := newOpener()
		err := o.Open([]string{filepath.Join(dir, "missing.png")})
		require.EqualError(t, err, "No valid paths")
		require.Empty(t, modes.entered)
	})
}
