package files

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimg/internal/mode"
)

// writeImage writes a small PNG at dir/name and returns its path.
func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(imaging.New(4, 4, color.White), path))
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mkdir(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.Mkdir(path, 0o755))
	return path
}

type fakeModes struct {
	active  bool
	current mode.Mode
	entered []mode.Mode
}

func (f *fakeModes) Enter(m mode.Mode) error {
	f.active = true
	f.current = m
	f.entered = append(f.entered, m)
	return nil
}

func (f *fakeModes) Current() (mode.Mode, error) {
	if !f.active {
		return 0, mode.ErrNoActiveMode
	}
	return f.current, nil
}
