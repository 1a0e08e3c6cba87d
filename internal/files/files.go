// Package files tracks the images and directories vimg works with: the image
// file list, the working directory, the library listing, marks, and the path
// each mode considers current.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// IsImage reports whether path is a regular file whose content is an image.
func IsImage(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt.String(), "image/")
}

// IsDir reports whether path is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Supported splits paths into images and directories, dropping everything else.
func Supported(paths []string) (images, directories []string) {
	for _, path := range paths {
		switch {
		case IsDir(path):
			directories = append(directories, path)
		case IsImage(path):
			images = append(images, path)
		}
	}
	return images, directories
}

// ListDir returns the absolute paths of the entries of directory, sorted.
// Dot files are skipped unless showHidden is set.
func ListDir(directory string, showHidden bool) ([]string, error) {
	directory, err := filepath.Abs(ExpandHome(directory))
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", directory, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !showHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(directory, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Size returns a human readable size: bytes for files, the number of entries
// for directories.
func Size(path string) string {
	if path == "" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil {
		return "N/A"
	}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return "N/A"
		}
		return fmt.Sprint(len(entries))
	}
	return humanize.Bytes(uint64(info.Size()))
}

// Modified returns the modification time of path as yy-mm-dd HH:MM.
func Modified(path string) string {
	if path == "" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil {
		return "N/A"
	}
	return info.ModTime().Format("06-01-02 15:04")
}

// ExpandHome replaces a leading ~ with the home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// CollapseHome replaces a leading home directory with ~.
func CollapseHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if strings.HasPrefix(path, home+string(filepath.Separator)) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}
