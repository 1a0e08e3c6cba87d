// Package thumbnail creates thumbnails in the background and keeps the grid
// shown in thumbnail mode.
package thumbnail

import (
	"context"
	"crypto/md5" //nolint:gosec // G501: the thumbnail cache names files by md5 of the uri
	"encoding/hex"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"

	"github.com/zjrosen/vimg/internal/cachemanager"
	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/loop"
	"github.com/zjrosen/vimg/internal/worker"
)

// Thumbnail edge lengths of the cache directories.
const (
	NormalSize = 128
	LargeSize  = 256
)

// CacheTTL is how long decoded thumbnails stay in memory.
const CacheTTL = 30 * time.Minute

// Created is delivered on the loop for every finished thumbnail.
type Created struct {
	Index int
	Path  string
	Image image.Image
	Err   error
}

// Config configures a Manager.
type Config struct {
	Pool  *worker.Pool // required
	Loop  *loop.Loop   // required
	Cache cachemanager.CacheManager[string, image.Image]
	// Dir is the base cache directory, usually $XDG_CACHE_HOME.
	Dir   string
	Large bool
}

// Manager creates thumbnails for batches of paths. A new batch supersedes the
// previous one: tasks of old batches return without work and their results
// are dropped.
type Manager struct {
	pool       *worker.Pool
	loop       *loop.Loop
	dir        string
	size       int
	images     *cachemanager.ReadThroughCache[image.Image]
	generation atomic.Uint64
	onCreated  []func(Created)
}

// DefaultDir returns $XDG_CACHE_HOME, falling back to ~/.cache.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return filepath.Join(os.TempDir(), "vimg-cache")
}

// New creates a manager.
func New(cfg Config) *Manager {
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir()
	}
	if cfg.Cache == nil {
		cfg.Cache = cachemanager.NewInMemoryCacheManager[string, image.Image]("thumbnails", CacheTTL, cachemanager.DefaultCleanupInterval)
	}
	m := &Manager{
		pool: cfg.Pool,
		loop: cfg.Loop,
		dir:  cfg.Dir,
		size: NormalSize,
	}
	if cfg.Large {
		m.size = LargeSize
	}
	m.images = cachemanager.NewReadThroughCache[image.Image](cfg.Cache, m.load, CacheTTL, false)
	return m
}

// OnCreated registers a hook run on the loop for each thumbnail of the
// current batch.
func (m *Manager) OnCreated(fn func(Created)) { m.onCreated = append(m.onCreated, fn) }

// Size returns the edge length of created thumbnails.
func (m *Manager) Size() int { return m.size }

// CachePath returns where the thumbnail of path is stored.
func (m *Manager) CachePath(path string) string {
	dir := "normal"
	if m.size == LargeSize {
		dir = "large"
	}
	return filepath.Join(m.dir, "thumbnails", dir, Name(path))
}

// Name returns the cache file name of path: the md5 of its file uri.
func Name(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	uri := (&url.URL{Scheme: "file", Path: path}).String()
	sum := md5.Sum([]byte(uri)) //nolint:gosec // G401: naming only
	return hex.EncodeToString(sum[:]) + ".png"
}

// CreateAsync starts a batch for paths and returns its generation.
func (m *Manager) CreateAsync(paths []string) uint64 {
	gen := m.generation.Add(1)
	log.Debug(log.CatThumbnail, "Creating thumbnails", "count", len(paths), "generation", gen)
	for i, path := range paths {
		err := m.pool.Submit(func(ctx context.Context) {
			if m.generation.Load() != gen {
				return
			}
			img, err := m.images.Get(ctx, path)
			m.loop.Post(func() { m.deliver(gen, Created{Index: i, Path: path, Image: img, Err: err}) })
		})
		if err != nil {
			log.ErrorErr(log.CatThumbnail, "Submitting thumbnail task", err, "path", path)
			return gen
		}
	}
	return gen
}

// Cancel drops the running batch.
func (m *Manager) Cancel() { m.generation.Add(1) }

// Invalidate forgets cached thumbnails of paths, for files changed on disk.
func (m *Manager) Invalidate(paths ...string) {
	_ = m.images.Invalidate(context.Background(), paths...)
}

func (m *Manager) deliver(gen uint64, created Created) {
	if m.generation.Load() != gen {
		return
	}
	if created.Err != nil {
		log.Warn(log.CatThumbnail, "Thumbnail failed", "path", created.Path, "error", created.Err)
	}
	for _, fn := range m.onCreated {
		fn(created)
	}
}

// load returns the thumbnail of path from the cache directory, creating it
// when missing or older than the image.
func (m *Manager) load(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	cached := m.CachePath(path)
	if ci, err := os.Stat(cached); err == nil && !ci.ModTime().Before(info.ModTime()) {
		if img, err := imaging.Open(cached); err == nil {
			return img, nil
		}
	}

	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	thumb := imaging.Thumbnail(src, m.size, m.size, imaging.Lanczos)
	if err := os.MkdirAll(filepath.Dir(cached), 0o700); err != nil {
		return thumb, nil //nolint:nilerr // the thumbnail is usable without the cache file
	}
	if err := imaging.Save(thumb, cached); err != nil {
		log.Warn(log.CatThumbnail, "Could not write thumbnail", "path", cached, "error", err)
	}
	return thumb, nil
}
