// Package app contains the root application model.
//
// Everything that touches a registry runs inside Update: key presses,
// submitted command lines, worker results drained from the loop, log entries
// and file system events all arrive as messages.
package app

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/disintegration/imaging"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/vimg/internal/cachemanager"
	"github.com/zjrosen/vimg/internal/command"
	"github.com/zjrosen/vimg/internal/config"
	"github.com/zjrosen/vimg/internal/files"
	"github.com/zjrosen/vimg/internal/history"
	"github.com/zjrosen/vimg/internal/keys"
	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/loop"
	"github.com/zjrosen/vimg/internal/manipulate"
	"github.com/zjrosen/vimg/internal/mode"
	"github.com/zjrosen/vimg/internal/pubsub"
	"github.com/zjrosen/vimg/internal/runner"
	"github.com/zjrosen/vimg/internal/status"
	"github.com/zjrosen/vimg/internal/thumbnail"
	"github.com/zjrosen/vimg/internal/ui/commandline"
	"github.com/zjrosen/vimg/internal/ui/statusbar"
	"github.com/zjrosen/vimg/internal/ui/surface"
	"github.com/zjrosen/vimg/internal/ui/views"
	"github.com/zjrosen/vimg/internal/watcher"
	"github.com/zjrosen/vimg/internal/worker"
)

// Options configures a Model.
type Options struct {
	Config config.Config
	// ConfigPath receives alias changes. Empty disables saving.
	ConfigPath string
	// Paths are opened on start. Without paths the current directory opens
	// in library mode.
	Paths  []string
	Tracer trace.Tracer
	// Inspect builds the registries only: nothing is opened, watched or
	// persisted. Used to list commands and status modules.
	Inspect bool
}

// Model is the root application state.
type Model struct {
	cfg        config.Config
	configPath string
	width      int
	height     int
	quitting   bool

	ctx    context.Context
	cancel context.CancelFunc

	loop     *loop.Loop
	modes    *mode.Registry
	commands *command.Registry
	status   *status.Registry
	runner   *runner.Runner
	external *runner.External
	keys     *keys.Handler
	history  *history.History

	wd       *files.WorkingDirectory
	list     *files.FileList
	library  *files.Library
	marks    *files.Marks
	receiver *files.PathReceiver
	opener   *files.Opener

	images      *cachemanager.ReadThroughCache[image.Image]
	current     imageState
	thumbnails  *thumbnail.Manager
	grid        *thumbnail.Grid
	manipulator *manipulate.Manipulator
	editedPath  string

	pools map[string]*worker.Pool

	surfaces    map[mode.Mode]*surface.Surface
	statusbar   *statusbar.Model
	commandline *commandline.Model

	watcher       *watcher.Watcher
	watchListener *pubsub.ContinuousListener[watcher.Changed]
	logListener   *log.LogListener
	pipeListener  *pubsub.ContinuousListener[runner.PipeOutput]
}

// imageState is what image mode knows about the current path.
type imageState struct {
	path   string
	img    image.Image
	size   string
	width  int
	height int
	err    error
}

// New builds the application and opens opts.Paths.
func New(opts Options) (*Model, error) {
	cfg := opts.Config
	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		ctx:        ctx,
		cancel:     cancel,
		loop:       loop.New(),
		modes:      mode.NewRegistry(),
		commands:   command.NewRegistry(),
		status:     status.NewRegistry(),
		surfaces:   make(map[mode.Mode]*surface.Surface),
		pools: map[string]*worker.Pool{
			"external":   worker.New(worker.Config{Name: "external", MaxWorkers: cfg.External.Workers}),
			"thumbnail":  worker.New(worker.Config{Name: "thumbnail", MaxWorkers: cfg.Thumbnail.Workers}),
			"manipulate": worker.New(worker.Config{Name: "manipulate", MaxWorkers: 1}),
			"image":      worker.New(worker.Config{Name: "image", MaxWorkers: 2}),
		},
	}

	if err := m.setupHistory(opts.Inspect); err != nil {
		cancel()
		return nil, err
	}
	m.setupFiles()
	m.setupImages()
	if err := m.setupRunner(opts.Tracer); err != nil {
		m.release()
		return nil, err
	}
	m.setupSurfaces()
	m.setupKeys()
	m.setupWidgets()
	m.register()

	if opts.Inspect {
		return m, nil
	}

	m.logListener = log.NewListener(ctx)
	m.pipeListener = pubsub.NewContinuousListener[runner.PipeOutput](ctx, m.external)
	if cfg.MonitorFS {
		m.startWatcher()
	}
	m.open(opts.Paths)
	m.status.Update()
	return m, nil
}

func (m *Model) setupHistory(inspect bool) error {
	path := m.cfg.History.Path
	switch {
	case inspect:
		path = ""
	case path == "":
		path = filepath.Join(config.Dir(), "history.db")
	}
	store, err := history.Open(path, m.cfg.History.Limit)
	if err != nil {
		return err
	}
	m.history = history.New(store)
	return nil
}

func (m *Model) setupFiles() {
	m.wd = files.NewWorkingDirectory(files.WorkingDirectoryConfig{ShowHidden: m.cfg.Library.ShowHidden})
	m.list = files.NewFileList()
	m.library = files.NewLibrary()
	m.marks = files.NewMarks()
	m.receiver = files.NewPathReceiver(m.list, m.modes)
	m.opener = files.NewOpener(m.wd, m.list, m.modes)

	m.wd.OnLoad(func(dir string, images, directories []string) {
		m.library.Load(images, directories)
		if m.watcher != nil && m.watcher.Dir() != dir {
			if err := m.watcher.Watch(dir); err != nil {
				log.ErrorErr(log.CatWatcher, "Failed to watch directory", err, "dir", dir)
			}
		}
	})
	m.list.OnChange(func(path string) { m.loadImage(path) })
	m.marks.OnChange(func(int) { m.status.Update() })

	m.receiver.SetSource(mode.Library, m.library.Selected)
}

func (m *Model) setupImages() {
	cache := cachemanager.NewInMemoryCacheManager[string, image.Image](
		"images", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	m.images = cachemanager.NewReadThroughCache[image.Image](cache, openImage, cachemanager.DefaultExpiration, false)

	m.manipulator = manipulate.New(manipulate.Config{
		Pool:     m.pools["manipulate"],
		Loop:     m.loop,
		Debounce: m.cfg.Manipulate.Debounce,
	})
	m.manipulator.OnApplied(func(manipulate.Result) { m.status.Update() })

	m.thumbnails = thumbnail.New(thumbnail.Config{
		Pool:  m.pools["thumbnail"],
		Loop:  m.loop,
		Dir:   m.cfg.Thumbnail.Dir,
		Large: m.cfg.Thumbnail.Large,
	})
	m.grid = thumbnail.NewGrid(m.thumbnails.Size())
	m.thumbnails.OnCreated(m.grid.Set)
	m.receiver.SetSource(mode.Thumbnail, m.grid.Selected)
}

func (m *Model) setupRunner(tracer trace.Tracer) error {
	aliases := runner.NewAliases()
	if err := aliases.Load(m.cfg.Aliases); err != nil {
		return err
	}
	if m.configPath != "" {
		aliases.OnChange(func() {
			if err := config.SaveAliases(m.configPath, aliases.Export()); err != nil {
				log.ErrorErr(log.CatConfig, "Failed to save aliases", err, "path", m.configPath)
			}
		})
	}

	m.external = runner.NewExternal(runner.ExternalConfig{
		Shell:  m.cfg.External.Shell,
		Pool:   m.pools["external"],
		Loop:   m.loop,
		Open:   m.opener.Open,
		Tracer: tracer,
	})
	m.runner = runner.New(runner.Deps{
		Commands: m.commands,
		Status:   m.status,
		Aliases:  aliases,
		Paths:    m.receiver,
		Marks:    m.marks,
		Shell:    m.external,
		Tracer:   tracer,
	})
	return nil
}

func (m *Model) setupSurfaces() {
	hasImages := func() bool { return m.list.Len() > 0 }
	m.surfaces[mode.Image] = surface.New("image", surface.WithEnterable(hasImages))
	m.surfaces[mode.Library] = surface.New("library", surface.WithEnterable(func() bool { return m.wd.Dir() != "" }))
	m.surfaces[mode.Thumbnail] = surface.New("thumbnail", surface.WithEnterable(hasImages))
	m.surfaces[mode.Command] = surface.New("command")
	m.surfaces[mode.Manipulate] = surface.New("manipulate")
	for md, s := range m.surfaces {
		if err := m.modes.SetSurface(md, s); err != nil {
			panic(err)
		}
	}
	// image mode starts active
	m.surfaces[mode.Image].Show()

	m.modes.OnEntered(m.entered)
	m.modes.OnLeft(m.left)
}

func (m *Model) setupKeys() {
	bindings := keys.Defaults()
	if err := bindings.Load(m.cfg.Keybindings); err != nil {
		log.ErrorErr(log.CatKeys, "Invalid keybindings", err)
	}
	m.keys = keys.NewHandler(bindings)
	m.keys.OnChange(m.status.Update)
}

func (m *Model) setupWidgets() {
	m.statusbar = statusbar.New(m.cfg.StatusBar, m.status, m.modes)
	m.status.OnUpdate(m.statusbar.Refresh)
	m.status.OnClear(m.statusbar.Clear)
	m.commandline = commandline.New(m.commands, m.runner.Aliases().Names)
	m.surfaces[mode.Command].OnShow(func() { m.commandline.Focus() })
	m.surfaces[mode.Command].OnHide(m.commandline.Blur)
}

func (m *Model) startWatcher() {
	w, err := watcher.New(watcher.Config{
		Debounce:   watcher.DefaultConfig().Debounce,
		ShowHidden: m.cfg.Library.ShowHidden,
	})
	if err != nil {
		// The viewer works without monitoring.
		log.ErrorErr(log.CatWatcher, "Failed to create watcher", err)
		return
	}
	w.Start()
	m.watcher = w
	m.watchListener = pubsub.NewContinuousListener[watcher.Changed](m.ctx, w)
}

func (m *Model) open(paths []string) {
	if len(paths) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			log.ErrorErr(log.CatFiles, "Failed to get working directory", err)
			return
		}
		paths = []string{cwd}
	}
	if err := m.opener.Open(paths); err != nil {
		log.ErrorErr(log.CatFiles, "Failed to open paths", err)
	}
}

// entered keeps exactly one of the main views visible and prepares the mode.
func (m *Model) entered(md mode.Mode) {
	switch md {
	case mode.Image, mode.Library, mode.Thumbnail:
		for _, other := range mode.GlobalModes() {
			if other != md {
				m.surfaces[other].Hide()
			}
		}
	}
	switch md {
	case mode.Thumbnail:
		m.grid.Load(m.list.Paths(), m.list.Index())
		m.thumbnails.CreateAsync(m.grid.Paths())
	case mode.Library:
		m.library.SelectPath(m.list.Current())
	case mode.Manipulate:
		m.editedPath = m.list.Current()
	}
	m.status.Update()
}

func (m *Model) left(md mode.Mode) {
	switch md {
	case mode.Command:
		m.commandline.Reset()
		m.history.Reset()
		m.keys.Clear()
	case mode.Manipulate:
		m.manipulator.Reset()
	case mode.Thumbnail:
		m.thumbnails.Cancel()
	}
	switch md {
	case mode.Library, mode.Thumbnail, mode.Command, mode.Manipulate:
		m.surfaces[md].Hide()
	}
}

// loadImage decodes path off the loop for the image view.
func (m *Model) loadImage(path string) {
	if path == "" {
		m.current = imageState{}
		return
	}
	m.current = imageState{path: path}
	err := m.pools["image"].Submit(func(ctx context.Context) {
		img, err := m.images.Get(ctx, path)
		state := imageState{path: path, img: img, size: files.Size(path), err: err}
		if img != nil {
			state.width, state.height = img.Bounds().Dx(), img.Bounds().Dy()
		}
		m.loop.Post(func() {
			if m.current.path == state.path {
				m.current = state
			}
		})
	})
	if err != nil {
		log.Debug(log.CatFiles, "Not loading image", "path", path, "error", err)
	}
}

// CurrentImage returns the current image once the background load finished.
func (m *Model) CurrentImage() (image.Image, string, error) {
	path := m.list.Current()
	switch {
	case path == "":
		return nil, "", errors.New("no image")
	case m.current.path != path:
		return nil, path, errors.New("image not loaded")
	case m.current.err != nil:
		return nil, path, m.current.err
	case m.current.img == nil:
		return nil, path, errors.New("image still loading")
	}
	return m.current.img, path, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loop.Wait(m.ctx)}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	if m.watchListener != nil {
		cmds = append(cmds, m.watchListener.Listen())
	}
	if m.pipeListener != nil {
		cmds = append(cmds, m.pipeListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case loop.ReadyMsg:
		if m.loop.Drain() > 0 {
			m.status.Update()
		}
		cmd = m.loop.Wait(m.ctx)

	case log.LogEvent:
		cmd = tea.Batch(m.statusbar.Show(msg.Payload), m.logListener.Listen())

	case statusbar.DismissMsg:
		cmd = m.statusbar.Update(msg)

	case watcher.Event:
		m.filesChanged(msg.Payload)
		cmd = m.watchListener.Listen()

	case runner.PipeEvent:
		m.pipeReceived(msg.Payload)
		cmd = m.pipeListener.Listen()

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}

	if m.quitting {
		return m, tea.Quit
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.statusbar.SetSize(width)
	m.commandline.SetSize(width)
	m.syncColumns()
}

func (m *Model) syncColumns() {
	m.grid.SetColumns(views.Columns(m.grid.Size(), m.width))
}

// handleKey routes a key press. In command mode the fixed command line keys
// and the command mode bindings win, everything else is typed text.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.CommandLine.Quit) {
		m.quit()
		return nil
	}
	if m.statusbar.Message() != "" {
		m.status.Clear()
	}

	current, err := m.modes.Current()
	if err != nil {
		log.ErrorErr(log.CatKeys, "Key press without active mode", err)
		return nil
	}

	if current == mode.Command {
		switch {
		case key.Matches(msg, keys.CommandLine.Submit):
			m.submit()
			return nil
		case key.Matches(msg, keys.CommandLine.Complete):
			m.commandline.Complete(m.modes.Last(mode.Command), msg.String() == "shift+tab")
			return nil
		}
		if text, ok := m.keys.Bindings().Get(mode.Command, keys.Token(msg.String())); ok {
			m.run(text, "", mode.Command)
			return nil
		}
		m.history.Reset()
		return m.commandline.Update(msg)
	}

	result := m.keys.Press(current, msg.String())
	if result.Matched() {
		m.run(result.Command, result.Count, current)
	}
	return nil
}

// submit leaves command mode and runs the typed text in the mode returned
// to on the next loop turn.
func (m *Model) submit() {
	text := m.commandline.Text()
	if text != "" {
		m.history.Add(text)
	}
	if err := m.modes.Leave(mode.Command); err != nil {
		log.ErrorErr(log.CatMode, "Failed to leave command mode", err)
		return
	}
	target, err := m.modes.Current()
	if err != nil {
		return
	}
	m.loop.Post(func() { m.run(text, "", target) })
}

func (m *Model) run(text, count string, md mode.Mode) {
	var err error
	if n, convErr := strconv.Atoi(count); convErr == nil && count != "" {
		err = m.runner.RunWithCount(text, n, md)
	} else {
		err = m.runner.Run(text, md)
	}
	if err != nil {
		log.Debug(log.CatCommand, "Command failed", "text", text, "mode", md, "error", err)
	}
	m.syncColumns()
}

// filesChanged reloads the working directory and refreshes what depends on it.
func (m *Model) filesChanged(changed watcher.Changed) {
	if changed.Dir != m.wd.Dir() {
		return
	}
	log.Debug(log.CatWatcher, "Working directory changed", "dir", changed.Dir, "paths", len(changed.Paths))

	if err := m.images.Invalidate(m.ctx, changed.Paths...); err != nil {
		log.ErrorErr(log.CatCache, "Failed to invalidate images", err)
	}
	m.thumbnails.Invalidate(changed.Paths...)

	if err := m.wd.Reload(); err != nil {
		log.ErrorErr(log.CatFiles, "Failed to reload directory", err, "dir", changed.Dir)
		return
	}
	current := m.list.Current()
	if current != "" && filepath.Dir(current) == m.wd.Dir() {
		m.list.Load(m.wd.Images(), current)
	}
	if m.modes.Active(mode.Thumbnail) {
		m.grid.Load(m.list.Paths(), m.list.Index())
		m.thumbnails.CreateAsync(m.grid.Paths())
	}
	m.status.Update()
}

// pipeReceived logs the output of a piped shell command.
func (m *Model) pipeReceived(out runner.PipeOutput) {
	lines := 0
	for _, line := range strings.Split(out.Stdout, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	log.Debug(log.CatExternal, "Pipe output received", "job", out.JobID, "command", out.Command, "lines", lines)
}

// quit stops the workers, waiting at most the configured timeout, and ends
// the program after the current update.
func (m *Model) quit() {
	timeout := m.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = worker.DefaultShutdownTimeout
	}
	_ = m.shutdownPools(timeout)
	m.quitting = true
}

// shutdownPools stops all pools at once, so they share one deadline.
func (m *Model) shutdownPools(timeout time.Duration) error {
	var g errgroup.Group
	for name, pool := range m.pools {
		g.Go(func() error {
			err := pool.Shutdown(timeout)
			if err != nil {
				log.ErrorErr(log.CatWorker, "Worker pool did not stop", err, "pool", name)
			}
			return err
		})
	}
	return g.Wait()
}

// Quitting reports whether quit ran.
func (m *Model) Quitting() bool { return m.quitting }

// Commands returns the command registry.
func (m *Model) Commands() *command.Registry { return m.commands }

// Status returns the status module registry.
func (m *Model) Status() *status.Registry { return m.status }

// Modes returns the mode registry.
func (m *Model) Modes() *mode.Registry { return m.modes }

// Close releases resources held by the application.
func (m *Model) Close() error {
	var errs []error
	if !m.quitting {
		if err := m.shutdownPools(worker.DefaultShutdownTimeout); err != nil {
			errs = append(errs, err)
		}
	}
	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, m.release())
	return errors.Join(errs...)
}

func (m *Model) release() error {
	m.cancel()
	if m.external != nil {
		m.external.Close()
	}
	return m.history.Store().Close()
}

func openImage(_ context.Context, path string) (image.Image, error) {
	return imaging.Open(path, imaging.AutoOrientation(true))
}
