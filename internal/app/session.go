package app

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/wex/internal/config"
	"github.com/dshills/wex/internal/ex"
	"github.com/dshills/wex/internal/logging"
	"github.com/dshills/wex/internal/macro"
	"github.com/dshills/wex/internal/status"
	"github.com/dshills/wex/internal/stream"
	"github.com/dshills/wex/internal/watcher"
)

// Options configures a Session.
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config
	// File is the edited file. Empty gives an unnamed buffer.
	File string
	// Stream edits File through a Stream instead of loading it.
	Stream bool
	// LogOutput defaults to os.Stderr.
	LogOutput io.Writer
	// Prompter asks for macro names and variable values. Nil means input
	// variables keep their value and @ without a name fails.
	Prompter macro.Prompter
	// Clipboard defaults to the system clipboard.
	Clipboard macro.Clipboard
}

// Session is one editing session over a single file.
type Session struct {
	mu     sync.Mutex
	id     string
	cfg    *config.Config
	logger *logging.Logger

	store  *macro.Store
	fsm    *macro.FSM
	mode   *macro.Mode
	status *status.Bar
	editor *ex.Editor

	buffer  *ex.Buffer
	stream  *stream.Stream
	watcher *watcher.Watcher

	initOrder []string
	closed    bool
}

// New creates a session. Components are started in dependency order; on
// failure the ones already started are shut down again.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	s := &Session{
		id:  uuid.NewString(),
		cfg: cfg,
	}
	s.logger = logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Output: opts.LogOutput,
		Prefix: "wex",
	}).WithField("session", s.id)

	for _, step := range []func(Options) error{
		s.initStatus,
		s.initStore,
		s.initMacros,
		s.initBackend,
		s.initWatcher,
	} {
		if err := step(opts); err != nil {
			s.cleanup()
			return nil, err
		}
	}

	s.logger.Info("session started (%s)", opts.File)
	return s, nil
}

func (s *Session) initStatus(Options) error {
	s.status = status.New(s.cfg.Status.Width, status.WithMessageHandler(func(msg string) {
		s.logger.Debug("status: %s", msg)
	}))
	s.initOrder = append(s.initOrder, "status")
	return nil
}

func (s *Session) initStore(opts Options) error {
	storeOpts := []macro.StoreOption{macro.WithStoreLogger(s.logger.WithComponent("macro"))}
	if opts.Clipboard != nil {
		storeOpts = append(storeOpts, macro.WithClipboard(opts.Clipboard))
	}
	s.store = macro.NewStore(storeOpts...)

	path := s.cfg.MacrosPath()
	if err := s.store.Load(path); err != nil {
		return &InitError{Component: "macro store", Err: NewOperationError("load", path, err)}
	}
	s.initOrder = append(s.initOrder, "store")
	return nil
}

func (s *Session) initMacros(opts Options) error {
	s.fsm = macro.NewFSM(macro.Options{
		Store:     s.store,
		Status:    s.status,
		Prompter:  opts.Prompter,
		Logger:    s.logger,
		ConfigDir: s.cfg.ConfigDir,
	})
	s.mode = macro.NewMode(s.fsm, opts.Prompter)
	s.initOrder = append(s.initOrder, "macros")
	return nil
}

func (s *Session) initBackend(opts Options) error {
	find := stream.FindSettings{Regex: s.cfg.Find.Regex, MatchCase: s.cfg.Find.MatchCase}

	var backend ex.Backend
	if opts.Stream {
		if opts.File == "" {
			return &InitError{Component: "stream", Err: ErrNoFile}
		}
		st := stream.New(stream.Options{
			LineBuffer:     s.cfg.Stream.LineBuffer,
			BlockSize:      s.cfg.Stream.BlockSize,
			ContextLines:   s.cfg.Stream.ContextLines,
			RewindDistance: s.cfg.Stream.RewindDistance,
			RegexCache:     s.cfg.Stream.RegexCache,
			Find:           find,
		}, s.status, s.logger)
		if err := st.Attach(opts.File); err != nil {
			return &InitError{Component: "stream", Err: err}
		}
		s.stream = st
		backend = ex.NewStreamed(st)
	} else {
		buf, err := ex.OpenBuffer(opts.File,
			ex.WithFindSettings(find),
			ex.WithDisplay(s.status),
			ex.WithLogger(s.logger.WithComponent("buffer")))
		if err != nil {
			return &InitError{Component: "buffer", Err: err}
		}
		s.buffer = buf
		backend = buf
	}

	s.editor = ex.NewEditor(backend, s.mode, s.status, s.logger)
	s.initOrder = append(s.initOrder, "backend")
	return nil
}

func (s *Session) initWatcher(Options) error {
	if !s.cfg.WatchMacros {
		return nil
	}
	path := s.store.Path()
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		s.logger.Debug("not watching %s: %v", path, err)
		return nil
	}

	w, err := watcher.New(path, s.macrosChanged, watcher.WithLogger(s.logger))
	if err != nil {
		s.logger.Warn("not watching %s: %v", path, err)
		return nil
	}
	s.watcher = w
	s.initOrder = append(s.initOrder, "watcher")
	return nil
}

// macrosChanged reloads the store after the file changed on disk, unless
// the session holds changes of its own.
func (s *Session) macrosChanged(ev watcher.Event) {
	if !ev.Exists() {
		return
	}
	if s.store.IsModified() {
		s.logger.Warn("%s changed on disk; keeping unsaved macros", ev.Path)
		return
	}
	if err := s.store.Reload(); err != nil {
		s.logger.Warn("reload %s: %v", ev.Path, err)
		return
	}
	s.logger.Info("reloaded %s", ev.Path)
}

// cleanup shuts down started components in reverse order.
func (s *Session) cleanup() {
	for i := len(s.initOrder) - 1; i >= 0; i-- {
		switch s.initOrder[i] {
		case "watcher":
			s.watcher.Close()
		case "backend":
			if s.stream != nil {
				s.stream.Close()
			}
		}
	}
	s.initOrder = nil
}

// ID returns the session id written with every log line.
func (s *Session) ID() string { return s.id }

// Config returns the session configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Logger returns the session logger.
func (s *Session) Logger() *logging.Logger { return s.logger }

// Store returns the macro store.
func (s *Session) Store() *macro.Store { return s.store }

// FSM returns the macro state machine.
func (s *Session) FSM() *macro.FSM { return s.fsm }

// Mode returns the macro command interpreter.
func (s *Session) Mode() *macro.Mode { return s.mode }

// Editor returns the ex editor.
func (s *Session) Editor() *ex.Editor { return s.editor }

// Status returns the status bar.
func (s *Session) Status() *status.Bar { return s.status }

// Buffer returns the in-memory buffer, or nil in stream mode.
func (s *Session) Buffer() *ex.Buffer { return s.buffer }

// Stream returns the stream, or nil in buffer mode.
func (s *Session) Stream() *stream.Stream { return s.stream }

// Exec runs one ex command.
func (s *Session) Exec(command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.editor.Exec(command); err != nil {
		return NewOperationError("exec", command, err)
	}
	return nil
}

// Run executes every command, continuing past failures, and returns the
// failures together.
func (s *Session) Run(commands []string) error {
	var errs ErrorList
	for _, c := range commands {
		if err := s.Exec(c); err != nil {
			if errors.Is(err, ErrClosed) {
				return err
			}
			s.logger.Info("%v", err)
			errs.Add(err)
		}
	}
	return errs.AsError()
}

// Save writes the edited file. In stream mode the work file replaces the
// original.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	backend := s.editor.Backend()
	if !backend.IsModified() {
		return nil
	}
	if err := backend.Save(); err != nil {
		return NewOperationError("save", backend.Filename(), err)
	}
	return nil
}

// Close stops the watcher, saves a modified macro store and releases the
// stream. The file itself is not saved.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs ErrorList
	if s.watcher != nil {
		errs.Add(s.watcher.Close())
	}
	if s.store.IsModified() {
		if err := s.store.Save(); err != nil {
			errs.Add(NewOperationError("save", s.store.Path(), err))
		} else {
			s.logger.Info("saved %s", s.store.Path())
		}
	}
	if s.stream != nil {
		errs.Add(s.stream.Close())
	}
	s.logger.Debug("session closed")
	return errs.AsError()
}
