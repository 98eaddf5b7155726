// Package watcher re-runs verification when domain or trace files change
// on disk. Filesystem events are debounced and rate limited so editor
// save bursts trigger one run, not dozens.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/intentlang/isl/errors"
)

// RunFunc performs one verification pass
type RunFunc func(ctx context.Context) error

// Engine watches domain and trace paths and invokes a run function on change
type Engine struct {
	paths    []string
	run      RunFunc
	logger   *zap.SugaredLogger
	debounce time.Duration
	limiter  *rate.Limiter

	watcher *fsnotify.Watcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options tune debouncing and rate limiting
type Options struct {
	Debounce      time.Duration
	RatePerSecond float64
}

const defaultDebounce = 300 * time.Millisecond

// NewEngine creates a watcher over the given files or directories
func NewEngine(paths []string, run RunFunc, opts Options, logger *zap.SugaredLogger) (*Engine, error) {
	if len(paths) == 0 {
		return nil, errors.New("no paths to watch")
	}
	if run == nil {
		return nil, errors.New("run function is nil")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filesystem watcher")
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	perSecond := opts.RatePerSecond
	if perSecond <= 0 {
		perSecond = 2.0
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		paths:    paths,
		run:      run,
		logger:   logger,
		debounce: debounce,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
		watcher:  fsw,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start registers the watched paths and begins the event loop. Files are
// watched through their parent directory so editors that replace files on
// save (write to temp, rename over) keep triggering events.
func (e *Engine) Start() error {
	seen := make(map[string]bool)
	for _, path := range e.paths {
		info, err := os.Stat(path)
		if err != nil {
			return errors.Wrapf(err, "failed to stat watch path %s", path)
		}
		dir := path
		if !info.IsDir() {
			dir = filepath.Dir(path)
		}
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := e.watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "failed to watch %s", dir)
		}
	}

	e.wg.Add(1)
	go e.eventLoop()

	e.logger.Infow("Watch mode started",
		"paths", e.paths,
		"debounce", e.debounce.String())
	return nil
}

// Stop shuts down the event loop and releases the filesystem watcher
func (e *Engine) Stop() {
	e.cancel()
	e.watcher.Close()
	e.wg.Wait()
	e.logger.Info("Watch mode stopped")
}

func (e *Engine) eventLoop() {
	defer e.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-e.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-e.watcher.Events:
			if !ok {
				return
			}
			if !e.relevant(event) {
				continue
			}
			e.logger.Debugw("File change detected",
				"file", event.Name,
				"op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(e.debounce)
				timerC = timer.C
			} else {
				timer.Reset(e.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			e.fire()

		case err, ok := <-e.watcher.Errors:
			if !ok {
				return
			}
			e.logger.Warnw("Filesystem watcher error", "error", err)
		}
	}
}

// relevant reports whether an event touches a watched path. Directory
// watches accept any .json, .yaml, or .yml file inside them.
func (e *Engine) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	for _, path := range e.paths {
		if event.Name == path {
			return true
		}
		info, err := os.Stat(path)
		if err == nil && info.IsDir() && strings.HasPrefix(event.Name, path+string(os.PathSeparator)) {
			switch strings.ToLower(filepath.Ext(event.Name)) {
			case ".json", ".yaml", ".yml":
				return true
			}
		}
	}
	return false
}

func (e *Engine) fire() {
	if !e.limiter.Allow() {
		e.logger.Debugw("Re-verification rate limited")
		return
	}

	start := time.Now()
	if err := e.run(e.ctx); err != nil {
		if e.ctx.Err() != nil {
			return
		}
		e.logger.Errorw("Re-verification failed", "error", err)
		return
	}
	e.logger.Infow("Re-verification complete", "duration", time.Since(start).String())
}
