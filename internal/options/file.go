package options

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"courtsim/internal/catalog"
)

// FileProvider loads the scenario catalog from a YAML file and reloads it
// when the file changes. A bad reload keeps the last good catalog; only the
// initial load is fatal.
type FileProvider struct {
	path string
	log  *zap.Logger

	mu   sync.RWMutex
	opts []catalog.ScenarioOption

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

// NewFileProvider loads path and starts watching it for changes.
func NewFileProvider(path string, log *zap.Logger) (*FileProvider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := &FileProvider{
		path: path,
		log:  log,
		done: make(chan struct{}),
	}
	opts, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	p.opts = opts

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// Watch the directory: editors replace files, which drops a watch on the
	// file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	p.watcher = watcher
	go p.watch()
	return p, nil
}

func (p *FileProvider) Fetch(context.Context) Payload {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]catalog.ScenarioOption, len(p.opts))
	copy(out, p.opts)
	return Payload{Source: SourceLocal, Options: out}
}

// Close stops the file watcher. Safe to call repeatedly.
func (p *FileProvider) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.watcher.Close()
	})
	return err
}

func (p *FileProvider) watch() {
	for {
		select {
		case <-p.done:
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Name != p.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			p.reload()
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.log.Warn("scenario file watch error", zap.Error(err))
		}
	}
}

func (p *FileProvider) reload() {
	opts, err := loadFile(p.path)
	if err != nil {
		p.log.Warn("scenario reload failed, keeping previous catalog",
			zap.String("path", p.path),
			zap.Error(err))
		return
	}
	p.mu.Lock()
	p.opts = opts
	p.mu.Unlock()
	p.log.Info("scenario catalog reloaded",
		zap.String("path", p.path),
		zap.Int("count", len(opts)))
}

func loadFile(path string) ([]catalog.ScenarioOption, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var opts []catalog.ScenarioOption
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	if err := Validate(opts); err != nil {
		return nil, fmt.Errorf("invalid scenario file %s: %w", path, err)
	}
	return opts, nil
}
