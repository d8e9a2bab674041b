package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lixenwraith/starfield/core"
)

// ReadSettings parses a dotenv-syntax settings file into a key/value batch
func ReadSettings(path string) (map[string]string, error) {
	batch, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	return batch, nil
}

// Watcher delivers the full contents of a settings file every time it is written
// Batches are applied by the receiver, the watcher never touches Settings
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	batches chan map[string]string
	done    chan struct{}
	log     *zap.Logger
}

// NewWatcher watches the directory holding path, editors that replace the file on save still trigger a reload
func NewWatcher(path string, log *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:    abs,
		fs:      fw,
		batches: make(chan map[string]string, 4),
		done:    make(chan struct{}),
		log:     log.Named("settings"),
	}
	w.start()
	return w, nil
}

// start runs the event loop under the crash handler
func (w *Watcher) start() {
	core.Go(w.loop)
}

// Batches yields one batch per settings file change
func (w *Watcher) Batches() <-chan map[string]string {
	return w.batches
}

// Close stops watching, Batches is closed once the loop exits
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.batches)

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			batch, err := ReadSettings(w.path)
			if err != nil {
				w.log.Warn("settings reload failed", zap.Error(err))
				continue
			}
			w.log.Info("settings reloaded", zap.String("path", w.path), zap.Int("keys", len(batch)))

			// Drop the oldest pending batch rather than block, every batch carries the whole file
			select {
			case w.batches <- batch:
			default:
				select {
				case <-w.batches:
				default:
				}
				w.batches <- batch
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}
