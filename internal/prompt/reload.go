package prompt

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader watches a config file for changes and delivers freshly
// loaded configs to a swap callback.
type Reloader struct {
	watcher *fsnotify.Watcher
	path    string
	swap    func(*Config, string)
}

// NewReloader creates a file watcher for the given config path.
func NewReloader(path string, swap func(cfg *Config, hash string)) (*Reloader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("prompt: config not watchable: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("prompt: create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("prompt: watch %q: %w", path, err)
	}
	return &Reloader{watcher: watcher, path: path, swap: swap}, nil
}

// Run watches for changes and reloads config. Blocks until ctx is
// cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait 500ms after last write before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					cfg, hash, err := LoadConfigWithHash(r.path)
					if err != nil {
						fmt.Fprintf(os.Stderr, "hot-reload failed: %v\n", err)
						return
					}
					r.swap(cfg, hash)
					fmt.Fprintf(os.Stderr, "hot-reload: copilot config reloaded\n")
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "file watcher error: %v\n", err)
		}
	}
}
