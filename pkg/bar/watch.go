package bar

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/b/tabline/pkg/config"
	"github.com/b/tabline/pkg/logging"
)

// Sender delivers messages into a running program; *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// WatchConfig reloads path whenever it is written and sends the result to p.
// The directory is watched rather than the file so editors that replace the
// file on save are seen too. The returned function stops watching.
func WatchConfig(p Sender, path string) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := config.LoadConfig(path)
				p.Send(configMsg{cfg: cfg, err: err})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn(logging.CatConfig, "config watcher error", "error", err)
			}
		}
	}()
	return watcher.Close, nil
}
