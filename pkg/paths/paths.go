// Package paths locates tabline's files on disk.
//
//	config.yaml   $TABLINE_CONFIG_DIR, else ~/.config/tabline
//	state files   $TABLINE_STATE_DIR, else ~/.local/state/tabline
//	bus socket    $TMPDIR/tabline-<session>.sock, pidfile alongside
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// dir is an XDG-style directory resolved once per process.
type dir struct {
	env  string
	rel  []string
	once sync.Once
	path string
}

func (d *dir) get() string {
	d.once.Do(func() {
		if v := os.Getenv(d.env); v != "" {
			d.path = v
			return
		}
		home, err := os.UserHomeDir()
		if err != nil {
			d.path = "."
			return
		}
		d.path = filepath.Join(append([]string{home}, d.rel...)...)
	})
	return d.path
}

var (
	configDir = &dir{env: "TABLINE_CONFIG_DIR", rel: []string{".config", "tabline"}}
	stateDir  = &dir{env: "TABLINE_STATE_DIR", rel: []string{".local", "state", "tabline"}}
)

func ConfigDir() string { return configDir.get() }

func StateDir() string { return stateDir.get() }

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StatePath names a file in the state directory, such as "perf.log".
func StatePath(name string) string {
	return filepath.Join(StateDir(), name)
}

// EnsureDir creates path and its parents when missing.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return nil
}

func EnsureStateDir() (string, error) {
	d := StateDir()
	return d, EnsureDir(d)
}

// SocketPath returns the message bus socket for a tmux session.
func SocketPath(session string) string {
	return runtimePath(session, "sock")
}

// PidPath returns the message bus pidfile for a tmux session.
func PidPath(session string) string {
	return runtimePath(session, "pid")
}

func runtimePath(session, ext string) string {
	if session == "" {
		session = "default"
	}
	session = strings.Map(func(r rune) rune {
		if r == '/' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, session)
	return filepath.Join(os.TempDir(), fmt.Sprintf("tabline-%s.%s", session, ext))
}

// ResetForTest forgets resolved directories so the environment is read again.
func ResetForTest() {
	configDir = &dir{env: configDir.env, rel: configDir.rel}
	stateDir = &dir{env: stateDir.env, rel: stateDir.rel}
}
