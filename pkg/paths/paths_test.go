package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func setupTestDirs(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("TABLINE_CONFIG_DIR", "")
	t.Setenv("TABLINE_STATE_DIR", "")
	t.Setenv("HOME", tmp)
	ResetForTest()
	return tmp
}

func TestConfigDir_EnvOverride(t *testing.T) {
	tmp := setupTestDirs(t)
	override := filepath.Join(tmp, "custom-config")
	os.MkdirAll(override, 0755)
	t.Setenv("TABLINE_CONFIG_DIR", override)
	ResetForTest()

	if got := ConfigDir(); got != override {
		t.Errorf("ConfigDir() = %q, want %q", got, override)
	}
}

func TestConfigDir_Default(t *testing.T) {
	tmp := setupTestDirs(t)
	want := filepath.Join(tmp, ".config", "tabline")
	if got := ConfigDir(); got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestStateDir_EnvOverride(t *testing.T) {
	tmp := setupTestDirs(t)
	override := filepath.Join(tmp, "custom-state")
	os.MkdirAll(override, 0755)
	t.Setenv("TABLINE_STATE_DIR", override)
	ResetForTest()

	if got := StateDir(); got != override {
		t.Errorf("StateDir() = %q, want %q", got, override)
	}
}

func TestStateDir_Default(t *testing.T) {
	tmp := setupTestDirs(t)
	want := filepath.Join(tmp, ".local", "state", "tabline")
	if got := StateDir(); got != want {
		t.Errorf("StateDir() = %q, want %q", got, want)
	}
}

func TestConfigPath(t *testing.T) {
	tmp := setupTestDirs(t)
	want := filepath.Join(tmp, ".config", "tabline", "config.yaml")
	if got := ConfigPath(); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
}

func TestStatePath(t *testing.T) {
	tmp := setupTestDirs(t)
	want := filepath.Join(tmp, ".local", "state", "tabline", "perf.log")
	if got := StatePath("perf.log"); got != want {
		t.Errorf("StatePath(\"perf.log\") = %q, want %q", got, want)
	}
}

func TestEnsureDir_CreatesParents(t *testing.T) {
	tmp := t.TempDir()
	nested := filepath.Join(tmp, "a", "b", "tabline")

	if err := EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir() error: %v", err)
	}
	info, err := os.Stat(nested)
	if err != nil || !info.IsDir() {
		t.Errorf("EnsureDir() did not create directory %q", nested)
	}
	if err := EnsureDir(nested); err != nil {
		t.Errorf("EnsureDir() on existing dir: %v", err)
	}
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(filepath.Join(file, "tabline")); err == nil {
		t.Error("EnsureDir() under a regular file succeeded")
	}
}

func TestEnsureStateDir_Creates(t *testing.T) {
	tmp := setupTestDirs(t)
	expected := filepath.Join(tmp, ".local", "state", "tabline")

	dir, err := EnsureStateDir()
	if err != nil {
		t.Fatalf("EnsureStateDir() error: %v", err)
	}
	if dir != expected {
		t.Errorf("EnsureStateDir() = %q, want %q", dir, expected)
	}
	info, err := os.Stat(expected)
	if err != nil || !info.IsDir() {
		t.Errorf("EnsureStateDir() did not create directory %q", expected)
	}
}

func TestRuntimePaths(t *testing.T) {
	t.Setenv("TMPDIR", "/run/test")
	if got, want := SocketPath("work"), filepath.Join("/run/test", "tabline-work.sock"); got != want {
		t.Errorf("SocketPath() = %q, want %q", got, want)
	}
	if got, want := PidPath(""), filepath.Join("/run/test", "tabline-default.pid"); got != want {
		t.Errorf("PidPath() = %q, want %q", got, want)
	}
	if got, want := SocketPath("a/b"), filepath.Join("/run/test", "tabline-a_b.sock"); got != want {
		t.Errorf("SocketPath() = %q, want %q", got, want)
	}
}
