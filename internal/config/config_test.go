package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup. (*testing.T).Chdir requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore chdir: %v", err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "unit")
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "release" {
		t.Fatalf("mode=%q, want release", cfg.Mode)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port=%d, want 8080", cfg.Port)
	}
	if cfg.UploadDir != "./uploads" {
		t.Fatalf("upload_dir=%q, want ./uploads", cfg.UploadDir)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Fatalf("ping_period=%v, want 54s", cfg.PingPeriod)
	}
	if cfg.WriteTimeout != 5*time.Second {
		t.Fatalf("write_timeout=%v, want 5s", cfg.WriteTimeout)
	}
	if cfg.ReadLimit != 32768 {
		t.Fatalf("read_limit=%d, want 32768", cfg.ReadLimit)
	}
	if len(cfg.ICEServers) != 1 || len(cfg.ICEServers[0].URLs) != 1 {
		t.Fatalf("ice_servers=%+v, want one default STUN entry", cfg.ICEServers)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
mode: debug
port: 9090
upload_dir: ./files
ping_period: 30s
ice_servers:
  - urls: ["stun:stun.example.org:3478"]
  - urls: ["turn:turn.example.org:3478"]
    username: relay
    credential: hunter2
`
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "config.unit.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_ENV", "unit")
	chdir(t, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "debug" {
		t.Fatalf("mode=%q, want debug", cfg.Mode)
	}
	if cfg.Port != 9090 {
		t.Fatalf("port=%d, want 9090", cfg.Port)
	}
	if cfg.PingPeriod != 30*time.Second {
		t.Fatalf("ping_period=%v, want 30s", cfg.PingPeriod)
	}
	if len(cfg.ICEServers) != 2 {
		t.Fatalf("ice_servers=%d entries, want 2", len(cfg.ICEServers))
	}
	turn := cfg.ICEServers[1]
	if turn.Username != "relay" || turn.Credential != "hunter2" {
		t.Fatalf("turn entry=%+v, want relay/hunter2", turn)
	}
}
