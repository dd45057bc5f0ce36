package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileConfigProviderDefaults(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "slumber.toml")
	if err := os.WriteFile(path, []byte(`container_name = "mc"`+"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := NewFileConfigProvider(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != DefaultListenAddr {
		t.Fatalf("ListenAddr = %q, want %q", cfg.ListenAddr, DefaultListenAddr)
	}
	if cfg.BackendPort != DefaultBackendPort {
		t.Fatalf("BackendPort = %d, want %d", cfg.BackendPort, DefaultBackendPort)
	}
	if cfg.IdleWindow != DefaultIdleWindow {
		t.Fatalf("IdleWindow = %v, want %v", cfg.IdleWindow, DefaultIdleWindow)
	}
	if cfg.ProbePeriod != DefaultProbePeriod {
		t.Fatalf("ProbePeriod = %v, want %v", cfg.ProbePeriod, DefaultProbePeriod)
	}
	if cfg.RetryInterval != DefaultRetryInterval {
		t.Fatalf("RetryInterval = %v, want %v", cfg.RetryInterval, DefaultRetryInterval)
	}
	if cfg.ConnectTimeout != DefaultConnectTimeout {
		t.Fatalf("ConnectTimeout = %v, want %v", cfg.ConnectTimeout, DefaultConnectTimeout)
	}
	if cfg.ProtocolVersion != DefaultProtocolVersion {
		t.Fatalf("ProtocolVersion = %d, want %d", cfg.ProtocolVersion, DefaultProtocolVersion)
	}
}

func TestFileConfigProviderTOMLOverrides(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "slumber.toml")
	body := `
listen_addr = "0.0.0.0:25565"
container_name = "survival"
backend_port = 25566
idle_window_sec = 600
probe_period_sec = 2
retry_interval_ms = 250
connect_timeout_ms = 2000
protocol_version = 765
admin_addr = "127.0.0.1:9090"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := NewFileConfigProvider(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != "0.0.0.0:25565" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.ContainerName != "survival" {
		t.Fatalf("ContainerName = %q", cfg.ContainerName)
	}
	if cfg.BackendPort != 25566 {
		t.Fatalf("BackendPort = %d", cfg.BackendPort)
	}
	if cfg.IdleWindow != 600*time.Second {
		t.Fatalf("IdleWindow = %v", cfg.IdleWindow)
	}
	if cfg.ProbePeriod != 2*time.Second {
		t.Fatalf("ProbePeriod = %v", cfg.ProbePeriod)
	}
	if cfg.RetryInterval != 250*time.Millisecond {
		t.Fatalf("RetryInterval = %v", cfg.RetryInterval)
	}
	if cfg.ConnectTimeout != 2*time.Second {
		t.Fatalf("ConnectTimeout = %v", cfg.ConnectTimeout)
	}
	if cfg.ProtocolVersion != 765 {
		t.Fatalf("ProtocolVersion = %d", cfg.ProtocolVersion)
	}
	if cfg.AdminAddr != "127.0.0.1:9090" {
		t.Fatalf("AdminAddr = %q", cfg.AdminAddr)
	}
}

func TestFileConfigProviderEmptyContainerNameFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "slumber.toml")
	if err := os.WriteFile(path, []byte(`container_name = ""`+"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := NewFileConfigProvider(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ContainerName != DefaultContainerName {
		t.Fatalf("ContainerName = %q, want default %q", cfg.ContainerName, DefaultContainerName)
	}
}

func TestFileConfigProviderRejectsUnsupportedExtension(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "slumber.ini")
	if err := os.WriteFile(path, []byte("container_name=mc\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := NewFileConfigProvider(path).Load(context.Background()); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}
