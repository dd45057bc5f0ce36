// Package config loads slumber's file-based configuration (TOML or YAML,
// selected by file extension), following the teacher's decode-then-default
// shape for config loading.
package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// AdminLogBufferConfig controls the in-memory log ring buffer the admin
// server's /logs endpoint serves from.
type AdminLogBufferConfig struct {
	Enabled bool
	Size    int
}

// LoggingConfig configures the slog-based logging runtime.
type LoggingConfig struct {
	// Level is one of: debug, info, warn, error.
	Level string
	// Format is one of: json, text.
	Format string
	// Output is one of: stderr, stdout, discard; or a file path.
	Output string
	// AddSource enables source file/line reporting.
	AddSource   bool
	AdminBuffer AdminLogBufferConfig
}

// Config holds every row of spec.md §6's configuration table plus the
// ambient AdminAddr/Logging fields.
type Config struct {
	ListenAddr      string
	ContainerName   string
	BackendPort     int
	IdleWindow      time.Duration
	ProbePeriod     time.Duration
	RetryInterval   time.Duration
	ConnectTimeout  time.Duration
	ProtocolVersion int32

	AdminAddr string
	Logging   LoggingConfig
}

// Defaults, per spec.md §6's configuration table.
const (
	DefaultListenAddr      = "127.0.0.1:2000"
	DefaultContainerName   = "mc"
	DefaultBackendPort     = 25565
	DefaultIdleWindow      = 1800 * time.Second
	DefaultProbePeriod     = 5 * time.Second
	DefaultRetryInterval   = 500 * time.Millisecond
	DefaultConnectTimeout  = 1 * time.Second
	DefaultProtocolVersion = int32(764)
)

// ConfigProvider loads a Config; the only production implementation is
// FileConfigProvider, but tests can substitute their own.
type ConfigProvider interface {
	Load(ctx context.Context) (*Config, error)
}

// FileConfigProvider loads Config from a TOML or YAML file on disk, chosen
// by the file's extension.
type FileConfigProvider struct {
	Path string
}

func NewFileConfigProvider(path string) *FileConfigProvider {
	return &FileConfigProvider{Path: path}
}

// fileConfig is the raw decode target: duration fields arrive in
// milliseconds/seconds as plain ints, exactly as the teacher's config
// decodes durations, then get converted to time.Duration in Load.
type fileConfig struct {
	ListenAddr       string  `yaml:"listen_addr" toml:"listen_addr"`
	ContainerName    string  `yaml:"container_name" toml:"container_name"`
	BackendPort      int     `yaml:"backend_port" toml:"backend_port"`
	IdleWindowSec    int     `yaml:"idle_window_sec" toml:"idle_window_sec"`
	ProbePeriodSec   int     `yaml:"probe_period_sec" toml:"probe_period_sec"`
	RetryIntervalMs  int     `yaml:"retry_interval_ms" toml:"retry_interval_ms"`
	ConnectTimeoutMs int     `yaml:"connect_timeout_ms" toml:"connect_timeout_ms"`
	ProtocolVersion  int32   `yaml:"protocol_version" toml:"protocol_version"`
	AdminAddr        *string `yaml:"admin_addr" toml:"admin_addr"`
	Logging          *struct {
		Level       string `yaml:"level" toml:"level"`
		Format      string `yaml:"format" toml:"format"`
		Output      string `yaml:"output" toml:"output"`
		AddSource   bool   `yaml:"add_source" toml:"add_source"`
		AdminBuffer *struct {
			Enabled bool `yaml:"enabled" toml:"enabled"`
			Size    int  `yaml:"size" toml:"size"`
		} `yaml:"admin_buffer" toml:"admin_buffer"`
	} `yaml:"logging" toml:"logging"`
}

func (p *FileConfigProvider) Load(_ context.Context) (*Config, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var fc fileConfig
	if err := unmarshalConfigFile(p.Path, data, &fc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", p.Path, err)
	}

	cfg := &Config{
		ListenAddr:      orDefault(fc.ListenAddr, DefaultListenAddr),
		ContainerName:   orDefault(fc.ContainerName, DefaultContainerName),
		BackendPort:     intOrDefault(fc.BackendPort, DefaultBackendPort),
		IdleWindow:      secOrDefault(fc.IdleWindowSec, DefaultIdleWindow),
		ProbePeriod:     secOrDefault(fc.ProbePeriodSec, DefaultProbePeriod),
		RetryInterval:   msOrDefault(fc.RetryIntervalMs, DefaultRetryInterval),
		ConnectTimeout:  msOrDefault(fc.ConnectTimeoutMs, DefaultConnectTimeout),
		ProtocolVersion: int32OrDefault(fc.ProtocolVersion, DefaultProtocolVersion),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
			AdminBuffer: AdminLogBufferConfig{
				Enabled: false,
				Size:    1000,
			},
		},
	}
	if fc.AdminAddr != nil {
		cfg.AdminAddr = *fc.AdminAddr
	}
	if fc.Logging != nil {
		if fc.Logging.Level != "" {
			cfg.Logging.Level = fc.Logging.Level
		}
		if fc.Logging.Format != "" {
			cfg.Logging.Format = fc.Logging.Format
		}
		if fc.Logging.Output != "" {
			cfg.Logging.Output = fc.Logging.Output
		}
		cfg.Logging.AddSource = fc.Logging.AddSource
		if fc.Logging.AdminBuffer != nil {
			cfg.Logging.AdminBuffer.Enabled = fc.Logging.AdminBuffer.Enabled
			if fc.Logging.AdminBuffer.Size > 0 {
				cfg.Logging.AdminBuffer.Size = fc.Logging.AdminBuffer.Size
			}
		}
	}

	if strings.TrimSpace(cfg.ContainerName) == "" {
		return nil, fmt.Errorf("config: container_name must not be empty")
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func intOrDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func int32OrDefault(v, def int32) int32 {
	if v <= 0 {
		return def
	}
	return v
}

func secOrDefault(v int, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

func msOrDefault(v int, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Millisecond
}

func unmarshalConfigFile(path string, data []byte, dst any) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(dst)
	case ".toml":
		md, err := toml.Decode(string(data), dst)
		if err != nil {
			return err
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return fmt.Errorf("unknown fields: %v", undec)
		}
		return nil
	default:
		return fmt.Errorf("unsupported config extension %q (expected .toml or .yaml/.yml)", ext)
	}
}
