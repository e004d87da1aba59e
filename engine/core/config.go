package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

// D3DVersionEnv names the environment variable that moves one backend to the
// front of the default selection order. Accepted values are "9" and "11".
const D3DVersionEnv = "GLES_D3D_VERSION"

const (
	BackendDefault = "default"
	BackendD3D9    = "d3d9"
	BackendD3D11   = "d3d11"
)

type RendererConfig struct {
	// Backend is "default", "d3d9" or "d3d11".
	Backend string `toml:"backend"`
	// Priority is the order in which backends are tried for "default".
	Priority []string `toml:"priority"`
	// FeatureLevel is the D3D11 feature level the d3d11 backend emulates.
	FeatureLevel string `toml:"feature_level"`
	// MemoryBudget caps the bytes the native device will allocate. Zero means no limit.
	MemoryBudget uint64 `toml:"memory_budget"`
}

type CacheConfig struct {
	// StateCapacity bounds each render-state category.
	StateCapacity int `toml:"state_capacity"`
}

type BufferConfig struct {
	// StaticPromotionFactor is the multiple of a buffer's size of unmodified
	// use after which static vertex/index caches are created for it.
	StaticPromotionFactor   uint32 `toml:"static_promotion_factor"`
	InitialIndexBufferSize  uint32 `toml:"initial_index_buffer_size"`
	InitialVertexBufferSize uint32 `toml:"initial_vertex_buffer_size"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Renderer RendererConfig `toml:"renderer"`
	Caches   CacheConfig    `toml:"caches"`
	Buffers  BufferConfig   `toml:"buffers"`
	Log      LogConfig      `toml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Renderer: RendererConfig{
			Backend:      BackendDefault,
			Priority:     []string{BackendD3D11, BackendD3D9},
			FeatureLevel: "11_0",
		},
		Caches: CacheConfig{
			StateCapacity: 4096,
		},
		Buffers: BufferConfig{
			StaticPromotionFactor:   3,
			InitialIndexBufferSize:  0x8000,
			InitialVertexBufferSize: 1024 * 1024,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ParseConfig decodes TOML on top of the defaults, so a file only needs the
// keys it changes.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func (c *Config) Validate() error {
	switch c.Renderer.Backend {
	case BackendDefault, BackendD3D9, BackendD3D11:
	default:
		return fmt.Errorf("config: unknown renderer backend %q", c.Renderer.Backend)
	}
	for _, name := range c.Renderer.Priority {
		if name != BackendD3D9 && name != BackendD3D11 {
			return fmt.Errorf("config: unknown backend %q in priority list", name)
		}
	}
	if c.Caches.StateCapacity <= 0 {
		return errors.New("config: caches.state_capacity must be > 0")
	}
	if c.Buffers.StaticPromotionFactor == 0 {
		return errors.New("config: buffers.static_promotion_factor must be > 0")
	}
	if c.Buffers.InitialIndexBufferSize == 0 || c.Buffers.InitialVertexBufferSize == 0 {
		return errors.New("config: initial buffer sizes must be > 0")
	}
	return nil
}

// PreferredBackendFromEnv maps the GLES_D3D_VERSION value to a backend name,
// or "" when it is unset or unrecognised.
func PreferredBackendFromEnv(lookup func(string) (string, bool)) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(D3DVersionEnv)
	if !ok {
		return ""
	}
	switch strings.TrimSpace(v) {
	case "9":
		return BackendD3D9
	case "11":
		return BackendD3D11
	}
	LogWarn("ignoring %s=%q, expected 9 or 11", D3DVersionEnv, v)
	return ""
}

// ConfigWatcher re-reads a config file whenever it is written.
type ConfigWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchConfig watches the directory holding path (editors replace files
// rather than writing them in place) and calls onChange with every config that
// parses. Parse failures are logged and skipped.
func WatchConfig(path string, onChange func(*Config)) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	cw := &ConfigWatcher{watcher: w, done: make(chan struct{})}
	go func() {
		for {
			select {
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != abs || e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := LoadConfig(abs)
				if err != nil {
					LogError("config reload failed: %s", err)
					continue
				}
				onChange(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				LogError(err.Error())
			case <-cw.done:
				return
			}
		}
	}()
	return cw, nil
}

func (cw *ConfigWatcher) Close() error {
	close(cw.done)
	return cw.watcher.Close()
}
