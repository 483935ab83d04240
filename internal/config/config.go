// Package config loads the execution engine's runtime configuration (cache
// directory, resource budgets, backend selection, scatter concurrency,
// retry policy) from an optional TOML file, the way the teacher's
// internal/project loads module metadata from structured files — BurntSushi/
// toml is already a teacher dependency, just never previously aimed at a
// config surface since the compiler CLI has none.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// EngineConfig drives components H (task execution), I (call cache), and J
// (workflow orchestrator).
type EngineConfig struct {
	// CacheDir is the call cache root (§4.9 "a cache directory on disk").
	// Defaults to the OS user cache directory's "wdlc" subdirectory.
	CacheDir string `toml:"cache_dir"`

	// Resources is the resource manager's total budget (§4.8 "A task
	// manager holds a total CPU budget... and a total memory budget").
	Resources ResourceConfig `toml:"resources"`

	// Backend names the execution backend ("local" is the only one built
	// in; see internal/backend).
	Backend string `toml:"backend"`

	// ScatterConcurrency bounds how many scatter-body iterations run
	// concurrently; 0 means "backend parallelism" (§4.10).
	ScatterConcurrency int `toml:"scatter_concurrency"`

	// MaxRetries is the engine default for task retries (§4.8 step 8);
	// a task's own `requirements.maxRetries` overrides it, capped at 100.
	MaxRetries int `toml:"max_retries"`
}

// ResourceConfig is the resource manager's total CPU/memory budget.
type ResourceConfig struct {
	CPU    float64 `toml:"cpu"`
	Memory int64   `toml:"memory_bytes"`
}

// Default returns the configuration used when no TOML file is supplied:
// all available CPUs, no memory cap, the local backend, backend-parallel
// scatter concurrency, and 1 retry.
func Default() EngineConfig {
	return EngineConfig{
		CacheDir:           defaultCacheDir(),
		Resources:          ResourceConfig{CPU: float64(runtime.GOMAXPROCS(0)), Memory: 0},
		Backend:            "local",
		ScatterConcurrency: 0,
		MaxRetries:         1,
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "wdlc")
	}
	return filepath.Join(dir, "wdlc")
}

// Load reads an EngineConfig from a TOML file at path, filling any field
// the file omits from Default(). A missing path is not an error: Default()
// is returned unchanged.
func Load(path string) (EngineConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return EngineConfig{}, err
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = defaultCacheDir()
	}
	if cfg.Backend == "" {
		cfg.Backend = "local"
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	return cfg, nil
}

// EffectiveRetries caps a task's own requested retry count at 100 and
// falls back to the engine default when the task requests none (§4.8
// step 8: "task requirement overrides engine default, capped at 100").
func (c EngineConfig) EffectiveRetries(taskRequested int) int {
	n := taskRequested
	if n <= 0 {
		n = c.MaxRetries
	}
	if n > 100 {
		n = 100
	}
	return n
}

// EffectiveScatterConcurrency resolves §4.10's "default: backend
// parallelism" rule against backendParallelism (how many tasks the chosen
// backend can usefully run at once).
func (c EngineConfig) EffectiveScatterConcurrency(backendParallelism int) int {
	if c.ScatterConcurrency > 0 {
		return c.ScatterConcurrency
	}
	if backendParallelism > 0 {
		return backendParallelism
	}
	return runtime.GOMAXPROCS(0)
}
