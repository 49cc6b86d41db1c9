package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// RuntimeConfig is the reloadable part of the configuration, read from a
// yaml file while the server is running.
type RuntimeConfig struct {
	Cache bool `mapstructure:"cache"`
}

// RuntimeLoader re-reads the runtime config file on access, at most once per
// reload interval. Unknown keys are ignored; a file that fails to load keeps
// the last good snapshot.
type RuntimeLoader struct {
	path     string
	interval time.Duration

	mu         sync.Mutex
	lastReload time.Time
	current    RuntimeConfig
}

// NewRuntimeLoader creates a loader and performs the initial read. The
// returned loader is always usable; if the initial read fails it starts from
// defaults (cache enabled) and the error is reported for logging.
func NewRuntimeLoader(path string, interval time.Duration) (*RuntimeLoader, error) {
	l := &RuntimeLoader{
		path:     path,
		interval: interval,
		current:  RuntimeConfig{Cache: true},
	}

	err := l.reload()
	l.lastReload = time.Now()
	if err != nil {
		return l, fmt.Errorf("initial runtime config load from %q: %w", path, err)
	}
	return l, nil
}

// Get returns the current runtime configuration, refreshing it from disk if
// the reload interval has elapsed.
func (l *RuntimeLoader) Get() RuntimeConfig {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastReload) > l.interval {
		// Errors keep the previous snapshot; a broken edit of the config
		// file must not flip behavior.
		_ = l.reload()
		l.lastReload = now
	}
	return l.current
}

// CacheEnabled reports whether cache reads are currently allowed.
func (l *RuntimeLoader) CacheEnabled() bool {
	return l.Get().Cache
}

func (l *RuntimeLoader) reload() error {
	v := viper.New()
	v.SetConfigFile(l.path)
	v.SetDefault("cache", true)

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	var cfg RuntimeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return err
	}

	l.current = cfg
	return nil
}
