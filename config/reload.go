package config

import (
	"sync"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("config")

// ReloadableConfig holds the current configuration and re-reads it from
// disk on demand. Subscribers are notified after each successful reload.
type ReloadableConfig struct {
	path string

	lk   sync.RWMutex
	cfg  *Config
	subs []chan *Config
}

// NewReloadableConfig loads the configuration at path.
func NewReloadableConfig(path string) (*ReloadableConfig, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return nil, err
	}
	return &ReloadableConfig{path: path, cfg: cfg}, nil
}

// Get returns the currently loaded configuration.
func (r *ReloadableConfig) Get() *Config {
	r.lk.RLock()
	defer r.lk.RUnlock()
	return r.cfg
}

// Path returns the file the configuration was loaded from.
func (r *ReloadableConfig) Path() string {
	return r.path
}

// Reload re-reads the configuration file. On parse failure the previous
// configuration is kept and the error returned.
func (r *ReloadableConfig) Reload() (*Config, error) {
	cfg, err := FromFile(r.path)
	if err != nil {
		return nil, err
	}

	r.lk.Lock()
	r.cfg = cfg
	subs := make([]chan *Config, len(r.subs))
	copy(subs, r.subs)
	r.lk.Unlock()

	for _, ch := range subs {
		select {
		case ch <- cfg:
		default:
			log.Warnw("config subscriber not keeping up, dropping update")
		}
	}
	return cfg, nil
}

// Subscribe returns a channel that receives the new configuration after
// every successful reload.
func (r *ReloadableConfig) Subscribe() <-chan *Config {
	ch := make(chan *Config, 1)
	r.lk.Lock()
	r.subs = append(r.subs, ch)
	r.lk.Unlock()
	return ch
}
