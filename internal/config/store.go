package config

import (
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Store guards the live configuration. Readers take a copy and never hold
// the lock while capturing, sleeping or pressing keys.
//
// Edits made through Update are session overrides: Replace installs a new
// base configuration and re-applies them on top.
type Store struct {
	mu        sync.Mutex
	cfg       Config
	overrides []func(*Config)
	listeners []func(Config)
}

// NewStore creates a store holding cfg.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Subscribe registers fn to receive every configuration that gets stored.
// fn runs on the goroutine that made the change, outside the lock.
func (s *Store) Subscribe(fn func(Config)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Replace validates cfg with the session overrides applied and swaps the
// result in as a whole.
func (s *Store) Replace(cfg Config) error {
	s.mu.Lock()
	next := cfg
	for _, fn := range s.overrides {
		fn(&next)
	}
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cfg = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, next)
	return nil
}

// Update applies fn to a copy and stores it if the result validates. A
// stored fn is kept as a session override. fn runs under the lock and must
// not block.
func (s *Store) Update(fn func(*Config)) error {
	s.mu.Lock()
	next := s.cfg
	fn(&next)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cfg = next
	s.overrides = append(s.overrides, fn)
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, next)
	return nil
}

func notify(listeners []func(Config), cfg Config) {
	for _, fn := range listeners {
		fn(cfg)
	}
}

// Watch reloads the store whenever v's config file changes. Invalid edits
// are logged and ignored; the previous configuration stays in effect.
func Watch(v *viper.Viper, store *Store, logger *zap.Logger) {
	log := logger.Named("config")
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := FromViper(v)
		if err != nil {
			log.Warn("Ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		if err := store.Replace(*cfg); err != nil {
			log.Warn("Ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		log.Info("Configuration reloaded", zap.String("file", e.Name), zap.Stringer("op", e.Op))
	})
	v.WatchConfig()
}
