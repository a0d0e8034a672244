package config

import (
	"sync"
	"time"

	"github.com/migodlcrz/mrt-system-sub000/internal/models"
)

// Config holds all the configuration settings for our application.
type Config struct {
	Port            int
	Env             string
	RefreshInterval time.Duration
	MaxRetries      int
	RateLimit       int

	// ServiceAreaMargin is the nearest-station margin around a network's
	// stations in meters; 0 keeps the default.
	ServiceAreaMargin float64

	Mu       sync.RWMutex
	Networks []models.Network
}

// NewConfig creates a new instance of a Config struct.
func NewConfig(port int, env string, networks []models.Network) *Config {
	return &Config{
		Port:            port,
		Env:             env,
		RefreshInterval: 5 * time.Minute,
		MaxRetries:      3,
		Networks:        networks,
	}
}

// UpdateConfig safely updates the configured networks.
func (cfg *Config) UpdateConfig(newNetworks []models.Network) {
	cfg.Mu.Lock()
	defer cfg.Mu.Unlock()
	cfg.Networks = newNetworks
}

// GetNetworks safely returns a copy of the networks slice.
// Other parts of the application should use it instead of reading Networks directly.
func (cfg *Config) GetNetworks() []models.Network {
	cfg.Mu.RLock()
	defer cfg.Mu.RUnlock()
	return append([]models.Network(nil), cfg.Networks...)
}

// GetNetwork returns the network with the given id.
func (cfg *Config) GetNetwork(id int) (models.Network, bool) {
	cfg.Mu.RLock()
	defer cfg.Mu.RUnlock()
	for _, n := range cfg.Networks {
		if n.ID == id {
			return n, true
		}
	}
	return models.Network{}, false
}
