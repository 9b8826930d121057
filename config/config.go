package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultScreen is the screen query captured from the StokerCloud web UI.
// It selects the boiler, DHW, hopper and weather fields the snapshot parser
// understands.
const DefaultScreen = "b1,3,b2,5,b3,4,b4,6,b5,12,b6,14,b7,15,b8,16,b9,9," +
	"b10,0," +
	"d1,3,d2,4,d3,0,d4,0,d5,0,d6,0,d7,0,d8,0,d9,0,d10,0," +
	"h1,2,h2,3,h3,4,h4,7,h5,8,h6,0,h7,0,h8,0,h9,0,h10,0," +
	"w1,2,w2,3,w3,9,w4,0,w5,0"

// Config represents the overall application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	StokerCloud StokerCloudConfig `yaml:"stokercloud"`
	Push        PushConfig        `yaml:"push"`
	WorkerPool  WorkerPoolConfig  `yaml:"worker_pool"`
}

// ServerConfig holds the host-facing HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// StokerCloudConfig holds everything needed to poll the remote service.
type StokerCloudConfig struct {
	BaseURL            string `yaml:"base_url"`
	TranslationBaseURL string `yaml:"translation_base_url"`
	Username           string `yaml:"username"`
	Screen             string `yaml:"screen"`
	HTTPProxy          string `yaml:"http_proxy"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`

	ControllerIntervalSeconds int           `yaml:"controller_interval_seconds"`
	EventIntervalSeconds      int           `yaml:"event_interval_seconds"`
	ControllerInterval        time.Duration `yaml:"-"`
	EventInterval             time.Duration `yaml:"-"`

	EventCount  int `yaml:"event_count"`
	EventOffset int `yaml:"event_offset"`

	TranslationLanguage string `yaml:"translation_language"`

	// MaxAttributeBytes is the host platform's serialized-size ceiling for the
	// event list handed back on /api/events.
	MaxAttributeBytes int `yaml:"max_attribute_bytes"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 15
	}

	sc := &cfg.StokerCloud
	if sc.BaseURL == "" {
		sc.BaseURL = "https://stokercloud.dk/v2/dataout2"
	}
	if sc.TranslationBaseURL == "" {
		sc.TranslationBaseURL = "https://stokercloud.dk/v3/assets/json/translation"
	}
	if sc.Screen == "" {
		sc.Screen = DefaultScreen
	}
	if sc.TimeoutSeconds <= 0 {
		sc.TimeoutSeconds = 30
	}
	if sc.ControllerIntervalSeconds <= 0 {
		sc.ControllerIntervalSeconds = 30
	}
	if sc.EventIntervalSeconds <= 0 {
		sc.EventIntervalSeconds = 300
	}
	sc.ControllerInterval = time.Duration(sc.ControllerIntervalSeconds) * time.Second
	sc.EventInterval = time.Duration(sc.EventIntervalSeconds) * time.Second

	if sc.EventCount <= 0 {
		sc.EventCount = 100
	}
	if sc.EventOffset < 0 {
		sc.EventOffset = 0
	}
	if sc.TranslationLanguage == "" {
		sc.TranslationLanguage = "uk"
	}
	if sc.MaxAttributeBytes <= 0 {
		sc.MaxAttributeBytes = 16000
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
}
