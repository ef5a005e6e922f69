package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Listen string `toml:"listen"`
	Port   int    `toml:"port"`
}

type StoreConfig struct {
	Kind string `toml:"kind"` // "postgres" or "mongo"
	URI  string `toml:"uri"`
}

type RunConfig struct {
	ThreadCount      int    `toml:"thread_count"`
	Strategy         string `toml:"strategy"` // "clone" or "mask"
	ClearBeforeRun   bool   `toml:"clear_before_run"`
	DefaultBatchSize uint64 `toml:"default_batch_size"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Source  StoreConfig   `toml:"source"`
	Dest    StoreConfig   `toml:"dest"`
	Run     RunConfig     `toml:"run"`
	Logging LoggingConfig `toml:"logging"`
}

func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Listen: "127.0.0.1",
			Port:   7654,
		},
		Run: RunConfig{
			Strategy:         "mask",
			DefaultBatchSize: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func findConfigFile() string {
	candidates := []string{}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".envclone", "config.toml"))
	}
	candidates = append(candidates, "/etc/envclone/config.toml")

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ENVCLONE_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("ENVCLONE_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ENVCLONE_SOURCE_URI"); v != "" {
		cfg.Source.URI = v
	}
	if v := os.Getenv("ENVCLONE_DEST_URI"); v != "" {
		cfg.Dest.URI = v
	}
	if v := os.Getenv("ENVCLONE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ENVCLONE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
