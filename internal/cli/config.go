package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/tobiaswren/mapforge/pkg/layout"
	"github.com/tobiaswren/mapforge/pkg/store"
)

// configFileName is the per-directory config file looked up when --config
// is not given.
const configFileName = "mapforge.toml"

// Config is the TOML configuration shared by the render and serve commands.
// Flags override anything loaded from the file.
type Config struct {
	// WorldDir is where world JSON files live.
	WorldDir string `toml:"world_dir"`

	// Theme is the default render theme ("light" or "dark").
	Theme string `toml:"theme"`

	Grid   layout.GridConfig  `toml:"grid"`
	Force  layout.ForceConfig `toml:"force"`
	Server ServerConfig       `toml:"server"`
	Store  StoreConfig        `toml:"store"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig selects and configures the change-set store backend.
type StoreConfig struct {
	// Backend is one of "file", "redis", or "mongo".
	Backend string `toml:"backend"`

	// Dir is the file backend's directory. Empty means the default
	// under ~/.config/mapforge/worlds.
	Dir string `toml:"dir"`

	Redis store.RedisConfig `toml:"redis"`
	Mongo store.MongoConfig `toml:"mongo"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		WorldDir: ".",
		Grid:     layout.DefaultGridConfig(),
		Force:    layout.DefaultForceConfig(),
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8420,
		},
		Store: StoreConfig{
			Backend: "file",
		},
	}
}

// LoadConfig reads a TOML config file on top of the defaults. When path is
// empty it looks for mapforge.toml in the working directory and falls back
// to defaults if none exists; an explicit path that cannot be read is an
// error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = configFileName
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// OpenStore builds the configured change-set store.
func (s StoreConfig) OpenStore(ctx context.Context) (store.Store, error) {
	switch s.Backend {
	case "", "file":
		return store.NewFileStore(s.Dir)
	case "redis":
		return store.NewRedisStore(ctx, s.Redis)
	case "mongo":
		return store.NewMongoStore(ctx, s.Mongo)
	default:
		return nil, fmt.Errorf("unknown store backend: %s (must be 'file', 'redis', or 'mongo')", s.Backend)
	}
}
