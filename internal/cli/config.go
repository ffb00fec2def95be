package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/wfstudio/wfrender/pkg/pipeline"
)

// configFile is the file name looked up in the user config directory.
const configFile = "wfrender.toml"

// Config is the wfrender.toml file. Flags override anything set here.
type Config struct {
	// Assets is the directory scene asset names resolve against. Empty
	// means the directory of the scene file.
	Assets string `toml:"assets"`

	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Serve  ServeConfig  `toml:"serve"`
}

// RenderConfig holds frame defaults.
type RenderConfig struct {
	Format     string `toml:"format"`
	TimePolicy string `toml:"time_policy"`
	Workers    int    `toml:"workers"`
	NoDefaults bool   `toml:"no_defaults"`
}

// CacheConfig selects the frame cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"` // file (default), redis, none
	Dir     string `toml:"dir"`

	// Namespace prefixes frame keys, for servers sharing one backend
	// that must not see each other's frames.
	Namespace string `toml:"namespace"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig mirrors cache.RedisConfig.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr     string      `toml:"addr"`
	Store    string      `toml:"store"` // memory (default), file, mongo
	StoreDir string      `toml:"store_dir"`
	Mongo    MongoConfig `toml:"mongo"`
}

// MongoConfig mirrors scenestore.MongoConfig.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Cache backends.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// Scene store backends.
const (
	storeMemory = "memory"
	storeFile   = "file"
	storeMongo  = "mongo"
)

// defaultConfig returns the settings used when no file sets them.
func defaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Format:  pipeline.DefaultFormat,
			Workers: pipeline.DefaultWorkers,
		},
		Cache: CacheConfig{Backend: backendFile},
		Serve: ServeConfig{Addr: ":8080", Store: storeMemory},
	}
}

// loadConfig reads path on top of the defaults. An empty path reads the
// file in the user config directory if there is one; an explicit path
// must exist. The second return lists keys the file set that Config does
// not know.
func loadConfig(path string) (*Config, []string, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil, nil
		}
		path = p
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil, nil
		}
		return nil, nil, fmt.Errorf("config %s: %w", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("config %s: %w", path, err)
	}
	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	if err := cfg.validate(); err != nil {
		return nil, nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, unknown, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "", backendFile, backendRedis, backendNone:
	default:
		return fmt.Errorf("unknown cache backend %q (file, redis, none)", c.Cache.Backend)
	}
	switch c.Serve.Store {
	case "", storeMemory, storeFile, storeMongo:
	default:
		return fmt.Errorf("unknown scene store %q (memory, file, mongo)", c.Serve.Store)
	}
	if c.Render.Format != "" {
		if err := pipeline.ValidateFormat(c.Render.Format); err != nil {
			return err
		}
	}
	return nil
}

// defaultConfigPath returns <user config dir>/wfrender/wfrender.toml.
func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, configFile), nil
}
