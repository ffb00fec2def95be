package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wfstudio/wfrender/pkg/asset"
	"github.com/wfstudio/wfrender/pkg/buildinfo"
	"github.com/wfstudio/wfrender/pkg/cache"
	"github.com/wfstudio/wfrender/pkg/pipeline"
	"github.com/wfstudio/wfrender/pkg/render"
	"github.com/wfstudio/wfrender/pkg/scenestore"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "wfrender"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config

	configPath string
}

// New creates a new CLI instance with a default logger and default config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "wfrender draws watch-face scenes to images",
		Long:         `wfrender renders iwf.json watch-face scenes (background, digit readouts and analog hands) into PNG or JPEG frames for a given time and set of live values.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default <config dir>/wfrender/wfrender.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.glyphsCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, unknown, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	for _, key := range unknown {
		c.Logger.Warn("unknown config key", "key", key)
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// assetsDir picks the asset directory: the flag, then the config, then
// the directory holding the scene file.
func (c *CLI) assetsDir(flag, scenePath string) string {
	if flag != "" {
		return flag
	}
	if c.Config.Assets != "" {
		return c.Config.Assets
	}
	if scenePath != "" {
		return filepath.Dir(scenePath)
	}
	return "."
}

// newRenderer creates a renderer over an asset directory.
func (c *CLI) newRenderer(dir string) (*render.Renderer, error) {
	policy, err := render.ParseTimePolicy(c.Config.Render.TimePolicy)
	if err != nil {
		return nil, err
	}
	store := asset.NewDir(dir, asset.WithLogger(c.Logger))
	return render.New(store,
		render.WithLogger(c.Logger),
		render.WithTimePolicy(policy),
	), nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, dir string, noCache bool) (*pipeline.Runner, error) {
	r, err := c.newRenderer(dir)
	if err != nil {
		return nil, err
	}
	fc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if ns := c.Config.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(nil, ns+":")
	}
	return pipeline.NewRunner(r, fc, keyer, c.Logger), nil
}

// newCache builds the configured frame cache. A file cache that cannot be
// created degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		rc := c.Config.Cache.Redis
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
			Prefix:   rc.Prefix,
		})
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("frame cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// assetsVersion fingerprints an asset directory for cache keys. A failure
// only costs cache precision, so it is logged and yields "".
func (c *CLI) assetsVersion(dir string) string {
	v, err := pipeline.AssetFingerprint(os.DirFS(dir))
	if err != nil {
		c.Logger.Debug("asset fingerprint failed", "dir", dir, "err", err)
		return ""
	}
	return v
}

// newSceneStore opens the configured scene store for the server.
func (c *CLI) newSceneStore(ctx context.Context) (scenestore.Store, error) {
	sc := c.Config.Serve
	switch sc.Store {
	case storeFile:
		return scenestore.NewFileStore(sc.StoreDir)
	case storeMongo:
		return scenestore.NewMongoStore(ctx, scenestore.MongoConfig{
			URI:        sc.Mongo.URI,
			Database:   sc.Mongo.Database,
			Collection: sc.Mongo.Collection,
		})
	default:
		return scenestore.NewMemoryStore(), nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, else the XDG cache
// location (~/.cache/wfrender/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return xdgCacheDir()
}

func xdgCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns pipeline options seeded from the config.
func (c *CLI) baseOptions() pipeline.Options {
	return pipeline.Options{
		Format:     c.Config.Render.Format,
		TimePolicy: c.Config.Render.TimePolicy,
		NoDefaults: c.Config.Render.NoDefaults,
		Logger:     c.Logger,
	}
}
