package cli

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wfstudio/wfrender/internal/server"
)

// shutdownTimeout bounds the wait for in-flight requests on exit.
const shutdownTimeout = 10 * time.Second

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr    string
	assets  string
	store   string
	noCache bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the preview HTTP server",
		Long: `Serve scene storage and frame rendering over HTTP. Scenes posted to
/scenes are kept in the configured store (memory, file or mongo) and frames
are cached in the configured frame cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.addr != "" {
				c.Config.Serve.Addr = opts.addr
			}
			if opts.store != "" {
				c.Config.Serve.Store = opts.store
				if err := c.Config.validate(); err != nil {
					return err
				}
			}
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.assets, "assets", "", "asset directory (default: config, then .)")
	cmd.Flags().StringVar(&opts.store, "store", "", "scene store: memory, file, mongo (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the frame cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	dir := c.assetsDir(opts.assets, "")
	runner, err := c.newRunner(ctx, dir, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	store, err := c.newSceneStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(runner, store, c.Logger)
	srv.Defaults = c.baseOptions()
	srv.Defaults.AssetsVersion = c.assetsVersion(dir)

	addr := c.Config.Serve.Addr
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- httpServer.ListenAndServe() }()

	printSuccess("Listening on %s", addr)
	printDetail("Assets: %s · store: %s · cache: %s", dir, c.Config.Serve.Store, c.Config.Cache.Backend)
	printNextStep("Try", "curl --data-binary @iwf.json "+baseURL(addr)+"/render.png -o frame.png")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	loggerFromContext(ctx).Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

// baseURL turns a listen address into a URL for messages.
func baseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
