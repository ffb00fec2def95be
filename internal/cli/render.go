package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wfstudio/wfrender/pkg/io"
	"github.com/wfstudio/wfrender/pkg/pipeline"
	"github.com/wfstudio/wfrender/pkg/scene"
)

// frameFlags are the flags shared by render, preview and watch.
type frameFlags struct {
	assets     string
	time       string
	values     []string
	format     string
	timePolicy string
	noDefaults bool
	noCache    bool
	refresh    bool
}

func (f *frameFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.assets, "assets", "", "asset directory (default: config, then the scene's directory)")
	cmd.Flags().StringVar(&f.time, "time", "", "time to show as HH:MM or HH:MM:SS (default: now)")
	cmd.Flags().StringArrayVar(&f.values, "value", nil, "live value as kind=value, e.g. heartrate=99 (repeatable)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: png (default), jpeg")
	cmd.Flags().StringVar(&f.timePolicy, "time-policy", "", "out-of-range time handling: reject (default), clamp")
	cmd.Flags().BoolVar(&f.noDefaults, "no-defaults", false, "don't fill unset values with the editor's sample values")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the frame cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-render even if the frame is cached")
	registerFrameCompletions(cmd)
}

// options merges the flags over the config defaults.
func (f *frameFlags) options(c *CLI) (pipeline.Options, error) {
	opts := c.baseOptions()
	values, err := parseValues(f.values)
	if err != nil {
		return opts, err
	}
	opts.Values = values
	opts.Time = f.time
	opts.Refresh = f.refresh
	if f.format != "" {
		opts.Format = f.format
	}
	if f.timePolicy != "" {
		opts.TimePolicy = f.timePolicy
	}
	if f.noDefaults {
		opts.NoDefaults = true
	}
	return opts, nil
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   frameFlags
		output  string
		times   string
		workers int
		width   int
		height  int
	)

	cmd := &cobra.Command{
		Use:   "render <iwf.json>",
		Short: "Render a scene to an image",
		Long: `Render a watch-face scene at a time with a set of live values.

With --times, one frame per listed time is rendered in parallel and written
next to the output path with the time appended.`,
		Example: `  wfrender render face/iwf.json -o face.png --time 10:08:36 --value heartrate=99
  wfrender render face/iwf.json --times 03:00,09:00,15:00 --format jpeg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c)
			if err != nil {
				return err
			}
			opts.Width, opts.Height = width, height
			return c.runRender(cmd.Context(), args[0], output, parseTimes(times), workers, &flags, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: scene name with the format extension)")
	cmd.Flags().StringVar(&times, "times", "", "comma-separated times to render as a batch")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel renders for --times (default from config)")
	cmd.Flags().IntVar(&width, "width", 0, "scale the output to this width")
	cmd.Flags().IntVar(&height, "height", 0, "scale the output to this height")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, output string, times []string, workers int, flags *frameFlags, opts pipeline.Options) error {
	doc, err := importScene(c.Logger, input)
	if err != nil {
		return err
	}
	dir := c.assetsDir(flags.assets, input)
	runner, err := c.newRunner(ctx, dir, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	opts.AssetsVersion = c.assetsVersion(dir)

	c.Logger.Debug("rendering", "scene", input, "assets", dir, "widgets", len(doc.Widgets))

	if len(times) > 0 {
		return c.renderBatch(ctx, runner, doc, input, output, times, workers, opts)
	}

	res, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		return err
	}
	path := outputPath(output, input, res.Format, "")
	if err := writeFile(path, res.Data); err != nil {
		return err
	}
	printSuccess("Rendered %s at %s", sceneLabel(doc, input), res.Clock)
	printFile(path)
	printFrameStats(res.Stats.Widgets, res.Stats.Bytes, res.Stats.RenderTime, res.CacheInfo.FrameHit)
	return nil
}

func (c *CLI) renderBatch(ctx context.Context, runner *pipeline.Runner, doc *scene.Document, input, output string, times []string, workers int, opts pipeline.Options) error {
	if workers <= 0 {
		workers = c.Config.Render.Workers
	}
	prog := newProgress(c.Logger)
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d frames", len(times)))
	spin.Start()

	results, err := runner.ExecuteBatch(ctx, doc, opts, times, workers)
	if err != nil {
		spin.StopWithError("Batch render failed")
		return err
	}
	spin.Stop()

	hits := 0
	for i, res := range results {
		path := outputPath(output, input, res.Format, times[i])
		if err := writeFile(path, res.Data); err != nil {
			return err
		}
		if res.CacheInfo.FrameHit {
			hits++
		}
		printFile(path)
	}
	printSuccess("Rendered %d frames of %s", len(results), sceneLabel(doc, input))
	if hits > 0 {
		printDetail("%d from cache", hits)
	}
	prog.done(fmt.Sprintf("Rendered %d frames", len(results)))
	return nil
}

// parseValues parses kind=value pairs. Kind names are checked later by
// the pipeline so the error can suggest a spelling.
func parseValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --value %q (want kind=value)", p)
		}
		out[strings.ToLower(k)] = v
	}
	return out, nil
}

// parseTimes splits a comma-separated --times list, dropping blanks.
func parseTimes(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// outputPath derives the file to write. Without -o the scene file's
// directory name is used, since scene files are all called iwf.json. A
// batch suffix is the frame time with the colons dropped.
func outputPath(output, input, format, suffix string) string {
	ext := "." + format
	if format == pipeline.FormatJPEG {
		ext = ".jpg"
	}
	base := output
	if base == "" {
		base = sceneBase(input)
	} else if e := filepath.Ext(base); e != "" {
		base = strings.TrimSuffix(base, e)
		if suffix == "" {
			return output
		}
	}
	if suffix != "" {
		base += "_" + strings.ReplaceAll(suffix, ":", "")
	}
	return base + ext
}

func sceneBase(input string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if strings.EqualFold(name, "iwf") {
		if dir := filepath.Base(filepath.Dir(input)); dir != "." && dir != string(filepath.Separator) {
			return dir
		}
	}
	return name
}

// importScene reads a scene file and warns about each item that will not
// be drawn.
func importScene(logger *log.Logger, path string) (*scene.Document, error) {
	doc, err := io.ImportScene(path)
	if err != nil {
		return nil, err
	}
	for _, it := range doc.Unsupported {
		logger.Warn("skipping unsupported item", "scene", path, "item", io.ItemLabel(it))
	}
	return doc, nil
}

// sceneLabel names a scene in messages: its name metadata or file name.
func sceneLabel(doc *scene.Document, input string) string {
	if n := doc.Name(); n != "" {
		return n
	}
	return filepath.Base(input)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
