package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wfstudio/wfrender/pkg/pipeline"
	"github.com/wfstudio/wfrender/pkg/scene"
)

// defaultPreviewFile is written next to the scene when neither -o nor the
// scene's "preview" field names a file.
const defaultPreviewFile = "preview.png"

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags  frameFlags
		output string
		width  int
		height int
	)

	cmd := &cobra.Command{
		Use:   "preview <iwf.json>",
		Short: "Export the scene's downscaled preview image",
		Long: `Render the scene with the editor's sample values and write the smaller
preview image watch stores display (272x324 unless --width/--height are set).

Without -o the file named by the scene's "preview" field is written next to
the scene, falling back to preview.png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c)
			if err != nil {
				return err
			}
			opts.Preview = true
			opts.Width, opts.Height = width, height
			return c.runPreview(cmd.Context(), args[0], output, flags.format == "", &flags, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().IntVar(&width, "width", 0, "preview width (default 272)")
	cmd.Flags().IntVar(&height, "height", 0, "preview height (default 324)")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input, output string, inferFormat bool, flags *frameFlags, opts pipeline.Options) error {
	doc, err := importScene(c.Logger, input)
	if err != nil {
		return err
	}
	if output == "" {
		output = previewPath(doc, input)
	}
	if inferFormat {
		if f := formatFromPath(output); f != "" {
			opts.Format = f
		}
	}

	dir := c.assetsDir(flags.assets, input)
	runner, err := c.newRunner(ctx, dir, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	opts.AssetsVersion = c.assetsVersion(dir)

	res, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		return err
	}
	if err := writeFile(output, res.Data); err != nil {
		return err
	}
	printSuccess("Preview of %s", sceneLabel(doc, input))
	printFile(output)
	printFrameStats(res.Stats.Widgets, res.Stats.Bytes, res.Stats.RenderTime, res.CacheInfo.FrameHit)
	return nil
}

// previewPath returns the preview file next to the scene.
func previewPath(doc *scene.Document, input string) string {
	name := defaultPreviewFile
	if s, ok := doc.Meta["preview"].(string); ok && s != "" {
		name = filepath.Base(s)
	}
	return filepath.Join(filepath.Dir(input), name)
}

// formatFromPath maps a file extension to an output format, or "".
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return pipeline.FormatPNG
	case ".jpg", ".jpeg":
		return pipeline.FormatJPEG
	}
	return ""
}
