package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/wfstudio/wfrender/pkg/errors"
	"github.com/wfstudio/wfrender/pkg/fonts"
	"github.com/wfstudio/wfrender/pkg/glyph"
	"github.com/wfstudio/wfrender/pkg/io"
	"github.com/wfstudio/wfrender/pkg/pipeline"
	"github.com/wfstudio/wfrender/pkg/scene"
)

// glyphsOpts holds the flags of the glyphs command.
type glyphsOpts struct {
	assets   string
	kind     string
	manifest string
	sample   string
	output   string
}

// glyphsCommand creates the glyphs command.
func (c *CLI) glyphsCommand() *cobra.Command {
	var opts glyphsOpts

	cmd := &cobra.Command{
		Use:   "glyphs [font]",
		Short: "Inspect glyph sets",
		Long: `Without a font, list the fonts named in the font.json manifest and the
builtin ones. With a font, resolve its glyph folder the way a digit widget of
--kind would and list each token's width.

--sample renders the text with the kind's default widget layout.`,
		Example: `  wfrender glyphs --assets face
  wfrender glyphs g19 --kind heartrate --assets face
  wfrender glyphs g19 --kind heartrate --sample 128 -o sample.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return c.listFonts(&opts)
			}
			return c.showGlyphs(args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.assets, "assets", "", "asset directory (default: config, then .)")
	cmd.Flags().StringVar(&opts.kind, "kind", "", "widget kind whose glyph folders are searched first")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "font.json manifest (default <assets>/font.json)")
	cmd.Flags().StringVar(&opts.sample, "sample", "", "render this text with the font")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "sample.png", "output file for --sample")

	return cmd
}

func (c *CLI) listFonts(opts *glyphsOpts) error {
	dir := c.assetsDir(opts.assets, "")
	path := opts.manifest
	if path == "" {
		path = filepath.Join(dir, "font.json")
	}

	fmt.Println(StyleTitle.Render("Fonts"))
	printKeyValue(fonts.BasicName, "builtin")

	m, err := io.ImportFontManifest(path)
	switch {
	case err == nil:
		for _, e := range m.Fonts {
			printKeyValue(e.Name, fmt.Sprintf("%d bpp %s", e.BPP, e.Format))
		}
		printDetail("Manifest: %s", path)
	case opts.manifest == "" && errors.Is(err, errors.ErrCodeNotFound):
		printDetail("No font.json in %s", dir)
	default:
		return err
	}
	return nil
}

func (c *CLI) showGlyphs(font string, opts *glyphsOpts) error {
	var kind scene.Kind
	if opts.kind != "" {
		k, ok := scene.ParseKind(opts.kind)
		if !ok {
			if s := scene.SuggestKind(opts.kind); s != "" {
				return fmt.Errorf("unknown kind %q (did you mean %q?)", opts.kind, s)
			}
			return fmt.Errorf("unknown kind %q", opts.kind)
		}
		kind = k
	} else if opts.sample != "" {
		return fmt.Errorf("--sample needs --kind")
	}

	r, err := c.newRenderer(c.assetsDir(opts.assets, ""))
	if err != nil {
		return err
	}
	kindName := ""
	if opts.kind != "" {
		kindName = kind.String()
	}
	set, err := r.Glyphs().Load(kindName, font)
	if err != nil {
		return err
	}

	fmt.Println(StyleTitle.Render("Glyph set " + font))
	if set.Dir != "" {
		printDetail("Folder: %s", set.Dir)
	}
	fmt.Println(glyphTable(set))
	if missing := missingTokens(set); len(missing) > 0 {
		printWarning("%d tokens missing: %v", len(missing), missing)
	}

	if opts.sample == "" {
		return nil
	}
	w := scene.DefaultDigitWidget(kind)
	w.Font = font
	doc := &scene.Document{Widgets: []scene.Widget{w}}
	state := scene.State{Time: scene.Clock{Hour: 10, Minute: 8}}
	state.Set(kind, opts.sample)

	canvas, err := r.Render(doc, state)
	if err != nil {
		return err
	}
	format := formatFromPath(opts.output)
	if format == "" {
		format = pipeline.FormatPNG
	}
	f, err := os.Create(opts.output)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := canvas.Encode(f, format); err != nil {
		return err
	}
	printSuccess("Rendered %q with the %s layout", opts.sample, kind)
	printFile(opts.output)
	return nil
}

// glyphTable renders a set's tokens, texts and widths as a table.
func glyphTable(set *glyph.Set) string {
	var rows [][]string
	for _, g := range set.Glyphs() {
		src := g.Path
		if src == "" {
			src = "builtin"
		}
		rows = append(rows, []string{g.Token, strconv.Quote(g.Text), strconv.Itoa(g.Width()), src})
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Token", "Text", "Width", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return StyleNumber
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// missingTokens lists table tokens the set has no glyph for.
func missingTokens(set *glyph.Set) []string {
	var out []string
	for _, sym := range glyph.Table() {
		if _, ok := set.Lookup(sym.Text); !ok {
			out = append(out, sym.Token)
		}
	}
	return out
}
