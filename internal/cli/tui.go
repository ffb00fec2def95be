package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wfstudio/wfrender/pkg/pipeline"
	"github.com/wfstudio/wfrender/pkg/scene"
)

var (
	watchLabelStyle = lipgloss.NewStyle().Foreground(colorGray)
	watchErrStyle   = lipgloss.NewStyle().Foreground(colorRed)
	watchHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// WatchModel - live re-rendering loop
// =============================================================================

// FrameFunc renders the frame for t.
type FrameFunc func(t time.Time) (*pipeline.Result, error)

// tickMsg fires once per interval.
type tickMsg time.Time

// frameMsg carries a finished frame.
type frameMsg struct {
	at  time.Time
	res *pipeline.Result
	err error
}

// WatchModel is the bubbletea model for the watch command. It renders a
// frame on every tick and on demand.
type WatchModel struct {
	Label    string
	Interval time.Duration
	Render   FrameFunc
	Reload   func() error // optional; bound to "r"

	Frames  int
	Last    *pipeline.Result
	LastAt  time.Time
	Err     error
	Pending bool
}

// NewWatchModel creates a model ticking every interval.
func NewWatchModel(label string, interval time.Duration, render FrameFunc) WatchModel {
	if interval <= 0 {
		interval = time.Second
	}
	return WatchModel{Label: label, Interval: interval, Render: render}
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.frame(time.Now()), m.tick())
}

func (m WatchModel) tick() tea.Cmd {
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m WatchModel) frame(t time.Time) tea.Cmd {
	render := m.Render
	return func() tea.Msg {
		res, err := render(t)
		return frameMsg{at: t, res: res, err: err}
	}
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.Reload != nil {
				if err := m.Reload(); err != nil {
					m.Err = err
					return m, nil
				}
			}
			return m, m.frame(time.Now())
		}
	case tickMsg:
		next := m.tick()
		// Skip a tick rather than queue renders behind a slow one.
		if m.Pending {
			return m, next
		}
		m.Pending = true
		return m, tea.Batch(m.frame(time.Time(msg)), next)
	case frameMsg:
		m.Pending = false
		m.Err = msg.err
		if msg.err == nil {
			m.Frames++
			m.Last = msg.res
			m.LastAt = msg.at
		}
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Watching " + m.Label))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Time", "—"},
		{"Frames", fmt.Sprintf("%d", m.Frames)},
	}
	if m.Last != nil {
		rows[0][1] = m.Last.Clock.String()
		rows = append(rows,
			[]string{"Widgets", fmt.Sprintf("%d", m.Last.Stats.Widgets)},
			[]string{"Size", formatBytes(m.Last.Stats.Bytes)},
			[]string{"Render", m.Last.Stats.RenderTime.Round(time.Microsecond).String()},
		)
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return watchLabelStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(watchErrStyle.Render(iconError + " " + m.Err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(watchHelpStyle.Render("r reload  q quit"))
	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags    frameFlags
		output   string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <iwf.json>",
		Short: "Re-render a scene every second",
		Long: `Render the scene at the current time once per interval and overwrite the
output file, for viewing with an image viewer that reloads on change.
Press r to reload the scene and its assets from disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c)
			if err != nil {
				return err
			}
			if flags.time != "" {
				return fmt.Errorf("watch renders the current time; --time is not supported")
			}
			return c.runWatch(cmd.Context(), args[0], output, interval, &flags, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: scene name with the format extension)")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "time between frames")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input, output string, interval time.Duration, flags *frameFlags, opts pipeline.Options) error {
	doc, err := importScene(c.Logger, input)
	if err != nil {
		return err
	}
	// Every frame has a new time, so caching frames only fills the disk.
	runner, err := c.newRunner(ctx, c.assetsDir(flags.assets, input), true)
	if err != nil {
		return err
	}
	defer runner.Close()

	w := &sceneWatch{doc: doc, input: input, logger: c.Logger}
	render := func(t time.Time) (*pipeline.Result, error) {
		o := opts
		o.Now = func() time.Time { return t }
		res, err := runner.Execute(ctx, w.document(), o)
		if err != nil {
			return nil, err
		}
		path := outputPath(output, input, res.Format, "")
		return res, writeFile(path, res.Data)
	}

	m := NewWatchModel(sceneLabel(doc, input), interval, render)
	m.Reload = func() error {
		if err := w.reload(); err != nil {
			return err
		}
		runner.Renderer.Reset()
		return nil
	}

	// Logging would tear the alt screen; quiet it for the loop.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(LogError)
	defer c.Logger.SetLevel(level)

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// sceneWatch holds the scene being watched so a reload can swap it while
// a frame is rendering.
type sceneWatch struct {
	input  string
	logger *log.Logger

	mu  sync.Mutex
	doc *scene.Document
}

func (w *sceneWatch) document() *scene.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doc
}

func (w *sceneWatch) reload() error {
	doc, err := importScene(w.logger, w.input)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.doc = doc
	w.mu.Unlock()
	return nil
}
