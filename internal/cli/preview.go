package cli

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerwall/pkg/canvas"
	"github.com/matzehuels/stickerwall/pkg/errors"
	"github.com/matzehuels/stickerwall/pkg/pipeline"
)

// Preview adjustment steps.
const (
	densityStep       = 2
	sizeVariationStep = 0.25
)

// previewCommand creates the preview command, an interactive loop over one
// worker session: the sources are loaded once and every keypress produces a
// new wallpaper.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags   optionFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Interactively explore wallpapers in the terminal",
		Long: `Load the stickers once and explore wallpapers interactively.

Keys:
  r      new random seed
  + / -  more or fewer columns
  ] / [  more or less size variation
  s      save the current wallpaper
  q      quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			opts.NoCache = noCache
			return c.runPreview(cmd.Context(), opts)
		},
	}

	flags.bindAll(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, opts pipeline.Options) error {
	runner, err := c.newRunner(opts.NoCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// The alt screen hides log output, so only warnings get through.
	opts.Logger = loggerFromContext(ctx).WithPrefix("preview")
	session, err := runner.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	m := newPreviewModel(ctx, opts, session.Generate, session.WaitReady)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(previewModel); ok && fm.saved != "" {
		printSuccess("Wallpaper saved")
		printFile(fm.saved)
	}
	return nil
}

// =============================================================================
// previewModel - Interactive wallpaper explorer
// =============================================================================

type (
	generateFunc  func(context.Context, pipeline.Options) (*pipeline.Result, error)
	waitReadyFunc func(context.Context) (int, error)
)

type readyMsg struct {
	images int
	err    error
}

type resultMsg struct {
	res *pipeline.Result
	img image.Image
	err error
}

type savedMsg struct {
	path string
	err  error
}

// previewModel is the bubbletea model behind the preview command.
type previewModel struct {
	ctx       context.Context
	opts      pipeline.Options
	generate  generateFunc
	waitReady waitReadyFunc

	cols, rows int
	images     int
	ready      bool
	busy       bool
	current    *pipeline.Result
	img        image.Image
	thumb      string
	status     string
	saved      string
	err        error
}

func newPreviewModel(ctx context.Context, opts pipeline.Options, gen generateFunc, wait waitReadyFunc) previewModel {
	return previewModel{
		ctx:       ctx,
		opts:      opts,
		generate:  gen,
		waitReady: wait,
		cols:      80,
		rows:      24,
		status:    "Loading stickers...",
	}
}

func (m previewModel) Init() tea.Cmd {
	return func() tea.Msg {
		n, err := m.waitReady(m.ctx)
		return readyMsg{images: n, err: err}
	}
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		if m.img != nil {
			m.thumb = thumbnail(m.img, m.thumbBounds())
		}

	case readyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.ready, m.images = true, msg.images
		return m.regenerate()

	case resultMsg:
		m.busy = false
		if msg.err != nil {
			m.status = StyleError.Render(errors.UserMessage(msg.err))
			return m, nil
		}
		m.current, m.img = msg.res, msg.img
		m.opts.Seed = msg.res.Seed
		m.thumb = thumbnail(msg.img, m.thumbBounds())
		m.status = statsLine(len(msg.res.Placements), msg.res.Images, msg.res.Stats.RenderTime, msg.res.CacheInfo.Hit)

	case savedMsg:
		if msg.err != nil {
			m.status = StyleError.Render(msg.err.Error())
			return m, nil
		}
		m.saved = msg.path
		m.status = StyleSuccess.Render(iconSuccess+" saved ") + StyleValue.Render(msg.path)
	}
	return m, nil
}

func (m previewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	}
	if !m.ready || m.busy {
		return m, nil
	}

	switch msg.String() {
	case "r":
		m.opts.Seed = 0
	case "+", "=":
		m.opts.Density += densityStep
	case "-", "_":
		if m.opts.Density-densityStep <= 0 {
			return m, nil
		}
		m.opts.Density -= densityStep
	case "]":
		m.opts.SizeVariation += sizeVariationStep
	case "[":
		if m.opts.SizeVariation-sizeVariationStep <= 0 {
			return m, nil
		}
		m.opts.SizeVariation -= sizeVariationStep
	case "s":
		return m, m.save()
	default:
		return m, nil
	}
	return m.regenerate()
}

// regenerate requests a wallpaper for the current options. The seed of the
// last result is kept so parameter changes can be compared side by side.
func (m previewModel) regenerate() (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = StyleDim.Render("Generating...")
	ctx, gen, opts, bounds := m.ctx, m.generate, m.opts, m.thumbBounds()
	return m, func() tea.Msg {
		res, err := gen(ctx, opts)
		if err != nil {
			return resultMsg{err: err}
		}
		img, err := imaging.Decode(bytes.NewReader(res.Artifact.Blob))
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{res: res, img: imaging.Fit(img, bounds.X, bounds.Y*2, imaging.Box)}
	}
}

func (m previewModel) save() tea.Cmd {
	res := m.current
	if res == nil {
		return nil
	}
	return func() tea.Msg {
		path := defaultOutputPath(res.Seed, res.Artifact.MIME)
		if err := os.WriteFile(path, res.Artifact.Blob, 0o644); err != nil {
			return savedMsg{err: fmt.Errorf("write %s: %w", path, err)}
		}
		return savedMsg{path: path}
	}
}

// thumbBounds is the space available for the thumbnail in terminal cells.
func (m previewModel) thumbBounds() image.Point {
	return image.Point{X: max(m.cols-2, 8), Y: max(m.rows-5, 4)}
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Stickerwall Preview"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  seed %d  density %g  size variation %g  stickers %d",
		m.opts.Seed, m.opts.Density, m.opts.SizeVariation, m.images)))
	b.WriteString("\n\n")
	if m.thumb != "" {
		b.WriteString(m.thumb)
		b.WriteString("\n")
	}
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("r seed  +/- density  [/] size  s save  q quit"))

	return b.String()
}

// thumbnail renders img with one half-block per two pixel rows, scaled to
// fit within bounds cells.
func thumbnail(img image.Image, bounds image.Point) string {
	img = imaging.Fit(img, bounds.X, bounds.Y*2, imaging.Box)
	r := img.Bounds()

	var b strings.Builder
	for y := r.Min.Y; y < r.Max.Y; y += 2 {
		for x := r.Min.X; x < r.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(cellColor(img.At(x, y)))
			if y+1 < r.Max.Y {
				style = style.Background(cellColor(img.At(x, y+1)))
			}
			b.WriteString(style.Render("▀"))
		}
		if y+2 < r.Max.Y {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func cellColor(c color.Color) lipgloss.TerminalColor {
	if _, _, _, a := c.RGBA(); a == 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(canvas.Hex(c))
}
