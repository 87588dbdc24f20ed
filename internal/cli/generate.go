package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerwall/pkg/canvas"
	"github.com/matzehuels/stickerwall/pkg/errors"
	"github.com/matzehuels/stickerwall/pkg/pipeline"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags   optionFlags
		output  string
		dataURL bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a wallpaper from a set of stickers",
		Long: `Generate a wallpaper from a set of stickers.

Stickers come from a directory (--assets) and from individual sources
(--source), which may be file paths, http(s) URLs or data URLs. Remote
sources are cached locally.

Without --seed a random seed is chosen and reported, so any wallpaper you
like can be regenerated exactly. Seeded wallpapers are cached.`,
		Example: `  stickerwall generate --assets ~/stickers
  stickerwall generate --assets ~/stickers --filter-corners --seed 42 -o wall.png
  stickerwall generate -c profile.toml --density 30 --background auto`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			opts.NoCache = noCache
			return c.runGenerate(cmd.Context(), opts, output, dataURL)
		},
	}

	flags.bindAll(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stickerwall-<seed>.<ext>)")
	cmd.Flags().BoolVar(&dataURL, "data-url", false, "also write the data URL to <output>.txt")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runGenerate executes the pipeline and writes the artifact.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, output string, dataURL bool) error {
	if opts.AssetsDir == "" && len(opts.Sources) == 0 {
		printWarning("No sources given; the wallpaper will only show the background")
	}

	runner, err := c.newRunner(opts.NoCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = loggerFromContext(ctx)

	spinner := newSpinnerWithContext(ctx, "Generating wallpaper...")
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError(errors.UserMessage(err))
		return fmt.Errorf("generate: %w", err)
	}
	spinner.Stop()

	path := output
	if path == "" {
		path = defaultOutputPath(res.Seed, res.Artifact.MIME)
	}
	if err := os.WriteFile(path, res.Artifact.Blob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Wallpaper generated")
	printFile(path)
	if dataURL {
		txt := path + ".txt"
		if err := os.WriteFile(txt, []byte(res.Artifact.DataURL), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", txt, err)
		}
		printFile(txt)
	}
	printStats(len(res.Placements), res.Images, res.Stats.LoadTime+res.Stats.RenderTime, res.CacheInfo.Hit)
	printNewline()
	printNextStep("Reproduce", reproduceCommand(opts, res.Seed))

	return nil
}

// defaultOutputPath names an artifact after its seed.
func defaultOutputPath(seed uint64, mime string) string {
	format := canvas.FormatPNG
	if mime == canvas.FormatJPEG.MIME() {
		format = canvas.FormatJPEG
	}
	return fmt.Sprintf("%s-%d%s", appName, seed, format.Ext())
}

// reproduceCommand returns a command line that regenerates the same image.
func reproduceCommand(opts pipeline.Options, seed uint64) string {
	parts := []string{appName, "generate"}
	if opts.AssetsDir != "" {
		parts = append(parts, "--assets", shellQuote(opts.AssetsDir))
	}
	for _, s := range opts.Sources {
		if !strings.HasPrefix(s, "data:") {
			parts = append(parts, "--source", shellQuote(s))
		}
	}
	if opts.FilterCorners {
		parts = append(parts, "--filter-corners")
	}
	if opts.Width != 0 && opts.Width != pipeline.DefaultWidth {
		parts = append(parts, "--width", fmt.Sprint(opts.Width))
	}
	if opts.Height != 0 && opts.Height != pipeline.DefaultHeight {
		parts = append(parts, "--height", fmt.Sprint(opts.Height))
	}
	if opts.Density != 0 && opts.Density != pipeline.DefaultDensity {
		parts = append(parts, "--density", fmt.Sprint(opts.Density))
	}
	if opts.SizeVariation != 0 && opts.SizeVariation != pipeline.DefaultSizeVariation {
		parts = append(parts, "--size-variation", fmt.Sprint(opts.SizeVariation))
	}
	if opts.Rounds != 0 && opts.Rounds != pipeline.DefaultRounds {
		parts = append(parts, "--rounds", fmt.Sprint(opts.Rounds))
	}
	if opts.Background != "" && !strings.EqualFold(opts.Background, pipeline.DefaultBackground) {
		parts = append(parts, "--background", shellQuote(opts.Background))
	}
	return strings.Join(append(parts, "--seed", fmt.Sprint(seed)), " ")
}

// shellQuote single-quotes s when it contains anything but safe characters.
func shellQuote(s string) string {
	safe := s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./~:@%+=,", r))
	}) < 0
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
