package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerwall/pkg/layout"
	"github.com/matzehuels/stickerwall/pkg/pipeline"
)

// layoutDocument is the JSON written by the layout command.
type layoutDocument struct {
	Seed       uint64             `json:"seed"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Total      int                `json:"total"`
	Geometry   layout.Geometry    `json:"geometry"`
	Placements []layout.Placement `json:"placements"`
}

// layoutCommand creates the layout command, which runs only the placement
// algorithm. It is a debugging aid for tuning density and size variation.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  optionFlags
		total  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute sticker placements without drawing",
		Long: `Compute sticker placements without loading or drawing any image.

The placements for --total stickers are written as JSON: pixel-space center,
size, rotation in degrees, image index and fill round. The same seed and
options produce the same placements as 'generate' does for that many
stickers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := c.runLayout(opts, total, w); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Layout complete")
				printFile(output)
			}
			return nil
		},
	}

	flags.bindConfig(cmd)
	flags.bindLayout(cmd)
	cmd.Flags().IntVarP(&total, "total", "n", 10, "number of distinct stickers")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

// runLayout computes placements and writes them as indented JSON.
func (c *CLI) runLayout(opts pipeline.Options, total int, w io.Writer) error {
	st := startStage(c.Logger)
	placements, seed, err := pipeline.Layout(opts, total)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	st.done("placed stickers", "count", len(placements), "seed", seed)

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	params := layout.Params{
		Width:         opts.Width,
		Height:        opts.Height,
		Total:         total,
		Density:       opts.Density,
		SizeVariation: opts.SizeVariation,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(layoutDocument{
		Seed:       seed,
		Width:      opts.Width,
		Height:     opts.Height,
		Total:      total,
		Geometry:   params.Geometry(layout.DefaultColumnsPerUnit),
		Placements: placements,
	})
}
