package cli

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerwall/pkg/assets"
)

// assetsCommand creates the assets command, which lists the images in a
// directory and whether each passes the transparent-corner filter.
func (c *CLI) assetsCommand() *cobra.Command {
	var onlyPassing bool

	cmd := &cobra.Command{
		Use:   "assets [dir]",
		Short: "List sticker images and check their corners",
		Long: `List the images in a directory with their size and whether they pass the
transparent-corner filter used by 'generate --filter-corners'.

Images that fail the filter look like rectangular pictures rather than
cut-out stickers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAssets(args[0], onlyPassing)
		},
	}
	cmd.Flags().BoolVar(&onlyPassing, "passing", false, "only list images that pass the filter")

	return cmd
}

func (c *CLI) runAssets(dir string, onlyPassing bool) error {
	st := startStage(c.Logger)
	entries, err := assets.Inspect(dir)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", dir, err)
	}
	st.done("inspected images", "dir", dir, "count", len(entries))

	if len(entries) == 0 {
		printInfo("No images in %s", dir)
		return nil
	}

	fmt.Println(assetsTable(entries, onlyPassing))
	passing := countPassing(entries)
	printNewline()
	printKeyValue("images", fmt.Sprint(len(entries)))
	printKeyValue("stickers", fmt.Sprint(passing))
	if failed := countFailed(entries); failed > 0 {
		printWarning("%d images could not be decoded", failed)
	}
	return nil
}

// assetsTable renders entries as a bordered table.
func assetsTable(entries []assets.Entry, onlyPassing bool) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("FILE", "SIZE", "STICKER").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, e := range entries {
		if onlyPassing && !passes(e) {
			continue
		}
		size, status := "-", StyleError.Render(iconError)
		switch {
		case e.Err != nil:
			status = StyleError.Render("unreadable")
		case e.Transparent:
			size = fmt.Sprintf("%dx%d", e.Width, e.Height)
			status = StyleSuccess.Render(iconSuccess)
		default:
			size = fmt.Sprintf("%dx%d", e.Width, e.Height)
		}
		t.Row(filepath.Base(e.Path), size, status)
	}
	return t.Render()
}

func passes(e assets.Entry) bool { return e.Err == nil && e.Transparent }

func countPassing(entries []assets.Entry) int {
	n := 0
	for _, e := range entries {
		if passes(e) {
			n++
		}
	}
	return n
}

func countFailed(entries []assets.Entry) int {
	n := 0
	for _, e := range entries {
		if e.Err != nil {
			n++
		}
	}
	return n
}
