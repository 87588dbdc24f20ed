package worker

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/matzehuels/stickerwall/pkg/canvas"
	"github.com/matzehuels/stickerwall/pkg/layout"
	"github.com/matzehuels/stickerwall/pkg/observability"
)

// composite runs one Generate against a ready state: resize, fill, layout,
// draw and encode. Inputs are validated before the surface is touched.
func (w *Worker) composite(ctx context.Context, st State, req Generate) (Generated, error) {
	start := time.Now()
	hooks := observability.Render()

	params := layout.Params{
		Width:         req.Width,
		Height:        req.Height,
		Total:         st.ImageCount(),
		Density:       req.Density,
		SizeVariation: req.SizeVariation,
	}
	if err := params.Validate(); err != nil {
		return Generated{}, err
	}
	format, err := canvas.ParseFormat(req.Format)
	if err != nil {
		return Generated{}, err
	}
	bg, err := canvas.ParseBackground(req.Background, st.images)
	if err != nil {
		return Generated{}, err
	}

	seed := req.Seed
	for seed == 0 {
		seed = rand.Uint64()
	}
	opts := w.layoutOpts
	if req.Rounds > 0 {
		opts = append(opts[:len(opts):len(opts)], layout.WithRounds(req.Rounds))
	}

	hooks.OnLayoutStart(ctx, params.Total)
	layoutStart := time.Now()
	placements, err := layout.Generate(layout.NewRand(seed), params, opts...)
	hooks.OnLayoutComplete(ctx, len(placements), time.Since(layoutStart), err)
	if err != nil {
		return Generated{}, err
	}

	if err := st.surface.Resize(req.Width, req.Height); err != nil {
		return Generated{}, err
	}
	st.surface.Fill(bg)

	drawStart := time.Now()
	drawn, skipped := 0, 0
	for _, p := range placements {
		img := st.image(p.Index)
		if img == nil {
			skipped++
			continue
		}
		st.surface.DrawSticker(img, p.X, p.Y, p.Size, p.Angle)
		drawn++
	}
	if skipped > 0 {
		w.logger.Debug("skipped placements without a bitmap", "id", req.ID, "skipped", skipped)
	}
	hooks.OnComposite(ctx, drawn, skipped, time.Since(drawStart))

	exportStart := time.Now()
	artifact, err := canvas.Encode(st.surface.Image(), format, w.quality)
	hooks.OnExport(ctx, string(format), len(artifact.Blob), time.Since(exportStart), err)
	if err != nil {
		return Generated{}, err
	}

	return Generated{
		ID:         req.ID,
		Blob:       artifact.Blob,
		DataURL:    artifact.DataURL,
		MIME:       artifact.MIME,
		Seed:       seed,
		Placements: placements,
		Drawn:      drawn,
		Elapsed:    time.Since(start),
	}, nil
}
