// Package pkg provides the core libraries for stickerwall wallpaper generation.
//
// # Overview
//
// Stickerwall scatters a set of sticker images across a wallpaper-sized canvas.
// Stickers fall into a per-column height field so that each one rests on what
// is already there, and the canvas is filled in several rounds so no gaps
// remain. The pkg directory is organized into three areas:
//
//  1. Domain logic: [weighted], [layout], [canvas]
//  2. Infrastructure: [assets], [cache], [history], [observability], [errors]
//  3. Orchestration: [worker], [pipeline]
//
// # Architecture
//
// The typical data flow through stickerwall:
//
//	Directory / URLs / data URLs
//	         ↓
//	    [assets] package (locate, fetch, decode)
//	         ↓
//	    [layout] package (height-field placement, seeded)
//	         ↓
//	    [canvas] package (background, rotate, draw, encode)
//	         ↓
//	    PNG/JPEG blob + data URL
//
// The [worker] package runs the last two stages behind a message interface:
// a surface is handed over once, images load in the background, and every
// generate request gets exactly one response carrying its ID.
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, nil)
//	defer runner.Close()
//
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    AssetsDir:     "~/stickers",
//	    FilterCorners: true,
//	    Seed:          42,
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("wall.png", res.Artifact.Blob, 0o644)
//
// For repeated generations over the same stickers, open a session instead so
// the images are loaded only once:
//
//	s, _ := runner.Open(ctx, opts)
//	defer s.Close()
//	s.WaitReady(ctx)
//	res, _ := s.Generate(ctx, opts)
//
// # Main Packages
//
// [weighted] - Weighted random selection over a fixed set of choices.
//
// [layout] - The placement algorithm: unit geometry, the height field and
// multi-round filling. Deterministic for a given seed.
//
// [canvas] - Drawing surfaces (pure-Go raster and gogpu/gg), background
// parsing including dominant-color selection, and PNG/JPEG encoding.
//
// [assets] - Image locators, cached HTTP fetching with retry, concurrent
// decoding and the transparent-corner sticker filter.
//
// [worker] - The request/response compositing worker and its client.
//
// [pipeline] - Options, TOML profiles, artifact caching and history shared by
// the CLI and the HTTP server.
//
// [cache] - File, memory, Redis and null caches with TTLs.
//
// [history] - Generation records in memory or MongoDB.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/layout/...    # Specific package
//	go test -run Example        # Examples only
//
// [weighted]: https://pkg.go.dev/github.com/matzehuels/stickerwall/pkg/weighted
// [layout]: https://pkg.go.dev/github.com/matzehuels/stickerwall/pkg/layout
// [canvas]: https://pkg.go.dev/github.com/matzehuels/stickerwall/pkg/canvas
// [assets]: https://pkg.go.dev/github.com/matzehuels/stickerwall/pkg/assets
// [cache]: https://pkg.go.dev/github.com/matzehuels/stickerwall/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/stickerwall/pkg/history
// [observability]: https://pkg.go.dev/github.com/matzehuels/stickerwall/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stickerwall/pkg/errors
// [worker]: https://pkg.go.dev/github.com/matzehuels/stickerwall/pkg/worker
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stickerwall/pkg/pipeline
package pkg
