package worker

import (
	"context"
	stderrors "errors"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/stickerwall/pkg/assets"
	"github.com/matzehuels/stickerwall/pkg/canvas"
	"github.com/matzehuels/stickerwall/pkg/errors"
)

func newClient(t *testing.T, source AssetSource) *Client {
	t.Helper()
	w, _ := start(t, source)
	return NewClient(w)
}

func TestClientGenerate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c := newClient(t, assets.Static(solid(8, 8, color.Black), solid(8, 8, color.White)))

	if err := c.Init(ctx, surface(t, 1, 1)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	n, err := c.WaitReady(ctx)
	if err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if n != 2 {
		t.Errorf("WaitReady = %d, want 2", n)
	}

	out, err := c.Generate(ctx, Generate{Width: 64, Height: 48, Density: 4, SizeVariation: 1, Seed: 11})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.ID == "" || len(out.Blob) == 0 {
		t.Errorf("Generate = %+v", out)
	}
}

func TestClientOverlappingCalls(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c := newClient(t, assets.Static(solid(8, 8, color.Black)))
	if err := c.Init(ctx, surface(t, 1, 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.WaitReady(ctx); err != nil {
		t.Fatal(err)
	}

	const n = 6
	var wg sync.WaitGroup
	seeds := make([]uint64, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := c.Generate(ctx, Generate{Width: 32, Height: 32, Density: 2, SizeVariation: 1, Seed: uint64(i + 1)})
			seeds[i], errs[i] = out.Seed, err
		}()
	}
	wg.Wait()
	for i := range n {
		if errs[i] != nil {
			t.Errorf("call %d: %v", i, errs[i])
			continue
		}
		if seeds[i] != uint64(i+1) {
			t.Errorf("call %d got the response for seed %d", i, seeds[i])
		}
	}
}

func TestClientErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	t.Run("load failure", func(t *testing.T) {
		c := newClient(t, newFailingSource())
		_, err := c.WaitReady(ctx)
		var e Error
		if !stderrors.As(err, &e) || e.Code != errors.ErrCodeAssetLoad {
			t.Errorf("WaitReady = %v, want ASSET_LOAD", err)
		}
	})

	t.Run("not initialized", func(t *testing.T) {
		c := newClient(t, assets.Static())
		_, err := c.Generate(ctx, Generate{Width: 10, Height: 10, Density: 1, SizeVariation: 1})
		var e Error
		if !stderrors.As(err, &e) || e.Code != errors.ErrCodeSurfaceNotReady {
			t.Errorf("Generate = %v, want SURFACE_NOT_READY", err)
		}
	})

	t.Run("transferred surface", func(t *testing.T) {
		c := newClient(t, assets.Static())
		tr := surface(t, 1, 1)
		if _, err := tr.Transfer(); err != nil {
			t.Fatal(err)
		}
		err := c.Init(ctx, tr)
		if !errors.Is(err, errors.ErrCodeTransferred) || !stderrors.Is(err, canvas.ErrTransferred) {
			t.Errorf("Init = %v, want TRANSFERRED", err)
		}
	})
}

func TestClientInitRejectedByWorker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	w := New(assets.Static(solid(8, 8, color.Black)))
	c := NewClient(w)

	tr := surface(t, 1, 1)
	if err := c.Init(ctx, tr); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// Transferred after the client accepted it but before the worker runs.
	if _, err := tr.Transfer(); err != nil {
		t.Fatal(err)
	}
	go w.Run(ctx)

	if _, err := c.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	_, err := c.Generate(ctx, Generate{Width: 16, Height: 16, Density: 1, SizeVariation: 1, Seed: 1})
	if !errors.Is(err, errors.ErrCodeSurfaceNotReady) {
		t.Fatalf("Generate err = %v, want SURFACE_NOT_READY", err)
	}
	var cause Error
	if !stderrors.As(err, &cause) || cause.Code != errors.ErrCodeTransferred {
		t.Errorf("Generate err = %v, want the TRANSFERRED init failure as cause", err)
	}

	if err := c.Init(ctx, surface(t, 1, 1)); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if _, err := c.Generate(ctx, Generate{Width: 16, Height: 16, Density: 1, SizeVariation: 1, Seed: 1}); err != nil {
		t.Errorf("Generate after a good Init: %v", err)
	}
}
