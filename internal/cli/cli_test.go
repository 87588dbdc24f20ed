package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/stickerwall/pkg/cache"
	"github.com/matzehuels/stickerwall/pkg/canvas"
	"github.com/matzehuels/stickerwall/pkg/pipeline"
)

func newTestRoot(args ...string) (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root, &out
}

func TestResolveWithoutConfig(t *testing.T) {
	var flags optionFlags
	cmd := &cobra.Command{Use: "test"}
	flags.bindAll(cmd)
	if err := cmd.ParseFlags([]string{"--density", "30", "--seed", "5"}); err != nil {
		t.Fatal(err)
	}

	opts, err := flags.resolve(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Density != 30 || opts.Seed != 5 {
		t.Errorf("flags not applied: %+v", opts)
	}
	if opts.Width != pipeline.DefaultWidth || opts.Format != string(pipeline.DefaultFormat) {
		t.Errorf("flag defaults not applied: %+v", opts)
	}
}

func TestResolveMergesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	data := "width = 1920\nheight = 1080\ndensity = 12\nbackground = \"auto\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	var flags optionFlags
	cmd := &cobra.Command{Use: "test"}
	flags.bindAll(cmd)
	if err := cmd.ParseFlags([]string{"-c", path, "--width", "800", "--seed", "3"}); err != nil {
		t.Fatal(err)
	}

	opts, err := flags.resolve(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Width != 800 {
		t.Errorf("Width = %d, want flag value 800", opts.Width)
	}
	if opts.Height != 1080 || opts.Density != 12 || opts.Background != "auto" {
		t.Errorf("profile values lost: %+v", opts)
	}
	if opts.Seed != 3 {
		t.Errorf("Seed = %d, want 3", opts.Seed)
	}
	// Unset flags must not override the profile with their defaults, and
	// fields absent from both stay zero until validation fills them.
	if opts.Rounds != 0 {
		t.Errorf("Rounds = %d, want 0", opts.Rounds)
	}
}

func TestResolveBadConfig(t *testing.T) {
	var flags optionFlags
	cmd := &cobra.Command{Use: "test"}
	flags.bindAll(cmd)
	if err := cmd.ParseFlags([]string{"-c", filepath.Join(t.TempDir(), "missing.toml")}); err != nil {
		t.Fatal(err)
	}
	if _, err := flags.resolve(cmd); err == nil {
		t.Error("resolve() with missing profile should fail")
	}
}

func TestOptionSettersCoverFlags(t *testing.T) {
	var flags optionFlags
	cmd := &cobra.Command{Use: "test"}
	flags.bindSources(cmd)
	flags.bindLayout(cmd)
	flags.bindRender(cmd)
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if _, ok := optionSetters[f.Name]; !ok {
			t.Errorf("flag --%s has no option setter", f.Name)
		}
	})
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		seed uint64
		mime string
		want string
	}{
		{42, canvas.FormatPNG.MIME(), "stickerwall-42.png"},
		{7, canvas.FormatJPEG.MIME(), "stickerwall-7.jpg"},
		{1, "application/octet-stream", "stickerwall-1.png"},
	}
	for _, tt := range tests {
		if got := defaultOutputPath(tt.seed, tt.mime); got != tt.want {
			t.Errorf("defaultOutputPath(%d, %q) = %q, want %q", tt.seed, tt.mime, got, tt.want)
		}
	}
}

func TestReproduceCommand(t *testing.T) {
	tests := []struct {
		name string
		opts pipeline.Options
		want string
	}{
		{
			name: "defaults only",
			opts: pipeline.Options{Width: pipeline.DefaultWidth, Density: pipeline.DefaultDensity},
			want: "stickerwall generate --seed 9",
		},
		{
			name: "changed options",
			opts: pipeline.Options{
				AssetsDir:     "/tmp/my stickers",
				FilterCorners: true,
				Density:       30,
				Background:    "#112233",
			},
			want: "stickerwall generate --assets '/tmp/my stickers' --filter-corners --density 30 --background '#112233' --seed 9",
		},
		{
			name: "data urls dropped",
			opts: pipeline.Options{Sources: []string{"https://example.com/a.png", "data:image/png;base64,AAAA"}},
			want: "stickerwall generate --source https://example.com/a.png --seed 9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reproduceCommand(tt.opts, 9); got != tt.want {
				t.Errorf("reproduceCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"~/stickers/a.png", "~/stickers/a.png"},
		{"with space", "'with space'"},
		{"it's", `'it'\''s'`},
		{"", "''"},
	}
	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatsLine(t *testing.T) {
	line := statsLine(120, 8, 1500*time.Millisecond, false)
	for _, want := range []string{"120 placements", "8 stickers", "1.5s"} {
		if !strings.Contains(line, want) {
			t.Errorf("statsLine() = %q, missing %q", line, want)
		}
	}
	if !strings.Contains(statsLine(1, 0, 0, true), iconCached) {
		t.Error("cached stats line should mark the hit")
	}
	if strings.Contains(statsLine(1, 0, 0, true), "stickers") {
		t.Error("zero images should be omitted")
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c, err := newCache(true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("newCache(true) = %T, want NullCache", c)
	}
}

func TestNewCacheUsesDefaultDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c, err := newCache(false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("newCache(false) = %T, want *FileCache", c)
	}
}

func TestNewCacheWithoutDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "")
	c, err := newCache(false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.MemoryCache); !ok {
		t.Errorf("newCache(false) without a cache dir = %T, want *MemoryCache", c)
	}
}

func TestLayoutCommand(t *testing.T) {
	run := func() layoutDocument {
		t.Helper()
		root, out := newTestRoot("layout", "--width", "800", "--height", "400", "--seed", "7", "--total", "5")
		if err := root.Execute(); err != nil {
			t.Fatal(err)
		}
		var doc layoutDocument
		if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
			t.Fatalf("decode output: %v\n%s", err, out.String())
		}
		return doc
	}

	doc := run()
	if doc.Seed != 7 || doc.Width != 800 || doc.Height != 400 || doc.Total != 5 {
		t.Errorf("header = %+v", doc)
	}
	if len(doc.Placements) == 0 {
		t.Fatal("no placements")
	}
	if doc.Geometry.Scale <= 0 || doc.Geometry.Columns <= 0 {
		t.Errorf("geometry = %+v", doc.Geometry)
	}
	for _, p := range doc.Placements {
		if p.Index < 0 || p.Index >= 5 {
			t.Errorf("index %d out of range", p.Index)
		}
	}

	again := run()
	if len(again.Placements) != len(doc.Placements) || again.Placements[0] != doc.Placements[0] {
		t.Error("same seed produced a different layout")
	}
}

func TestLayoutCommandInvalid(t *testing.T) {
	root, _ := newTestRoot("layout", "--density=-1")
	if err := root.Execute(); err == nil {
		t.Error("negative density should fail")
	}
}

func TestCachePathCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	root, out := newTestRoot("cache", "path")
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	want, err := cache.DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCompletionCommand(t *testing.T) {
	root, out := newTestRoot("completion", "bash")
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), appName) {
		t.Error("completion script should mention the command name")
	}

	root, _ = newTestRoot("completion", "tcsh")
	if err := root.Execute(); err == nil {
		t.Error("unsupported shell should fail")
	}
}
