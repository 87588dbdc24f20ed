package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stickerwall/pkg/buildinfo"
	"github.com/matzehuels/stickerwall/pkg/cache"
	"github.com/matzehuels/stickerwall/pkg/observability"
)

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 10 * time.Second

// maxAssetBytes caps a remote image body.
const maxAssetBytes = 64 << 20

// Fetcher returns the raw bytes behind a locator. Remote bytes are stored in
// a cache.Cache so repeated runs skip the network.
type Fetcher struct {
	client  *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	backoff cache.Backoff
	logger  *log.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) FetcherOption { return func(f *Fetcher) { f.client = c } }

// WithCache stores remote bytes in c under keys from k.
func WithCache(c cache.Cache, k cache.Keyer) FetcherOption {
	return func(f *Fetcher) { f.cache, f.keyer = c, k }
}

// WithBackoff sets the retry policy for remote fetches.
func WithBackoff(b cache.Backoff) FetcherOption { return func(f *Fetcher) { f.backoff = b } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) FetcherOption { return func(f *Fetcher) { f.logger = l } }

// NewFetcher returns a Fetcher without caching unless WithCache is given.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: DefaultTimeout},
		cache:   cache.NewNullCache(),
		keyer:   cache.NewDefaultKeyer(),
		ttl:     cache.TTLAsset,
		backoff: cache.DefaultBackoff,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = log.New(io.Discard)
	}
	if f.keyer == nil {
		f.keyer = cache.NewDefaultKeyer()
	}
	return f
}

// Fetch returns the bytes for loc.
func (f *Fetcher) Fetch(ctx context.Context, loc Locator) ([]byte, error) {
	switch loc.Kind {
	case KindData:
		return loc.data, nil
	case KindFile:
		return os.ReadFile(loc.Path)
	default:
		return f.fetchRemote(ctx, loc.Raw)
	}
}

func (f *Fetcher) fetchRemote(ctx context.Context, rawURL string) ([]byte, error) {
	key := f.keyer.AssetKey(rawURL)
	if data, ok, err := f.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "asset")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "asset")

	var data []byte
	err := f.backoff.Retry(ctx, func() error {
		var err error
		data, err = f.get(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
		f.logger.Warn("asset cache write failed", "url", rawURL, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "asset", len(data))
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, redact(err)))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	if len(data) > maxAssetBytes {
		return nil, fmt.Errorf("asset larger than %d bytes", maxAssetBytes)
	}
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}

// redact drops the URL from client errors; it is already in the ASSET_LOAD
// message.
func redact(err error) error {
	if ue, ok := err.(*url.Error); ok {
		return ue.Err
	}
	return err
}
