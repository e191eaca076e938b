package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tsawler/patro/format"
)

var (
	// ErrFetch wraps every failure to retrieve an asset.
	ErrFetch = errors.New("assets: fetch failed")
	// ErrUnsupportedImage is returned for data that is not a supported image.
	ErrUnsupportedImage = errors.New("assets: unsupported image")
)

// Fetcher retrieves the raw bytes behind an asset reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// HTTPConfig configures an HTTPFetcher.
type HTTPConfig struct {
	// Timeout bounds each request, including reading the body.
	Timeout time.Duration
	// RequestsPerSecond and Burst configure the rate limiter shared by all
	// requests of the fetcher.
	RequestsPerSecond float64
	Burst             int
	// MaxBytes caps the size of a response body.
	MaxBytes  int64
	UserAgent string
	// Client overrides the HTTP client. Its Timeout is left alone.
	Client *http.Client
	Logger *zap.Logger
}

// DefaultHTTPConfig returns conservative settings for fetching a handful
// of images per document.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:           15 * time.Second,
		RequestsPerSecond: 4,
		Burst:             2,
		MaxBytes:          10 << 20,
		UserAgent:         "patro/1.0",
	}
}

// HTTPFetcher fetches images over HTTP(S).
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	maxBytes  int64
	userAgent string
	logger    *zap.Logger
}

// NewHTTPFetcher creates a fetcher from cfg. Zero fields take their
// defaults.
func NewHTTPFetcher(cfg HTTPConfig) *HTTPFetcher {
	def := DefaultHTTPConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		timeout:   cfg.Timeout,
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, ref, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, ref, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, ref, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !acceptableContentType(ct) {
		return nil, fmt.Errorf("%w: %s: content type %q", ErrUnsupportedImage, ref, ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, ref, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s: larger than %d bytes", ErrFetch, ref, f.maxBytes)
	}
	if !format.DetectFromMagic(data).IsImage() {
		return nil, fmt.Errorf("%w: %s: content is not an image", ErrUnsupportedImage, ref)
	}

	f.logger.Debug("asset fetched",
		zap.String("url", ref),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)),
	)
	return data, nil
}

// acceptableContentType allows image types and the generic types servers
// use when they do not know better. The magic bytes decide in that case.
func acceptableContentType(ct string) bool {
	if ct == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") ||
		mediaType == "application/octet-stream" ||
		mediaType == "binary/octet-stream"
}

// FileFetcher reads assets from the local filesystem. References may be
// plain paths or file:// URLs; relative paths resolve against Root.
type FileFetcher struct {
	Root string
}

// Fetch implements Fetcher.
func (f FileFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, ref, err)
	}
	path := ref
	if u, err := url.Parse(ref); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	if !filepath.IsAbs(path) && f.Root != "" {
		path = filepath.Join(f.Root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return data, nil
}

// DataFetcher decodes base64 data: URIs.
type DataFetcher struct{}

// Fetch implements Fetcher.
func (DataFetcher) Fetch(_ context.Context, ref string) ([]byte, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: not a data URI", ErrFetch)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: only base64 data URIs are supported", ErrFetch)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return data, nil
}

// MultiFetcher routes references by scheme. Nil fields reject their
// scheme.
type MultiFetcher struct {
	HTTP Fetcher
	File Fetcher
	Data Fetcher
}

// NewMultiFetcher returns a fetcher for http(s), file and data references.
func NewMultiFetcher(httpCfg HTTPConfig, root string) *MultiFetcher {
	return &MultiFetcher{
		HTTP: NewHTTPFetcher(httpCfg),
		File: FileFetcher{Root: root},
		Data: DataFetcher{},
	}
}

// Fetch implements Fetcher.
func (m *MultiFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	var next Fetcher
	switch scheme := schemeOf(ref); scheme {
	case "http", "https":
		next = m.HTTP
	case "data":
		next = m.Data
	case "file", "":
		next = m.File
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrFetch, scheme)
	}
	if next == nil {
		return nil, fmt.Errorf("%w: no fetcher for %q", ErrFetch, ref)
	}
	return next.Fetch(ctx, ref)
}

func schemeOf(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		return "data"
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	// Windows drive letters parse as one-letter schemes.
	if len(u.Scheme) == 1 {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

// bytesFetcher serves fixed payloads by reference; used by tests and by
// callers embedding images they already hold.
type bytesFetcher map[string][]byte

// StaticFetcher returns a Fetcher that serves the given payloads and fails
// for any other reference.
func StaticFetcher(payloads map[string][]byte) Fetcher {
	return bytesFetcher(payloads)
}

func (b bytesFetcher) Fetch(_ context.Context, ref string) ([]byte, error) {
	data, ok := b[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s: not found", ErrFetch, ref)
	}
	return bytes.Clone(data), nil
}
