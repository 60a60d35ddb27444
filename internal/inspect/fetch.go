// Package inspect loads pprof profiles from a running pprofd or from disk and
// summarizes them by function.
package inspect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/pprof/profile"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	cerrors "github.com/coral-mesh/pprofd/internal/errors"
	"github.com/coral-mesh/pprofd/internal/retry"
	"github.com/coral-mesh/pprofd/internal/safe"
)

// MaxProfileSize bounds how much of a profile is read into memory.
const MaxProfileSize = 256 << 20

// FetchConfig configures Fetch.
type FetchConfig struct {
	// Timeout bounds one HTTP attempt. Sampling endpoints need it to exceed
	// the requested ?seconds=.
	Timeout time.Duration
	Retry   retry.Config
	// Client overrides the HTTP client (tests).
	Client *http.Client
}

// DefaultFetchConfig returns a config suitable for a local server.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Timeout: 2 * time.Minute,
		Retry:   retry.DefaultConfig(),
	}
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.URL, e.Status, strings.TrimSpace(e.Body))
}

// Open loads a profile from an http(s) URL or a local file path.
func Open(ctx context.Context, source string, cfg FetchConfig, logger zerolog.Logger) (*profile.Profile, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return Fetch(ctx, source, cfg, logger)
	}

	data, err := safe.ReadFile(source, &safe.ReadOptions{MaxSize: MaxProfileSize})
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return Decode(data)
}

// Fetch downloads and parses a profile. Connection failures and 5xx
// responses are retried with backoff; other statuses fail immediately.
func Fetch(ctx context.Context, url string, cfg FetchConfig, logger zerolog.Logger) (*profile.Profile, error) {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry = retry.DefaultConfig()
	}

	var data []byte
	attempt := 0
	err := retry.Do(ctx, cfg.Retry, func() error {
		attempt++
		logger.Debug().Str("url", url).Int("attempt", attempt).Msg("Fetching profile")

		var err error
		data, err = download(ctx, client, url, logger)
		if err != nil {
			logger.Debug().Err(err).Int("attempt", attempt).Msg("Profile fetch failed")
		}
		return err
	}, retry.IsTransient)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return Decode(data)
}

func download(ctx context.Context, client *http.Client, url string, logger zerolog.Logger) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer cerrors.DeferClose(logger, resp.Body, "Failed to close response body")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		serr := &StatusError{URL: url, Status: resp.StatusCode, Body: string(body)}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, serr
		}
		return nil, retry.Permanent(serr)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxProfileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > MaxProfileSize {
		return nil, retry.Permanent(fmt.Errorf("profile exceeds %d bytes", MaxProfileSize))
	}
	return data, nil
}

var gzipMagic = []byte{0x1f, 0x8b}

// Decode parses a gzip'd or raw profile.proto payload.
func Decode(data []byte) (*profile.Profile, error) {
	if bytes.HasPrefix(data, gzipMagic) {
		raw, err := gunzip(data)
		if err != nil {
			return nil, err
		}
		data = raw
	}

	prof, err := profile.ParseUncompressed(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pprof profile: %w", err)
	}
	return prof, nil
}

func gunzip(data []byte) (raw []byte, err error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer cerrors.CloseInto(&err, zr)

	raw, err = io.ReadAll(io.LimitReader(zr, MaxProfileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress profile: %w", err)
	}
	if len(raw) > MaxProfileSize {
		return nil, fmt.Errorf("decompressed profile exceeds %d bytes", MaxProfileSize)
	}
	return raw, nil
}
