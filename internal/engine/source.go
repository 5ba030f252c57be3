package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/go-directory/internal/config"
)

// sniffLength is how many bytes are peeked to guess a format from content.
const sniffLength = 64

// SourceConfig contains all parameters required to load a dataset.
type SourceConfig struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string // Absolute path to the dataset file
	WebURL    string // HTTP(S) URL of the dataset
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password
}

// Loader reads datasets from local files or the network.
type Loader struct {
	Fetcher DataFetcher // Interface for network abstraction.
}

// Load acquires and decodes the configured dataset.
func (l *Loader) Load(ctx context.Context, cfg SourceConfig) ([]Person, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompLoader,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgLoadStarted)

	reader, name, err := l.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrDatasetRead, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	people, format, err := DecodeNamed(name, reader)
	if err != nil {
		return nil, err
	}

	log.Info(config.MsgLoadFinished,
		config.LogKeyFormat, format,
		config.LogKeyRecords, len(people),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return people, nil
}

// DecodeNamed detects the format of a named stream and decodes it.
func DecodeNamed(name string, r io.Reader) ([]Person, string, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(sniffLength)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, "", fmt.Errorf("%s: %w", config.ErrDatasetRead, err)
	}

	format, err := DetectFormat(name, head)
	if err != nil {
		return nil, "", err
	}
	people, err := Decode(format, br)
	if err != nil {
		return nil, format, err
	}
	return people, format, nil
}

// acquireStream opens the appropriate data source based on configuration. The returned
// name drives format detection.
func (l *Loader) acquireStream(ctx context.Context, cfg SourceConfig) (io.ReadCloser, string, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, "", errors.New(config.ErrLocalPathEmpty)
		}
		f, err := os.Open(cfg.LocalPath)
		return f, cfg.LocalPath, err
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, "", errors.New(config.ErrWebURLEmpty)
		}
		if l.Fetcher == nil {
			return nil, "", errors.New(config.ErrFetcherMissing)
		}
		rc, err := l.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
		return rc, urlPath(cfg.WebURL), err
	default:
		return nil, "", fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}
