package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-directory/internal/config"
	"github.com/tartampluch/go-directory/internal/engine"
)

// snapshot is an immutable copy of the dataset being served.
type snapshot struct {
	people   []engine.Person
	version  string // content hash of the dataset
	modified time.Time
}

// FeedServer exposes the loaded directory as a filtered iCalendar feed on localhost.
// Every request filters the current snapshot with the criteria found in its query string.
type FeedServer struct {
	// snap uses atomic.Pointer for lock-free reads: requests are frequent, dataset swaps are not.
	snap atomic.Pointer[snapshot]

	Port    string
	Filter  *engine.FilterEngine
	Builder *engine.CalendarBuilder
}

// NewFeedServer creates a new instance of the server.
func NewFeedServer(port string, filter *engine.FilterEngine, builder *engine.CalendarBuilder) *FeedServer {
	return &FeedServer{
		Port:    port,
		Filter:  filter,
		Builder: builder,
	}
}

// Handler returns the routes served by the feed.
func (s *FeedServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleFeedRequest)
	mux.HandleFunc(config.RouteCalendar, s.handleFeedRequest)
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return fmt.Errorf(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served dataset. The slice must not be modified afterwards.
func (s *FeedServer) Update(people []engine.Person) {
	hash := sha256.New()
	if err := engine.EncodeJSON(hash, people); err != nil {
		// Unreachable for in-memory records; fall back to a time-based version.
		_, _ = io.WriteString(hash, time.Now().String())
	}

	snap := &snapshot{
		people:   people,
		version:  hex.EncodeToString(hash.Sum(nil)),
		modified: s.Builder.Now().UTC(),
	}
	s.snap.Store(snap)

	slog.Debug(config.MsgDatasetSwap,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRecords, len(people),
		config.LogKeyETag, snap.version,
	)
}

// etagFor identifies one filtered view of one dataset version. Event dates and ages
// depend on the current year, so the year is part of the tag.
func (snap *snapshot) etagFor(rawQuery string, year int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s?%s#%d", snap.version, rawQuery, year)))
	return fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))
}

// lastModified is the later of the dataset swap and the start of the current year,
// when the feed was last re-dated.
func (snap *snapshot) lastModified(now time.Time) time.Time {
	newYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()).UTC()
	if snap.modified.After(newYear) {
		return snap.modified
	}
	return newYear
}

// handleFeedRequest filters the snapshot and serves the result with HTTP caching support.
func (s *FeedServer) handleFeedRequest(w http.ResponseWriter, r *http.Request) {
	// 1. Method Validation
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	// 2. Readiness Check
	snap := s.snap.Load()
	if snap == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	now := s.Builder.Now()
	query := r.URL.Query()
	etag := snap.etagFor(query.Encode(), now.Year())
	modified := snap.lastModified(now)

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, etag)
	w.Header().Set(config.HeaderLastModified, modified.Format(http.TimeFormat))

	// 3. Conditional Headers
	// If-Modified-Since only applies when the client sent no If-None-Match.
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		if match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	} else if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := http.ParseTime(since); err == nil {
			if !modified.Truncate(time.Second).After(clientTime) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	// 4. Filter & Render
	criteria := engine.CriteriaFromValues(query)
	results := s.Filter.Apply(snap.people, criteria)
	data, events, err := s.Builder.Build(results)
	if err != nil {
		slog.Error(config.ErrCalendarBuild,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		w.Header().Del(config.HeaderETag)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	slog.Debug(config.MsgFeedServed,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyQuery, query.Encode(),
		config.LogKeyMatched, len(results),
		config.LogKeyEvents, events,
		config.LogKeySizeBytes, len(data),
	)

	// 5. Serve Content
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
