package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/synop-etl/internal/domain"
	"github.com/couchcryptid/synop-etl/internal/geojson"
)

const (
	maxDecodeBody = 10 << 20
	queryLayout   = "2006-01-02T15:04"
)

// SnapshotProvider exposes readiness and the latest loaded bulletin.
type SnapshotProvider interface {
	sharedobs.ReadinessChecker
	Snapshot() (domain.DecodedBulletin, bool)
}

// BulletinSource fetches bulletins for arbitrary windows.
type BulletinSource interface {
	FetchBulletin(ctx context.Context, w domain.Window) (domain.Bulletin, error)
}

// Server exposes health, readiness, metrics, and the station API.
type Server struct {
	httpServer *http.Server
	snapshots  SnapshotProvider
	source     BulletinSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and /api routes.
func NewServer(addr string, snapshots SnapshotProvider, source BulletinSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// Downloads wait on the upstream export, including its retries.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		snapshots: snapshots,
		source:    source,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(snapshots))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /api/stations", withCORS(http.HandlerFunc(s.handleStations)))
	mux.Handle("POST /api/decode", withCORS(http.HandlerFunc(s.handleDecode)))
	mux.Handle("GET /api/download", withCORS(http.HandlerFunc(s.handleDownload)))
	mux.Handle("OPTIONS /api/", withCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleStations(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshots.Snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no bulletin loaded yet")
		return
	}
	s.writeCollection(w, snap.Records, "")
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDecodeBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("bulletin exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	records, stats := domain.DecodeBulletinStats(string(body))
	s.logger.Info("bulletin decoded on request",
		"headers", stats.Headers,
		"records", stats.Records,
		"dropped", len(stats.Dropped),
	)
	s.writeCollection(w, records, "")
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.source.FetchBulletin(r.Context(), window)
	if err != nil {
		s.logger.Error("download fetch failed", "window", window.String(), "error", err)
		writeError(w, http.StatusBadGateway, "fetch bulletin: "+err.Error())
		return
	}

	records := domain.DecodeBulletin(b.Text)
	s.writeCollection(w, records, geojson.Filename(window.Start, window.End))
}

// writeCollection renders records as GeoJSON, as an attachment when filename is set.
func (s *Server) writeCollection(w http.ResponseWriter, records []domain.ObservationRecord, filename string) {
	w.Header().Set("Content-Type", geojson.MediaType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	if err := geojson.Encode(w, geojson.NewFeatureCollection(records), false); err != nil {
		s.logger.Warn("write feature collection failed", "error", err)
	}
}

func parseWindow(r *http.Request) (domain.Window, error) {
	q := r.URL.Query()
	start, err := time.ParseInLocation(queryLayout, q.Get("start"), time.UTC)
	if err != nil {
		return domain.Window{}, fmt.Errorf("invalid start %q: want %s", q.Get("start"), queryLayout)
	}
	end, err := time.ParseInLocation(queryLayout, q.Get("end"), time.UTC)
	if err != nil {
		return domain.Window{}, fmt.Errorf("invalid end %q: want %s", q.Get("end"), queryLayout)
	}
	return domain.NewWindow(start, end)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}

// withCORS allows browser map clients served from other origins.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}
