// Package web serves the timetable upload endpoint and the conversion
// history API.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"vtcal/internal/config"
	"vtcal/internal/convert"
	"vtcal/internal/history"
	appLog "vtcal/internal/log"
)

// Server exposes /health, POST /convert and GET /api/history.
type Server struct {
	cfg  *config.Config
	conv *convert.Converter
	hist *history.Store // nil when history is disabled
	mux  *http.ServeMux
	cron *cron.Cron
}

// NewServer constructs a new Server. hist may be nil.
func NewServer(cfg *config.Config, conv *convert.Converter, hist *history.Store) *Server {
	s := &Server{
		cfg:  cfg,
		conv: conv,
		hist: hist,
		mux:  http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/convert", s.handleConvert)
	s.mux.HandleFunc("/api/history", s.handleHistory)
}

// Handler returns the underlying http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Start runs the HTTP server until ctx is canceled, then shuts it down
// gracefully. When history is enabled, a cron job prunes old rows on the
// configured schedule.
func (s *Server) Start(ctx context.Context) error {
	if s.hist != nil {
		c := cron.New()
		retention := time.Duration(s.cfg.HistoryRetentionDays) * 24 * time.Hour
		_, err := c.AddFunc(s.cfg.PruneCron, func() {
			n, perr := s.hist.PruneOlderThan(retention)
			if perr != nil {
				appLog.Error("history prune failed", perr)
				return
			}
			appLog.Info("history pruned", "removed", n, "retention_days", s.cfg.HistoryRetentionDays)
		})
		if err != nil {
			return fmt.Errorf("schedule prune job: %w", err)
		}
		c.Start()
		s.cron = c
		defer c.Stop()
	}

	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	appLog.Info("http server listening", "listen", "http://"+s.cfg.Listen)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	}
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password disables auth rather than locking the
	// service behind an unusable credential pair.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="vtcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleConvert accepts a multipart PDF upload and responds with the
// generated ICS file as an attachment.
//
// POST /convert, field "file". Errors come back as a JSON envelope:
//
//	{"error": "..."}
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	maxBytes := int64(s.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file too large, maximum size is %dMB", s.cfg.MaxUploadMB))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file selected")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "invalid file type, please upload a PDF file")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	started := time.Now()
	icsBytes, stats, err := s.conv.Bytes(data)
	if err != nil {
		if errors.Is(err, convert.ErrNoEvents) {
			writeError(w, http.StatusUnprocessableEntity, "no schedule events found in PDF")
			return
		}
		appLog.Error("conversion failed", err, "file", header.Filename)
		writeError(w, http.StatusInternalServerError, "failed to process PDF")
		return
	}

	s.recordConversion(header.Filename, stats, time.Since(started))

	base := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+"_schedule.ics"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(icsBytes)
}

func (s *Server) recordConversion(filename string, stats convert.Stats, took time.Duration) {
	if s.hist == nil {
		return
	}

	rec := history.Conversion{
		ID:            uuid.NewString(),
		Filename:      filepath.Base(filename),
		EventCount:    stats.Events,
		SemesterStart: stats.SemesterStart.Format("2006-01-02"),
		SemesterEnd:   stats.SemesterEnd.Format("2006-01-02"),
		DurationMs:    took.Milliseconds(),
	}
	if err := s.hist.Record(rec); err != nil {
		// History is best effort; the calendar already went out.
		appLog.Error("failed to record conversion", err, "file", filename)
	}
}

// conversionDTO is the JSON view of a history row.
type conversionDTO struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	EventCount    int       `json:"event_count"`
	SemesterStart string    `json:"semester_start"`
	SemesterEnd   string    `json:"semester_end"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

type historyResponse struct {
	Conversions []conversionDTO `json:"conversions"`
}

// handleHistory returns recent conversions.
//
// GET /api/history?limit=20
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.hist == nil {
		writeJSON(w, http.StatusOK, historyResponse{Conversions: []conversionDTO{}})
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
	rows, err := s.hist.Recent(limit)
	if err != nil {
		appLog.Error("failed to list history", err)
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}

	dtos := make([]conversionDTO, 0, len(rows))
	for _, c := range rows {
		dtos = append(dtos, conversionDTO{
			ID:            c.ID,
			Filename:      c.Filename,
			EventCount:    c.EventCount,
			SemesterStart: c.SemesterStart,
			SemesterEnd:   c.SemesterEnd,
			DurationMs:    c.DurationMs,
			CreatedAt:     c.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, historyResponse{Conversions: dtos})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
