package interactive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/shiwa/remo/internal/logger"
	"github.com/shiwa/remo/internal/report"
	"github.com/shiwa/remo/pkg/capture"
	"github.com/shiwa/remo/pkg/config"
)

// HTTPServer — JSON API: /api/sessions, /api/last.
type HTTPServer struct {
	cfg     config.HTTPConfig
	history *capture.History
	version string
}

// NewHTTPServer создаёт сервер поверх history.
func NewHTTPServer(cfg config.HTTPConfig, history *capture.History, version string) *HTTPServer {
	return &HTTPServer{cfg: cfg, history: history, version: version}
}

// Handler возвращает маршруты API.
func (h *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", h.handleSessions)
	mux.HandleFunc("/api/last", h.handleLast)
	mux.HandleFunc("/", h.handleRoot)
	return mux
}

// ListenAndServe слушает host:port из конфига до отмены ctx.
func (h *HTTPServer) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", h.cfg.Host, h.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http listen %s: %w", addr, err)
	}
	logger.Info("http: listening on %s", ln.Addr())
	srv := &http.Server{Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http serve: %w", err)
	}
	return nil
}

func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "remo %s\n", h.version)
}

func (h *HTTPServer) handleSessions(w http.ResponseWriter, _ *http.Request) {
	list := h.history.List()
	out := make([]report.Session, 0, len(list))
	for _, s := range list {
		out = append(out, report.FromSnapshot(s))
	}
	outputJSON(w, http.StatusOK, out)
}

func (h *HTTPServer) handleLast(w http.ResponseWriter, _ *http.Request) {
	s, ok := h.history.Last()
	if !ok {
		outputJSON(w, http.StatusNotFound, map[string]string{"error": "no sessions"})
		return
	}
	outputJSON(w, http.StatusOK, report.FromSnapshot(s))
}

func outputJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}
