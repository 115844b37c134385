package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hyperengineering/cdusync/internal/engine"
	"github.com/hyperengineering/cdusync/internal/loader"
	"github.com/hyperengineering/cdusync/internal/types"
)

// MaxImportBytes bounds the size of an uploaded backup document.
const MaxImportBytes = 32 << 20

// Engine is the engine surface the admin API drives.
type Engine interface {
	Snapshot() *types.Dataset
	Status() engine.Status
	Reload(ctx context.Context) *loader.Result
	SaveToLocalStorage(ctx context.Context) error
	ExportAllData() ([]byte, error)
	ImportAllData(ctx context.Context, doc []byte) error
}

// NotificationFeed serves retained notifications to polling clients.
type NotificationFeed interface {
	Since(after int64) []engine.Notification
}

// Handler implements the API handlers
type Handler struct {
	engine  Engine
	feed    NotificationFeed
	apiKey  string
	version string
}

// NewHandler creates a new Handler. feed may be nil, in which case the
// notifications endpoint always returns an empty list.
func NewHandler(e Engine, feed NotificationFeed, apiKey, version string) *Handler {
	return &Handler{
		engine:  e,
		feed:    feed,
		apiKey:  apiKey,
		version: version,
	}
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Mode    string `json:"mode"`
	Loading bool   `json:"loading"`
}

// ReloadResponse is the body of POST /api/v1/reload.
type ReloadResponse struct {
	Source   loader.Source `json:"source"`
	Degraded bool          `json:"degraded"`
}

// ImportResponse is the body of a successful POST /api/v1/import.
type ImportResponse struct {
	Imported bool  `json:"imported"`
	Bytes    int   `json:"bytes"`
	Took     int64 `json:"tookMs"`
}

// NotificationsResponse is the body of GET /api/v1/notifications.
type NotificationsResponse struct {
	Notifications []engine.Notification `json:"notifications"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.engine.Status()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: h.version,
		Mode:    st.Mode,
		Loading: st.Loading,
	})
}

// Tree handles GET /api/v1/tree
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// Status handles GET /api/v1/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Status())
}

// Notifications handles GET /api/v1/notifications?after=<seq>
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	var after int64
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			WriteProblem(w, r, http.StatusBadRequest, "after must be a non-negative integer")
			return
		}
		after = n
	}

	resp := NotificationsResponse{Notifications: []engine.Notification{}}
	if h.feed != nil {
		resp.Notifications = h.feed.Since(after)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reload handles POST /api/v1/reload
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	res := h.engine.Reload(r.Context())
	if res.RemoteErr != nil {
		requestLogger(r.Context()).Warn("reload fell back",
			"action", "reload_fallback",
			"source", res.Source,
			"error", res.RemoteErr,
		)
	}
	writeJSON(w, http.StatusOK, ReloadResponse{Source: res.Source, Degraded: res.Degraded})
}

// Save handles POST /api/v1/save
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.SaveToLocalStorage(r.Context()); err != nil {
		requestLogger(r.Context()).Error("save failed", "action", "save_failed", "error", err)
		MapEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/v1/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.engine.ExportAllData()
	if err != nil {
		requestLogger(r.Context()).Error("export failed", "action", "export_failed", "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	name := fmt.Sprintf("cdu-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(doc)
}

// Import handles POST /api/v1/import. The body is a backup document that
// replaces the whole dataset.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteProblem(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Backup document exceeds %d bytes", MaxImportBytes))
			return
		}
		WriteProblem(w, r, http.StatusBadRequest, "Could not read request body")
		return
	}
	if len(doc) == 0 {
		WriteProblem(w, r, http.StatusBadRequest, "Request body is empty")
		return
	}

	log := requestLogger(r.Context())
	if err := h.engine.ImportAllData(r.Context(), doc); err != nil {
		log.Warn("import rejected", "action", "import_failed", "error", err)
		MapEngineError(w, r, err)
		return
	}
	log.Info("import completed",
		"action", "import_completed",
		"bytes", len(doc),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, ImportResponse{
		Imported: true,
		Bytes:    len(doc),
		Took:     time.Since(start).Milliseconds(),
	})
}
