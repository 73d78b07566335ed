package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/maksimkurb/fbx-go/src/internal/auth"
	"github.com/maksimkurb/fbx-go/src/internal/config"
	"github.com/maksimkurb/fbx-go/src/internal/resources"
)

// Session is the box session shared by every gateway request.
// *access.Access implements it.
type Session interface {
	Open(ctx context.Context) error
	LoggedIn() bool
	Permissions() auth.Permissions
	AppID() string
}

// Downloads is the part of the download module served by the gateway.
type Downloads interface {
	Tasks(ctx context.Context) ([]resources.DownloadTask, error)
	Task(ctx context.Context, id int) (*resources.DownloadTask, error)
	AddFromURL(ctx context.Context, req resources.DownloadURL) (*resources.AddedDownload, error)
}

// System is the part of the system module served by the gateway.
type System interface {
	Config(ctx context.Context) (*resources.SystemConfig, error)
}

// Handler manages all API endpoints and dependencies.
type Handler struct {
	session   Session
	downloads Downloads
	system    System
}

// NewHandler creates a new API handler.
func NewHandler(session Session, downloads Downloads, system System) *Handler {
	return &Handler{
		session:   session,
		downloads: downloads,
		system:    system,
	}
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(DataResponse{Data: data})
}

// writeJSONData writes a successful JSON response with data.
func writeJSONData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}

// CheckHealth reports whether the gateway is up and logged in.
// GET /health
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, HealthResponse{Healthy: true, LoggedIn: h.session.LoggedIn()})
}

// GetSession describes the current session.
// GET /api/v1/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, h.sessionResponse())
}

// OpenSession logs in now instead of on the next box call.
// POST /api/v1/session
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Open(r.Context()); err != nil {
		WriteBoxError(w, err)
		return
	}
	writeJSONData(w, h.sessionResponse())
}

func (h *Handler) sessionResponse() SessionResponse {
	return SessionResponse{
		AppID:       h.session.AppID(),
		LoggedIn:    h.session.LoggedIn(),
		Permissions: h.session.Permissions().Granted(),
	}
}

// GetSystem returns the box system description.
// GET /api/v1/system
func (h *Handler) GetSystem(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.system.Config(r.Context())
	if err != nil {
		WriteBoxError(w, err)
		return
	}
	if cfg == nil {
		writeJSONData(w, map[string]any{})
		return
	}
	writeJSONData(w, cfg.Raw)
}

// GetDownloads lists the download tasks, optionally filtered by
// ?status=downloading,seeding.
// GET /api/v1/downloads
func (h *Handler) GetDownloads(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.downloads.Tasks(r.Context())
	if err != nil {
		WriteBoxError(w, err)
		return
	}

	if filter := r.URL.Query().Get("status"); filter != "" {
		wanted := make(map[resources.DownloadState]bool)
		for _, s := range strings.Split(filter, ",") {
			wanted[resources.DownloadState(strings.TrimSpace(s))] = true
		}
		filtered := tasks[:0]
		for _, task := range tasks {
			if wanted[task.Status] {
				filtered = append(filtered, task)
			}
		}
		tasks = filtered
	}

	if tasks == nil {
		tasks = []resources.DownloadTask{}
	}
	writeJSONData(w, DownloadsResponse{Downloads: tasks})
}

// GetDownload returns one download task.
// GET /api/v1/downloads/{id}
func (h *Handler) GetDownload(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		WriteInvalidRequest(w, "download id must be a non-negative integer")
		return
	}

	task, err := h.downloads.Task(r.Context(), id)
	if err != nil {
		WriteBoxError(w, err)
		return
	}
	if task == nil {
		WriteNotFound(w, "download "+strconv.Itoa(id))
		return
	}
	writeJSONData(w, task)
}

// AddDownload queues one or more URLs.
// POST /api/v1/downloads
func (h *Handler) AddDownload(w http.ResponseWriter, r *http.Request) {
	var req AddDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteInvalidRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if err := config.ValidateValue(&req, ""); err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}

	payload := resources.DefaultDownloadURL()
	if len(req.URLs) == 1 {
		payload.DownloadURL = req.URLs[0]
	} else {
		payload.DownloadURLList = strings.Join(req.URLs, "\n")
	}
	payload.Username = req.Username
	payload.Password = req.Password
	payload.Recursive = req.Recursive
	if req.DownloadDir != "" {
		payload.DownloadDir = resources.EncodePath(req.DownloadDir)
	}

	added, err := h.downloads.AddFromURL(r.Context(), payload)
	if err != nil {
		WriteBoxError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}
