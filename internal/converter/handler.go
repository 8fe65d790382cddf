package converter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hls-converter/internal/task"
)

// Handler exposes the conversion pipeline over HTTP using go-chi. It is
// deliberately thin: request decoding and status mapping only, no pipeline
// logic.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler returns a Handler bound to the given Service and Logger.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the conversion API on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/convert", h.Convert)
	r.Get("/tasks", h.ListTasks)
	r.Get("/tasks/{task_id}", h.GetTask)
	r.Post("/assets/{asset_id}/media", h.AttachMedia)
	// Nested asset ids like "season1/ep1" carry slashes.
	r.Post("/assets/{asset_id}/{asset_sub}/media", h.AttachMedia)
}

type convertPayload struct {
	InputPath string `json:"inputPath"`
	AssetID   string `json:"assetId"`
	BasePath  string `json:"basePath"`
}

// Convert handles POST /convert.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var body convertPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.log.Debug("invalid convert body", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Convert(r.Context(), body.InputPath, ConvertRequest{
		AssetID:  body.AssetID,
		BasePath: body.BasePath,
	})
	if err != nil {
		if IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("conversion failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// GetTask handles GET /tasks/{task_id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "task_id")
	t, ok := h.svc.Task(id)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ListTasks handles GET /tasks?status=.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	status := task.Status(r.URL.Query().Get("status"))
	switch status {
	case task.StatusPending, task.StatusProcessing, task.StatusCompleted, task.StatusFailed:
	default:
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.TasksByStatus(status))
}

type attachPayload struct {
	AudioTracks    []AudioTrack    `json:"audioTracks"`
	SubtitleTracks []SubtitleTrack `json:"subtitleTracks"`
}

// AttachMedia handles POST /assets/{asset_id}/media.
func (h *Handler) AttachMedia(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "asset_id")
	if sub := chi.URLParam(r, "asset_sub"); sub != "" {
		assetID += "/" + sub
	}

	var body attachPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.AttachTracks(assetID, body.AudioTracks, body.SubtitleTracks); err != nil {
		switch {
		case IsValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case isPlaylistError(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.log.Error("attach media failed", slog.String("asset", assetID), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "media tracks attached"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
