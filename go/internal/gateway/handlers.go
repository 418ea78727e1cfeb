package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler serves the websocket endpoint, connection stats and recording transfer.
type Handler struct {
	connections *ConnectionManager
	recordings  *RecordingStore
}

func NewHandler(cm *ConnectionManager, recordings *RecordingStore) *Handler {
	return &Handler{connections: cm, recordings: recordings}
}

// RegisterRoutes mounts the gateway routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.HandlePlayerConnection)
	r.Get("/ws/stats", h.HandleConnectionStats)
	r.Put("/recordings/{id}", h.UploadRecording)
	r.Get("/recordings/{id}", h.DownloadRecording)
}

// HandlePlayerConnection upgrades the request into the player's event stream.
func (h *Handler) HandlePlayerConnection(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		http.Error(w, "player_id is required", http.StatusBadRequest)
		return
	}

	if err := h.connections.UpgradeConnection(w, r, playerID); err != nil {
		// the upgrader has already replied to the client
		log.Error().
			Err(err).
			Str("player_id", playerID).
			Msg("failed to upgrade WebSocket connection")
	}
}

func (h *Handler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connections.Stats())
}

// UploadRecording stores the body as the recording's audio.
func (h *Handler) UploadRecording(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body := http.MaxBytesReader(w, r.Body, h.recordings.cfg.MaxBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: ErrRecordingTooLarge.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read body"})
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/webm"
	}
	if err := h.recordings.Put(id, contentType, data); err != nil {
		if errors.Is(err, ErrRecordingNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	}

	log.Info().Str("recording_id", id).Int("bytes", len(data)).Msg("recording uploaded")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DownloadRecording(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recordings.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="karaoke-recording.webm"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(rec.Data); err != nil {
		log.Warn().Err(err).Str("recording_id", rec.ID).Msg("failed to write recording")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
