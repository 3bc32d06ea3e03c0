package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kanbanlab/taskboard/internal/api/shared"
	"github.com/kanbanlab/taskboard/internal/events"
)

// StreamHandler serves the server-sent events feed. Every authenticated
// client receives every board event; filtering happens client side.
type StreamHandler struct {
	hub *events.Hub
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *events.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// Stream handles GET /api/events requests. The connection stays open until
// the client disconnects; the first event on every subscription is INIT.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Tells nginx-style proxies not to buffer the stream.
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sub := h.hub.Subscribe()
	defer sub.Cancel()

	slog.Debug("event stream opened", "user_id", userID, "subscribers", h.hub.Len())

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("event stream closed", "user_id", userID)
			return
		case event, open := <-sub.C:
			if !open {
				// Dropped by the hub for falling behind.
				slog.Warn("event stream dropped", "user_id", userID)
				return
			}
			if err := writeEvent(w, event); err != nil {
				slog.Debug("event stream write failed", "user_id", userID, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}
