package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/kanbanlab/taskboard/internal/api/shared"
	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/service"
)

// NoteHandler handles task note HTTP requests.
type NoteHandler struct {
	noteService service.NoteService
	validator   *validator.Validate
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		validator:   validator.New(),
	}
}

// ListNotes handles GET /api/tasks/{taskID}/notes requests. Only notes
// visible to the user are returned.
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "taskID")
	if !ok {
		return
	}

	notes, err := h.noteService.ListNotes(r.Context(), userID, taskID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if notes == nil {
		notes = []*domain.Note{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, notes)
}

// CreateNote handles POST /api/tasks/{taskID}/notes requests.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "taskID")
	if !ok {
		return
	}

	var req CreateNoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	note, err := h.noteService.AddNote(r.Context(), userID, taskID, req.Content, req.IsPublic, req.RecipientID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{noteID} requests.
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := requireUserAndPathID(w, r, "noteID")
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	note, err := h.noteService.UpdateNote(r.Context(), userID, noteID, req.Content, req.IsPublic, req.RecipientID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{noteID} requests.
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := requireUserAndPathID(w, r, "noteID")
	if !ok {
		return
	}

	if err := h.noteService.DeleteNote(r.Context(), userID, noteID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkViewed handles POST /api/notes/{noteID}/view requests. Marking the
// same note twice is harmless.
func (h *NoteHandler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := requireUserAndPathID(w, r, "noteID")
	if !ok {
		return
	}

	if err := h.noteService.MarkViewed(r.Context(), userID, noteID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CountUnread handles GET /api/tasks/{taskID}/notes/unread requests.
func (h *NoteHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "taskID")
	if !ok {
		return
	}

	count, err := h.noteService.CountUnread(r.Context(), userID, taskID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UnreadCountResponse{Count: count})
}
