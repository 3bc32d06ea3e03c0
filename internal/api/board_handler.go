package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/kanbanlab/taskboard/internal/api/shared"
	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/service"
)

// BoardHandler handles board, column, and share HTTP requests.
type BoardHandler struct {
	boardService service.BoardService
	validator    *validator.Validate
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(boardService service.BoardService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		validator:    validator.New(),
	}
}

// ListBoards handles GET /api/boards requests. The response separates the
// user's own boards from the boards shared with them.
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	own, sharedBoards, err := h.boardService.ListBoards(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if own == nil {
		own = []*domain.Board{}
	}
	if sharedBoards == nil {
		sharedBoards = []*domain.Board{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BoardListResponse{
		Own:    own,
		Shared: sharedBoards,
	})
}

// CreateBoard handles POST /api/boards requests.
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateBoardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	board, err := h.boardService.CreateBoard(r.Context(), userID, req.Name, req.Icon)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, board)
}

// GetBoard handles GET /api/boards/{boardID} requests.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := requireUserAndPathID(w, r, "boardID")
	if !ok {
		return
	}

	board, err := h.boardService.GetBoard(r.Context(), userID, boardID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, board)
}

// UpdateBoard handles PUT /api/boards/{boardID} requests.
func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := requireUserAndPathID(w, r, "boardID")
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	board, err := h.boardService.UpdateBoard(r.Context(), userID, boardID, req.Name, req.Icon)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, board)
}

// DeleteBoard handles DELETE /api/boards/{boardID} requests.
func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := requireUserAndPathID(w, r, "boardID")
	if !ok {
		return
	}

	if err := h.boardService.DeleteBoard(r.Context(), userID, boardID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListColumns handles GET /api/boards/{boardID}/columns requests.
func (h *BoardHandler) ListColumns(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := requireUserAndPathID(w, r, "boardID")
	if !ok {
		return
	}

	columns, err := h.boardService.ListColumns(r.Context(), userID, boardID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if columns == nil {
		columns = []*domain.Column{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, columns)
}

// CreateColumn handles POST /api/boards/{boardID}/columns requests.
func (h *BoardHandler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := requireUserAndPathID(w, r, "boardID")
	if !ok {
		return
	}

	var req CreateColumnRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	column, err := h.boardService.CreateColumn(r.Context(), userID, boardID, req.Title)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, column)
}

// RenameColumn handles PUT /api/columns/{columnID} requests.
func (h *BoardHandler) RenameColumn(w http.ResponseWriter, r *http.Request) {
	userID, columnID, ok := requireUserAndPathID(w, r, "columnID")
	if !ok {
		return
	}

	var req RenameColumnRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	column, err := h.boardService.RenameColumn(r.Context(), userID, columnID, req.Title)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, column)
}

// DeleteColumn handles DELETE /api/columns/{columnID} requests.
func (h *BoardHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	userID, columnID, ok := requireUserAndPathID(w, r, "columnID")
	if !ok {
		return
	}

	if err := h.boardService.DeleteColumn(r.Context(), userID, columnID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ShareBoard handles POST /api/boards/{boardID}/share requests. The target
// user is addressed by email; sharing again updates the permission.
func (h *BoardHandler) ShareBoard(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := requireUserAndPathID(w, r, "boardID")
	if !ok {
		return
	}

	var req ShareBoardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	permission := domain.SharePermission(req.Permission)
	share, err := h.boardService.ShareBoard(r.Context(), userID, boardID, req.Email, permission)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, share)
}

// UnshareBoard handles DELETE /api/boards/{boardID}/share/{userID} requests.
func (h *BoardHandler) UnshareBoard(w http.ResponseWriter, r *http.Request) {
	ownerID, boardID, ok := requireUserAndPathID(w, r, "boardID")
	if !ok {
		return
	}

	targetID, err := getPathID(r, "userID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.boardService.UnshareBoard(r.Context(), ownerID, boardID, targetID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMembers handles GET /api/boards/{boardID}/members requests.
func (h *BoardHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := requireUserAndPathID(w, r, "boardID")
	if !ok {
		return
	}

	members, err := h.boardService.ListMembers(r.Context(), userID, boardID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, members)
}
