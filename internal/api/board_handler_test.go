package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanlab/taskboard/internal/api"
	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/service"
	"github.com/kanbanlab/taskboard/internal/store"
)

func boardRouter(h *api.BoardHandler) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/boards", h.ListBoards)
	r.Post("/api/boards", h.CreateBoard)
	r.Get("/api/boards/{boardID}", h.GetBoard)
	r.Put("/api/boards/{boardID}", h.UpdateBoard)
	r.Delete("/api/boards/{boardID}", h.DeleteBoard)
	r.Post("/api/boards/{boardID}/share", h.ShareBoard)
	return r
}

func testBoard(id, ownerID int64) *domain.Board {
	return &domain.Board{
		ID:        id,
		Name:      "Roadmap",
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
}

func TestListBoardsSplitsOwnAndShared(t *testing.T) {
	boards := &stubBoardService{
		listBoardsFn: func(ctx context.Context, userID int64) ([]*domain.Board, []*domain.Board, error) {
			return []*domain.Board{testBoard(1, userID)}, nil, nil
		},
	}
	router := boardRouter(api.NewBoardHandler(boards))

	req := authedRequest(t, http.MethodGet, "/api/boards", nil, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Own    []*domain.Board `json:"own"`
		Shared []*domain.Board `json:"shared"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Own, 1)
	assert.NotNil(t, resp.Shared)
	assert.Empty(t, resp.Shared)
}

func TestUpdateBoardBlankNameIsBadRequest(t *testing.T) {
	// "   " passes the payload tags but fails entity validation once the
	// service trims it.
	boards := &stubBoardService{
		updateBoardFn: func(ctx context.Context, userID, boardID int64, name, icon string) (*domain.Board, error) {
			return nil, service.NewBoardServiceError("update_board", "invalid board", domain.ErrBoardNameEmpty)
		},
	}
	router := boardRouter(api.NewBoardHandler(boards))

	req := authedRequest(t, http.MethodPut, "/api/boards/5", api.UpdateBoardRequest{
		Name: "   ",
	}, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "board name cannot be empty")
}

func TestCreateBoardReturnsCreated(t *testing.T) {
	boards := &stubBoardService{
		createBoardFn: func(ctx context.Context, ownerID int64, name, icon string) (*domain.Board, error) {
			b := testBoard(9, ownerID)
			b.Name = name
			b.Icon = icon
			return b, nil
		},
	}
	router := boardRouter(api.NewBoardHandler(boards))

	req := authedRequest(t, http.MethodPost, "/api/boards", api.CreateBoardRequest{
		Name: "Sprint 12",
		Icon: "rocket",
	}, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var board domain.Board
	require.NoError(t, json.NewDecoder(w.Body).Decode(&board))
	assert.Equal(t, "Sprint 12", board.Name)
	assert.Equal(t, int64(1), board.OwnerID)
}

func TestGetBoardForbiddenForStrangers(t *testing.T) {
	boards := &stubBoardService{
		getBoardFn: func(ctx context.Context, userID, boardID int64) (*domain.Board, error) {
			return nil, service.ErrPermissionDenied
		},
	}
	router := boardRouter(api.NewBoardHandler(boards))

	req := authedRequest(t, http.MethodGet, "/api/boards/4", nil, 99)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteBoardOwnerOnly(t *testing.T) {
	boards := &stubBoardService{
		deleteFn: func(ctx context.Context, userID, boardID int64) error {
			return service.ErrNotBoardOwner
		},
	}
	router := boardRouter(api.NewBoardHandler(boards))

	req := authedRequest(t, http.MethodDelete, "/api/boards/4", nil, 2)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestShareBoardValidatesPermission(t *testing.T) {
	router := boardRouter(api.NewBoardHandler(&stubBoardService{}))

	req := authedRequest(t, http.MethodPost, "/api/boards/4/share", api.ShareBoardRequest{
		Email:      "bob@example.com",
		Permission: "ADMIN",
	}, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShareBoardUnknownTargetIsNotFound(t *testing.T) {
	boards := &stubBoardService{
		shareFn: func(ctx context.Context, ownerID, boardID int64, email string, perm domain.SharePermission) (*domain.Share, error) {
			return nil, service.ErrShareTargetNotFound
		},
	}
	router := boardRouter(api.NewBoardHandler(boards))

	req := authedRequest(t, http.MethodPost, "/api/boards/4/share", api.ShareBoardRequest{
		Email:      "ghost@example.com",
		Permission: "VIEW",
	}, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBoardMissingIsNotFound(t *testing.T) {
	boards := &stubBoardService{
		getBoardFn: func(ctx context.Context, userID, boardID int64) (*domain.Board, error) {
			return nil, store.ErrBoardNotFound
		},
	}
	router := boardRouter(api.NewBoardHandler(boards))

	req := authedRequest(t, http.MethodGet, "/api/boards/404", nil, 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
