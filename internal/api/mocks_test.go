package api_test

import (
	"context"
	"time"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/service"
)

// Stub services returning canned values. Handlers only route, decode, and
// map errors, so the stubs record arguments and hand back whatever the
// test configured.

type stubUserService struct {
	registerFn     func(ctx context.Context, name, email, password string) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	getUserFn      func(ctx context.Context, id int64) (*domain.User, error)
}

func (s *stubUserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s *stubUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s *stubUserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUserFn(ctx, id)
}

type stubBoardService struct {
	service.BoardService

	getBoardFn    func(ctx context.Context, userID, boardID int64) (*domain.Board, error)
	createBoardFn func(ctx context.Context, ownerID int64, name, icon string) (*domain.Board, error)
	updateBoardFn func(ctx context.Context, userID, boardID int64, name, icon string) (*domain.Board, error)
	listBoardsFn  func(ctx context.Context, userID int64) ([]*domain.Board, []*domain.Board, error)
	deleteFn      func(ctx context.Context, userID, boardID int64) error
	shareFn       func(ctx context.Context, ownerID, boardID int64, email string, perm domain.SharePermission) (*domain.Share, error)
}

func (s *stubBoardService) GetBoard(ctx context.Context, userID, boardID int64) (*domain.Board, error) {
	return s.getBoardFn(ctx, userID, boardID)
}

func (s *stubBoardService) CreateBoard(ctx context.Context, ownerID int64, name, icon string) (*domain.Board, error) {
	return s.createBoardFn(ctx, ownerID, name, icon)
}

func (s *stubBoardService) UpdateBoard(ctx context.Context, userID, boardID int64, name, icon string) (*domain.Board, error) {
	return s.updateBoardFn(ctx, userID, boardID, name, icon)
}

func (s *stubBoardService) ListBoards(ctx context.Context, userID int64) ([]*domain.Board, []*domain.Board, error) {
	return s.listBoardsFn(ctx, userID)
}

func (s *stubBoardService) DeleteBoard(ctx context.Context, userID, boardID int64) error {
	return s.deleteFn(ctx, userID, boardID)
}

func (s *stubBoardService) ShareBoard(
	ctx context.Context,
	ownerID, boardID int64,
	email string,
	perm domain.SharePermission,
) (*domain.Share, error) {
	return s.shareFn(ctx, ownerID, boardID, email, perm)
}

type stubTaskService struct {
	service.TaskService

	createFn  func(ctx context.Context, userID int64, input service.CreateTaskInput) (*domain.Task, error)
	getFn     func(ctx context.Context, userID, taskID int64) (*domain.Task, error)
	reorderFn func(ctx context.Context, userID int64, items []service.ReorderItem) error
	statusFn  func(ctx context.Context, userID, taskID int64, status domain.TaskStatus) (*domain.Task, error)
}

func (s *stubTaskService) CreateTask(ctx context.Context, userID int64, input service.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, userID, input)
}

func (s *stubTaskService) GetTask(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	return s.getFn(ctx, userID, taskID)
}

func (s *stubTaskService) Reorder(ctx context.Context, userID int64, items []service.ReorderItem) error {
	return s.reorderFn(ctx, userID, items)
}

func (s *stubTaskService) SetStatus(ctx context.Context, userID, taskID int64, status domain.TaskStatus) (*domain.Task, error) {
	return s.statusFn(ctx, userID, taskID, status)
}

func testUser(id int64) *domain.User {
	return &domain.User{
		ID:        id,
		Name:      "Test User",
		Email:     "test@example.com",
		CreatedAt: time.Now().UTC(),
	}
}
