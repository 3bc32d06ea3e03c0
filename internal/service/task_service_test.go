package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/events"
	"github.com/kanbanlab/taskboard/internal/store"
)

func setupBoardWithColumn(t *testing.T, env *testEnv, ownerID int64) (*domain.Board, *domain.Column) {
	t.Helper()
	ctx := context.Background()
	board, err := env.boardSvc.CreateBoard(ctx, ownerID, "Board", "")
	require.NoError(t, err)
	columns, err := env.boardSvc.ListColumns(ctx, ownerID, board.ID)
	require.NoError(t, err)
	require.NotEmpty(t, columns)
	return board, columns[0]
}

func TestCreateTaskAssignsSequentialPositions(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")
	board, column := setupBoardWithColumn(t, env, alice.ID)

	for want := 1; want <= 3; want++ {
		task, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{
			Title:    "task number n",
			ColumnID: &column.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, want, task.Position)
		require.NotNil(t, task.BoardID)
		assert.Equal(t, board.ID, *task.BoardID)
	}
}

func TestCreateTaskLegacyScopePerUserAndStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")
	bob := env.addUser("Bob", "bob@example.com")

	// Positions are independent per (user, status) pair.
	first, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{Title: "errands"})
	require.NoError(t, err)
	second, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{Title: "laundry"})
	require.NoError(t, err)
	other, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{
		Title:  "already going",
		Status: domain.TaskStatusInProgress,
	})
	require.NoError(t, err)
	bobs, err := env.taskSvc.CreateTask(ctx, bob.ID, CreateTaskInput{Title: "bob's own"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 2, second.Position)
	assert.Equal(t, 1, other.Position)
	assert.Equal(t, 1, bobs.Position)
}

func TestCreateTaskColumnBoardWins(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")
	_, column := setupBoardWithColumn(t, env, alice.ID)

	// A stale board id in the request loses to the column's board.
	bogus := int64(9999)
	task, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{
		Title:    "misdirected",
		BoardID:  &bogus,
		ColumnID: &column.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, task.BoardID)
	assert.Equal(t, column.BoardID, *task.BoardID)
}

func TestConcurrentCreatesGetDistinctPositions(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")
	_, column := setupBoardWithColumn(t, env, alice.ID)

	const n = 20
	var wg sync.WaitGroup
	positions := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{
				Title:    "concurrent insert",
				ColumnID: &column.ID,
			})
			if err == nil {
				positions <- task.Position
			}
		}()
	}
	wg.Wait()
	close(positions)

	seen := make(map[int]bool)
	count := 0
	for p := range positions {
		assert.False(t, seen[p], "position %d assigned twice", p)
		seen[p] = true
		count++
	}
	require.Equal(t, n, count)
	for p := 1; p <= n; p++ {
		assert.True(t, seen[p], "position %d missing", p)
	}
}

func TestSetStatusStampsCompletedAt(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")

	task, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{Title: "finish me"})
	require.NoError(t, err)
	require.Nil(t, task.CompletedAt)

	done, err := env.taskSvc.SetStatus(ctx, alice.ID, task.ID, domain.TaskStatusDone)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	stamp := *done.CompletedAt

	// Reopening keeps the last completion time visible.
	reopened, err := env.taskSvc.SetStatus(ctx, alice.ID, task.ID, domain.TaskStatusPending)
	require.NoError(t, err)
	require.NotNil(t, reopened.CompletedAt)
	assert.Equal(t, stamp, *reopened.CompletedAt)
}

func TestMoveToColumnLandsAtEnd(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")
	board, first := setupBoardWithColumn(t, env, alice.ID)
	second, err := env.boardSvc.CreateColumn(ctx, alice.ID, board.ID, "Doing")
	require.NoError(t, err)

	// Two tasks already in the target column.
	for i := 0; i < 2; i++ {
		_, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{
			Title:    "occupies a slot",
			ColumnID: &second.ID,
		})
		require.NoError(t, err)
	}
	task, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{
		Title:    "about to move",
		ColumnID: &first.ID,
	})
	require.NoError(t, err)

	moved, err := env.taskSvc.MoveToColumn(ctx, alice.ID, task.ID, second.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ColumnID)
	assert.Equal(t, second.ID, *moved.ColumnID)
	assert.Equal(t, 3, moved.Position)

	// Moving into an empty column restarts at 1.
	third, err := env.boardSvc.CreateColumn(ctx, alice.ID, board.ID, "Empty")
	require.NoError(t, err)
	moved, err = env.taskSvc.MoveToColumn(ctx, alice.ID, task.ID, third.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Position)
}

func TestReorderAppliesPositionsStatusAndColumn(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")
	board, first := setupBoardWithColumn(t, env, alice.ID)
	second, err := env.boardSvc.CreateColumn(ctx, alice.ID, board.ID, "Doing")
	require.NoError(t, err)

	a, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{Title: "task a", ColumnID: &first.ID})
	require.NoError(t, err)
	b, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{Title: "task b", ColumnID: &first.ID})
	require.NoError(t, err)

	pos1, pos2 := 1, 2
	doing := domain.TaskStatusInProgress
	err = env.taskSvc.Reorder(ctx, alice.ID, []ReorderItem{
		{ID: b.ID, Position: &pos1, BoardID: &board.ID},
		{ID: a.ID, Position: &pos2, Status: &doing, ColumnID: &second.ID},
		{ID: 424242, Position: &pos1}, // vanished task, skipped
	})
	require.NoError(t, err)

	gotB, err := env.tasks.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotB.Position)

	gotA, err := env.tasks.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, gotA.Position)
	assert.Equal(t, domain.TaskStatusInProgress, gotA.Status)
	require.NotNil(t, gotA.ColumnID)
	assert.Equal(t, second.ID, *gotA.ColumnID)

	// The broadcast names the board from the batch.
	var reordered *events.Event
	for _, e := range env.publisher.all() {
		if e.Type == events.TypeTasksReordered {
			ev := e
			reordered = &ev
		}
	}
	require.NotNil(t, reordered)
	assert.Equal(t, board.ID, reordered.Fields["boardId"])
}

func TestReorderWithoutBoardBroadcastsGenericRefresh(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")

	task, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{Title: "loose task"})
	require.NoError(t, err)

	pos := 5
	require.NoError(t, env.taskSvc.Reorder(ctx, alice.ID, []ReorderItem{{ID: task.ID, Position: &pos}}))

	all := env.publisher.all()
	last := all[len(all)-1]
	require.Equal(t, events.TypeTasksReordered, last.Type)
	assert.Equal(t, int64(-1), last.Fields["boardId"])
}

func TestDeleteTaskRemovesNotesAndBroadcastsTwice(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")

	task, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{Title: "with notes"})
	require.NoError(t, err)
	_, err = env.noteSvc.AddNote(ctx, alice.ID, task.ID, "remember this", true, nil)
	require.NoError(t, err)

	require.NoError(t, env.taskSvc.DeleteTask(ctx, alice.ID, task.ID))

	_, err = env.tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.Empty(t, env.m.notes)

	types := env.publisher.types()
	assert.Contains(t, types, events.TypeTaskDeleted)
	assert.Contains(t, types, events.TypeTaskDeletedBy)
}

func TestTaskAuthorization(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")
	bob := env.addUser("Bob", "bob@example.com")
	board, column := setupBoardWithColumn(t, env, alice.ID)

	boardTask, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{
		Title:    "on the board",
		ColumnID: &column.ID,
	})
	require.NoError(t, err)
	personal, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{Title: "personal task"})
	require.NoError(t, err)

	// Bob sees nothing before a share exists.
	_, err = env.taskSvc.GetTask(ctx, bob.ID, boardTask.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = env.taskSvc.GetTask(ctx, bob.ID, personal.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// With VIEW, Bob can read board tasks but not mutate them.
	_, err = env.boardSvc.ShareBoard(ctx, alice.ID, board.ID, bob.Email, domain.PermissionView)
	require.NoError(t, err)
	_, err = env.taskSvc.GetTask(ctx, bob.ID, boardTask.ID)
	assert.NoError(t, err)
	_, err = env.taskSvc.SetStatus(ctx, bob.ID, boardTask.ID, domain.TaskStatusDone)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	err = env.taskSvc.DeleteTask(ctx, bob.ID, boardTask.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Personal tasks stay invisible regardless of shares.
	_, err = env.taskSvc.GetTask(ctx, bob.ID, personal.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
