package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanlab/taskboard/internal/domain"
)

func TestNoteVisibility(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")
	bob := env.addUser("Bob", "bob@example.com")
	carol := env.addUser("Carol", "carol@example.com")

	board, column := setupBoardWithColumn(t, env, alice.ID)
	for _, u := range []*domain.User{bob, carol} {
		_, err := env.boardSvc.ShareBoard(ctx, alice.ID, board.ID, u.Email, domain.PermissionEdit)
		require.NoError(t, err)
	}
	task, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{
		Title:    "discussed task",
		ColumnID: &column.ID,
	})
	require.NoError(t, err)

	_, err = env.noteSvc.AddNote(ctx, alice.ID, task.ID, "public note", true, nil)
	require.NoError(t, err)
	_, err = env.noteSvc.AddNote(ctx, alice.ID, task.ID, "for bob only", false, &bob.ID)
	require.NoError(t, err)

	// Author sees both, recipient sees both, a third member sees only
	// the public one.
	aliceNotes, err := env.noteSvc.ListNotes(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.Len(t, aliceNotes, 2)

	bobNotes, err := env.noteSvc.ListNotes(ctx, bob.ID, task.ID)
	require.NoError(t, err)
	assert.Len(t, bobNotes, 2)

	carolNotes, err := env.noteSvc.ListNotes(ctx, carol.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, carolNotes, 1)
	assert.Equal(t, "public note", carolNotes[0].Content)
}

func TestNoteMutationsAreAuthorOnly(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")
	bob := env.addUser("Bob", "bob@example.com")

	board, column := setupBoardWithColumn(t, env, alice.ID)
	_, err := env.boardSvc.ShareBoard(ctx, alice.ID, board.ID, bob.Email, domain.PermissionEdit)
	require.NoError(t, err)
	task, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{
		Title:    "discussed task",
		ColumnID: &column.ID,
	})
	require.NoError(t, err)

	note, err := env.noteSvc.AddNote(ctx, alice.ID, task.ID, "original", true, nil)
	require.NoError(t, err)

	// Even an editor cannot touch someone else's note.
	_, err = env.noteSvc.UpdateNote(ctx, bob.ID, note.ID, "defaced", true, nil)
	assert.ErrorIs(t, err, ErrNotNoteAuthor)
	err = env.noteSvc.DeleteNote(ctx, bob.ID, note.ID)
	assert.ErrorIs(t, err, ErrNotNoteAuthor)

	updated, err := env.noteSvc.UpdateNote(ctx, alice.ID, note.ID, "revised", false, &bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "revised", updated.Content)
	assert.False(t, updated.IsPublic)

	require.NoError(t, env.noteSvc.DeleteNote(ctx, alice.ID, note.ID))
	assert.Empty(t, env.m.notes)
}

func TestMarkViewedAndCountUnread(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")
	bob := env.addUser("Bob", "bob@example.com")

	board, column := setupBoardWithColumn(t, env, alice.ID)
	_, err := env.boardSvc.ShareBoard(ctx, alice.ID, board.ID, bob.Email, domain.PermissionView)
	require.NoError(t, err)
	task, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{
		Title:    "discussed task",
		ColumnID: &column.ID,
	})
	require.NoError(t, err)

	first, err := env.noteSvc.AddNote(ctx, alice.ID, task.ID, "first", true, nil)
	require.NoError(t, err)
	_, err = env.noteSvc.AddNote(ctx, alice.ID, task.ID, "second", true, nil)
	require.NoError(t, err)

	// Authors have no unread count on their own notes.
	count, err := env.noteSvc.CountUnread(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = env.noteSvc.CountUnread(ctx, bob.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, env.noteSvc.MarkViewed(ctx, bob.ID, first.ID))
	// Marking twice is harmless.
	require.NoError(t, env.noteSvc.MarkViewed(ctx, bob.ID, first.ID))

	count, err = env.noteSvc.CountUnread(ctx, bob.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := env.notes.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, got.ViewedBy)
}

func TestMarkViewedDeniedForInvisibleNote(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser("Alice", "alice@example.com")
	bob := env.addUser("Bob", "bob@example.com")
	carol := env.addUser("Carol", "carol@example.com")

	board, column := setupBoardWithColumn(t, env, alice.ID)
	for _, u := range []*domain.User{bob, carol} {
		_, err := env.boardSvc.ShareBoard(ctx, alice.ID, board.ID, u.Email, domain.PermissionView)
		require.NoError(t, err)
	}
	task, err := env.taskSvc.CreateTask(ctx, alice.ID, CreateTaskInput{
		Title:    "discussed task",
		ColumnID: &column.ID,
	})
	require.NoError(t, err)

	private, err := env.noteSvc.AddNote(ctx, alice.ID, task.ID, "for bob", false, &bob.ID)
	require.NoError(t, err)

	err = env.noteSvc.MarkViewed(ctx, carol.ID, private.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
