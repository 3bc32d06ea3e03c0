package events

import (
	"encoding/json"
	"time"
)

// Event type constants. The INIT event is sent once to each subscriber as
// soon as it registers; every other type is broadcast after a mutation.
const (
	TypeInit           = "INIT"
	TypeTaskCreated    = "TASK_CREATED"
	TypeTaskUpdated    = "TASK_UPDATED"
	TypeTaskDeleted    = "TASK_DELETED"
	TypeTaskDeletedBy  = "TASK_DELETED_BY"
	TypeTasksReordered = "TASKS_REORDERED"
	TypeColumnCreated  = "COLUMN_CREATED"
	TypeColumnUpdated  = "COLUMN_UPDATED"
	TypeColumnDeleted  = "COLUMN_DELETED"
	TypeBoardUpdated   = "BOARD_UPDATED"
	TypeBoardShared    = "BOARD_SHARED"
	TypeBoardUnshared  = "BOARD_UNSHARED"
	TypeNoteCreated    = "NOTE_CREATED"
	TypeNoteUpdated    = "NOTE_UPDATED"
	TypeNoteDeleted    = "NOTE_DELETED"
)

// Event is a single realtime notification. Type identifies the shape of
// Fields; the two are flattened into one JSON object on the wire, so
// {Type: "TASK_DELETED", Fields: {"id": 7}} encodes as
// {"type":"TASK_DELETED","id":7}.
type Event struct {
	Type   string
	Fields map[string]any
}

// MarshalJSON flattens Type into the field map.
func (e Event) MarshalJSON() ([]byte, error) {
	payload := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		payload[k] = v
	}
	payload["type"] = e.Type
	return json.Marshal(payload)
}

// NewInit builds the greeting event pushed to a fresh subscriber.
func NewInit() Event {
	return Event{
		Type:   TypeInit,
		Fields: map[string]any{"ts": time.Now().UTC().Format(time.RFC3339)},
	}
}

// NewTaskEvent builds a TASK_CREATED or TASK_UPDATED event carrying the
// full task payload and the display name of the acting user.
func NewTaskEvent(eventType string, task any, actor string) Event {
	return Event{
		Type:   eventType,
		Fields: map[string]any{"task": task, "by": actor},
	}
}

// NewTaskDeleted builds the bare deletion event carrying only the task id.
func NewTaskDeleted(taskID int64) Event {
	return Event{
		Type:   TypeTaskDeleted,
		Fields: map[string]any{"id": taskID},
	}
}

// NewTaskDeletedBy builds the companion deletion event that names the actor.
func NewTaskDeletedBy(taskID int64, actor string) Event {
	return Event{
		Type:   TypeTaskDeletedBy,
		Fields: map[string]any{"id": taskID, "by": actor},
	}
}

// NewTasksReordered signals that positions within boardID changed and
// clients should refetch. A boardID of -1 means the reorder touched tasks
// outside any board.
func NewTasksReordered(boardID int64) Event {
	return Event{
		Type:   TypeTasksReordered,
		Fields: map[string]any{"boardId": boardID},
	}
}

// NewColumnEvent builds a COLUMN_CREATED or COLUMN_UPDATED event.
func NewColumnEvent(eventType string, column any, boardID int64) Event {
	return Event{
		Type:   eventType,
		Fields: map[string]any{"column": column, "boardId": boardID},
	}
}

// NewColumnDeleted builds the column deletion event.
func NewColumnDeleted(columnID, boardID int64) Event {
	return Event{
		Type:   TypeColumnDeleted,
		Fields: map[string]any{"columnId": columnID, "boardId": boardID},
	}
}

// NewBoardUpdated builds the board update event.
func NewBoardUpdated(board any, actor string) Event {
	return Event{
		Type:   TypeBoardUpdated,
		Fields: map[string]any{"board": board, "by": actor},
	}
}

// NewBoardShared announces a new or updated share. sharedWith and actor
// are display names, not ids.
func NewBoardShared(board any, sharedWith, actor string) Event {
	return Event{
		Type:   TypeBoardShared,
		Fields: map[string]any{"board": board, "sharedWith": sharedWith, "by": actor},
	}
}

// NewBoardUnshared announces a revoked share.
func NewBoardUnshared(boardID int64, unsharedFrom, actor string) Event {
	return Event{
		Type:   TypeBoardUnshared,
		Fields: map[string]any{"boardId": boardID, "unsharedFrom": unsharedFrom, "by": actor},
	}
}

// NewNoteEvent builds a NOTE_CREATED or NOTE_UPDATED event.
func NewNoteEvent(eventType string, note any, taskID int64, boardID *int64) Event {
	return Event{
		Type:   eventType,
		Fields: map[string]any{"note": note, "taskId": taskID, "boardId": boardID},
	}
}

// NewNoteDeleted builds the note deletion event.
func NewNoteDeleted(noteID, taskID int64, boardID *int64) Event {
	return Event{
		Type:   TypeNoteDeleted,
		Fields: map[string]any{"id": noteID, "taskId": taskID, "boardId": boardID},
	}
}
