package domain

import (
	"fmt"
	"time"
)

// Note-specific validation errors, all wrapping ErrValidation.
var (
	// ErrNoteContentEmpty is returned when a note's content is empty.
	ErrNoteContentEmpty = fmt.Errorf("%w: note content cannot be empty", ErrValidation)

	// ErrNoteContentLength is returned when a note's content exceeds 1000 characters.
	ErrNoteContentLength = fmt.Errorf("%w: note content must be at most 1000 characters", ErrValidation)

	// ErrNoteTaskEmpty is returned when a note does not reference a task.
	ErrNoteTaskEmpty = fmt.Errorf("%w: note task cannot be empty", ErrValidation)

	// ErrNoteAuthorEmpty is returned when a note has no author.
	ErrNoteAuthorEmpty = fmt.Errorf("%w: note author cannot be empty", ErrValidation)
)

// Note is a comment on a task. A private note is addressed to a single
// recipient; a public note is visible to everyone with access to the task.
// ViewedBy records which users have opened the note.
type Note struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	AuthorID    int64     `json:"author_id"`
	Content     string    `json:"content"`
	IsPublic    bool      `json:"is_public"`
	RecipientID *int64    `json:"recipient_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ViewedBy    []int64   `json:"viewed_by,omitempty"`
}

// NewNote creates a new Note on the given task. recipientID is only honored
// for private notes. Returns an error if validation fails.
func NewNote(taskID, authorID int64, content string, isPublic bool, recipientID *int64) (*Note, error) {
	note := &Note{
		TaskID:    taskID,
		AuthorID:  authorID,
		Content:   content,
		IsPublic:  isPublic,
		CreatedAt: time.Now().UTC(),
	}
	if !isPublic {
		note.RecipientID = recipientID
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}

	return note, nil
}

// Validate checks if the Note has valid data.
func (n *Note) Validate() error {
	if n.TaskID == 0 {
		return ErrNoteTaskEmpty
	}

	if n.AuthorID == 0 {
		return ErrNoteAuthorEmpty
	}

	if n.Content == "" {
		return ErrNoteContentEmpty
	}

	if len(n.Content) > 1000 {
		return ErrNoteContentLength
	}

	return nil
}

// VisibleTo reports whether the given user may see this note: public notes
// are visible to everyone, private notes to the author and the recipient.
func (n *Note) VisibleTo(userID int64) bool {
	if n.IsPublic {
		return true
	}
	if n.AuthorID == userID {
		return true
	}
	return n.RecipientID != nil && *n.RecipientID == userID
}

// ViewedByUser reports whether the given user has already viewed this note.
func (n *Note) ViewedByUser(userID int64) bool {
	for _, id := range n.ViewedBy {
		if id == userID {
			return true
		}
	}
	return false
}
