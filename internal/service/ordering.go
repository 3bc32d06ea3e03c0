package service

import (
	"sync"

	"github.com/kanbanlab/taskboard/internal/domain"
)

// orderScope identifies one position sequence. A task is ordered either
// within its column or, for tasks outside any board, within the
// (user, status) pair. Column ordinals form their own sequence per board.
// Exactly one of the three shapes is populated.
type orderScope struct {
	boardID  int64
	columnID int64
	userID   int64
	status   domain.TaskStatus
}

func boardScope(boardID int64) orderScope {
	return orderScope{boardID: boardID}
}

func columnScope(columnID int64) orderScope {
	return orderScope{columnID: columnID}
}

func userStatusScope(userID int64, status domain.TaskStatus) orderScope {
	return orderScope{userID: userID, status: status}
}

// OrderingEngine serializes position assignment per scope. Reading the
// current maximum position and writing max+1 is not atomic at the store
// level, so every insert into a scope runs under that scope's mutex.
// Scopes are independent; inserts into different columns never contend.
type OrderingEngine struct {
	mu     sync.Mutex
	scopes map[orderScope]*sync.Mutex
}

// NewOrderingEngine creates an engine with no scopes yet. Scope mutexes
// are created lazily on first use and kept for the process lifetime.
func NewOrderingEngine() *OrderingEngine {
	return &OrderingEngine{scopes: make(map[orderScope]*sync.Mutex)}
}

func (e *OrderingEngine) lockFor(scope orderScope) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.scopes[scope]
	if !ok {
		m = &sync.Mutex{}
		e.scopes[scope] = m
	}
	return m
}

// InBoardScope runs fn while holding the mutex for the board's column
// ordinal sequence.
func (e *OrderingEngine) InBoardScope(boardID int64, fn func() error) error {
	m := e.lockFor(boardScope(boardID))
	m.Lock()
	defer m.Unlock()
	return fn()
}

// InColumnScope runs fn while holding the mutex for the column's position
// sequence.
func (e *OrderingEngine) InColumnScope(columnID int64, fn func() error) error {
	m := e.lockFor(columnScope(columnID))
	m.Lock()
	defer m.Unlock()
	return fn()
}

// InUserStatusScope runs fn while holding the mutex for the legacy
// (user, status) position sequence.
func (e *OrderingEngine) InUserStatusScope(userID int64, status domain.TaskStatus, fn func() error) error {
	m := e.lockFor(userStatusScope(userID, status))
	m.Lock()
	defer m.Unlock()
	return fn()
}
