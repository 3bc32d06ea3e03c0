package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/events"
	"github.com/kanbanlab/taskboard/internal/store"
)

// memStore is a shared in-memory backing for the store fakes. The fakes
// return copies so a service that forgets to call Update is caught.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	boards  map[int64]*domain.Board
	columns map[int64]*domain.Column
	tasks   map[int64]*domain.Task
	shares  map[int64]*domain.Share
	notes   map[int64]*domain.Note
	users   map[int64]*domain.User
	views   map[int64]map[int64]bool
}

func newMemStore() *memStore {
	return &memStore{
		boards:  make(map[int64]*domain.Board),
		columns: make(map[int64]*domain.Column),
		tasks:   make(map[int64]*domain.Task),
		shares:  make(map[int64]*domain.Share),
		notes:   make(map[int64]*domain.Note),
		users:   make(map[int64]*domain.User),
		views:   make(map[int64]map[int64]bool),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// --- board store fake ---

type fakeBoardStore struct{ m *memStore }

func (f *fakeBoardStore) Create(_ context.Context, b *domain.Board) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	b.ID = f.m.id()
	cp := *b
	f.m.boards[b.ID] = &cp
	return nil
}

func (f *fakeBoardStore) GetByID(_ context.Context, id int64) (*domain.Board, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	b, ok := f.m.boards[id]
	if !ok {
		return nil, store.ErrBoardNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBoardStore) ListByOwner(_ context.Context, ownerID int64) ([]*domain.Board, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []*domain.Board
	for _, b := range f.m.boards {
		if b.OwnerID == ownerID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeBoardStore) ListSharedWith(_ context.Context, userID int64) ([]*domain.Board, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []*domain.Board
	for _, sh := range f.m.shares {
		if sh.SharedWithID != userID {
			continue
		}
		if b, ok := f.m.boards[sh.BoardID]; ok {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeBoardStore) Update(_ context.Context, b *domain.Board) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.boards[b.ID]; !ok {
		return store.ErrBoardNotFound
	}
	cp := *b
	f.m.boards[b.ID] = &cp
	return nil
}

func (f *fakeBoardStore) Delete(_ context.Context, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.boards[id]; !ok {
		return store.ErrBoardNotFound
	}
	delete(f.m.boards, id)
	return nil
}

func (f *fakeBoardStore) WithTx(*sql.Tx) store.BoardStore { return f }

// --- column store fake ---

type fakeColumnStore struct{ m *memStore }

func (f *fakeColumnStore) Create(_ context.Context, c *domain.Column) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	c.ID = f.m.id()
	cp := *c
	f.m.columns[c.ID] = &cp
	return nil
}

func (f *fakeColumnStore) GetByID(_ context.Context, id int64) (*domain.Column, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	c, ok := f.m.columns[id]
	if !ok {
		return nil, store.ErrColumnNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeColumnStore) ListByBoard(_ context.Context, boardID int64) ([]*domain.Column, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []*domain.Column
	for _, c := range f.m.columns {
		if c.BoardID == boardID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeColumnStore) Update(_ context.Context, c *domain.Column) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.columns[c.ID]; !ok {
		return store.ErrColumnNotFound
	}
	cp := *c
	f.m.columns[c.ID] = &cp
	return nil
}

func (f *fakeColumnStore) Delete(_ context.Context, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.columns[id]; !ok {
		return store.ErrColumnNotFound
	}
	delete(f.m.columns, id)
	return nil
}

func (f *fakeColumnStore) DeleteByBoard(_ context.Context, boardID int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for id, c := range f.m.columns {
		if c.BoardID == boardID {
			delete(f.m.columns, id)
		}
	}
	return nil
}

func (f *fakeColumnStore) WithTx(*sql.Tx) store.ColumnStore { return f }

// --- task store fake ---

type fakeTaskStore struct{ m *memStore }

func (f *fakeTaskStore) Create(_ context.Context, t *domain.Task) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	t.ID = f.m.id()
	cp := *t
	f.m.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	t, ok := f.m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskStore) ListByBoard(_ context.Context, boardID int64) ([]*domain.Task, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []*domain.Task
	for _, t := range f.m.tasks {
		if t.BoardID != nil && *t.BoardID == boardID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeTaskStore) ListByUser(_ context.Context, userID int64) ([]*domain.Task, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []*domain.Task
	for _, t := range f.m.tasks {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (f *fakeTaskStore) Update(_ context.Context, t *domain.Task) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.tasks[t.ID]; !ok {
		return store.ErrTaskNotFound
	}
	cp := *t
	f.m.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(f.m.tasks, id)
	return nil
}

func (f *fakeTaskStore) DeleteByBoard(_ context.Context, boardID int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for id, t := range f.m.tasks {
		if t.BoardID != nil && *t.BoardID == boardID {
			delete(f.m.tasks, id)
		}
	}
	return nil
}

func (f *fakeTaskStore) DeleteByColumn(_ context.Context, columnID int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for id, t := range f.m.tasks {
		if t.ColumnID != nil && *t.ColumnID == columnID {
			delete(f.m.tasks, id)
		}
	}
	return nil
}

func (f *fakeTaskStore) MaxPositionInColumn(_ context.Context, columnID int64) (int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	max := 0
	for _, t := range f.m.tasks {
		if t.ColumnID != nil && *t.ColumnID == columnID && t.Position > max {
			max = t.Position
		}
	}
	return max, nil
}

func (f *fakeTaskStore) MaxPositionForUserStatus(_ context.Context, userID int64, status domain.TaskStatus) (int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	max := 0
	for _, t := range f.m.tasks {
		if t.UserID == userID && t.Status == status && t.ColumnID == nil && t.Position > max {
			max = t.Position
		}
	}
	return max, nil
}

func (f *fakeTaskStore) WithTx(*sql.Tx) store.TaskStore { return f }

// --- share store fake ---

type fakeShareStore struct{ m *memStore }

func (f *fakeShareStore) Create(_ context.Context, s *domain.Share) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, existing := range f.m.shares {
		if existing.BoardID == s.BoardID && existing.SharedWithID == s.SharedWithID {
			return store.ErrShareExists
		}
	}
	s.ID = f.m.id()
	cp := *s
	f.m.shares[s.ID] = &cp
	return nil
}

func (f *fakeShareStore) GetByBoardAndUser(_ context.Context, boardID, userID int64) (*domain.Share, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, s := range f.m.shares {
		if s.BoardID == boardID && s.SharedWithID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, store.ErrShareNotFound
}

func (f *fakeShareStore) ListByBoard(_ context.Context, boardID int64) ([]*domain.Share, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []*domain.Share
	for _, s := range f.m.shares {
		if s.BoardID == boardID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeShareStore) UpdatePermission(_ context.Context, id int64, permission domain.SharePermission) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	s, ok := f.m.shares[id]
	if !ok {
		return store.ErrShareNotFound
	}
	s.Permission = permission
	return nil
}

func (f *fakeShareStore) DeleteByBoardAndUser(_ context.Context, boardID, userID int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for id, s := range f.m.shares {
		if s.BoardID == boardID && s.SharedWithID == userID {
			delete(f.m.shares, id)
			return nil
		}
	}
	return store.ErrShareNotFound
}

func (f *fakeShareStore) DeleteByBoard(_ context.Context, boardID int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for id, s := range f.m.shares {
		if s.BoardID == boardID {
			delete(f.m.shares, id)
		}
	}
	return nil
}

func (f *fakeShareStore) WithTx(*sql.Tx) store.ShareStore { return f }

// --- note store fake ---

type fakeNoteStore struct{ m *memStore }

func (f *fakeNoteStore) Create(_ context.Context, n *domain.Note) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	n.ID = f.m.id()
	cp := *n
	f.m.notes[n.ID] = &cp
	return nil
}

func (f *fakeNoteStore) GetByID(_ context.Context, id int64) (*domain.Note, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	n, ok := f.m.notes[id]
	if !ok {
		return nil, store.ErrNoteNotFound
	}
	cp := *n
	cp.ViewedBy = f.viewersLocked(id)
	return &cp, nil
}

func (f *fakeNoteStore) ListVisible(_ context.Context, taskID, userID int64) ([]*domain.Note, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []*domain.Note
	for _, n := range f.m.notes {
		if n.TaskID != taskID || !n.VisibleTo(userID) {
			continue
		}
		cp := *n
		cp.ViewedBy = f.viewersLocked(n.ID)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeNoteStore) Update(_ context.Context, n *domain.Note) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.notes[n.ID]; !ok {
		return store.ErrNoteNotFound
	}
	cp := *n
	f.m.notes[n.ID] = &cp
	return nil
}

func (f *fakeNoteStore) MarkViewed(_ context.Context, noteID, userID int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.notes[noteID]; !ok {
		return store.ErrNoteNotFound
	}
	if f.m.views[noteID] == nil {
		f.m.views[noteID] = make(map[int64]bool)
	}
	f.m.views[noteID][userID] = true
	return nil
}

func (f *fakeNoteStore) CountUnread(_ context.Context, taskID, userID int64) (int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var count int64
	for _, n := range f.m.notes {
		if n.TaskID != taskID || n.AuthorID == userID || !n.VisibleTo(userID) {
			continue
		}
		if !f.m.views[n.ID][userID] {
			count++
		}
	}
	return count, nil
}

func (f *fakeNoteStore) Delete(_ context.Context, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.notes[id]; !ok {
		return store.ErrNoteNotFound
	}
	delete(f.m.notes, id)
	delete(f.m.views, id)
	return nil
}

func (f *fakeNoteStore) DeleteByTask(_ context.Context, taskID int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for id, n := range f.m.notes {
		if n.TaskID == taskID {
			delete(f.m.notes, id)
			delete(f.m.views, id)
		}
	}
	return nil
}

func (f *fakeNoteStore) DeleteByBoard(_ context.Context, boardID int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for id, n := range f.m.notes {
		t, ok := f.m.tasks[n.TaskID]
		if ok && t.BoardID != nil && *t.BoardID == boardID {
			delete(f.m.notes, id)
			delete(f.m.views, id)
		}
	}
	return nil
}

func (f *fakeNoteStore) DeleteByColumn(_ context.Context, columnID int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for id, n := range f.m.notes {
		t, ok := f.m.tasks[n.TaskID]
		if ok && t.ColumnID != nil && *t.ColumnID == columnID {
			delete(f.m.notes, id)
			delete(f.m.views, id)
		}
	}
	return nil
}

func (f *fakeNoteStore) WithTx(*sql.Tx) store.NoteStore { return f }

func (f *fakeNoteStore) viewersLocked(noteID int64) []int64 {
	var out []int64
	for userID := range f.m.views[noteID] {
		out = append(out, userID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// --- user store fake ---

type fakeUserStore struct{ m *memStore }

func (f *fakeUserStore) Create(_ context.Context, u *domain.User) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, existing := range f.m.users {
		if existing.Email == u.Email {
			return store.ErrEmailExists
		}
	}
	u.ID = f.m.id()
	cp := *u
	f.m.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	u, ok := f.m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, u := range f.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) WithTx(*sql.Tx) store.UserStore { return f }

// --- transaction runner fake ---

// fakeRunner executes the function directly; the fakes ignore the nil tx.
type fakeRunner struct{}

func (fakeRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// --- event publisher fake ---

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *fakePublisher) types() []string {
	var out []string
	for _, e := range p.all() {
		out = append(out, e.Type)
	}
	return out
}

// --- test environment ---

type testEnv struct {
	m         *memStore
	boards    *fakeBoardStore
	columns   *fakeColumnStore
	tasks     *fakeTaskStore
	shares    *fakeShareStore
	notes     *fakeNoteStore
	users     *fakeUserStore
	publisher *fakePublisher

	boardSvc BoardService
	taskSvc  TaskService
	noteSvc  NoteService
}

func newTestEnv() *testEnv {
	m := newMemStore()
	env := &testEnv{
		m:         m,
		boards:    &fakeBoardStore{m: m},
		columns:   &fakeColumnStore{m: m},
		tasks:     &fakeTaskStore{m: m},
		shares:    &fakeShareStore{m: m},
		notes:     &fakeNoteStore{m: m},
		users:     &fakeUserStore{m: m},
		publisher: &fakePublisher{},
	}

	perms := NewPermissionEvaluator(env.shares)
	runner := fakeRunner{}

	var err error
	env.boardSvc, err = NewBoardService(
		env.boards, env.columns, env.tasks, env.shares, env.notes, env.users,
		runner, perms, NewOrderingEngine(), env.publisher, nil, nil,
	)
	if err != nil {
		panic(err)
	}
	env.taskSvc, err = NewTaskService(
		env.tasks, env.boards, env.columns, env.notes, env.users,
		runner, perms, NewOrderingEngine(), env.publisher, nil,
	)
	if err != nil {
		panic(err)
	}
	env.noteSvc, err = NewNoteService(
		env.notes, env.tasks, env.boards,
		runner, perms, env.publisher, nil,
	)
	if err != nil {
		panic(err)
	}
	return env
}

func (env *testEnv) addUser(name, email string) *domain.User {
	u := &domain.User{Name: name, Email: email, HashedPassword: "x"}
	if err := env.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}
