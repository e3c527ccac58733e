package lifecycle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"devbot/internal/apperr"
	"devbot/internal/models"
	"devbot/internal/store"
)

const (
	guild        models.Snowflake = 1180000000000000001
	tasksChannel models.Snowflake = 500
	userOne      models.Snowflake = 1001
	userTwo      models.Snowflake = 1002
)

type fakeSurface struct {
	mu            sync.Mutex
	nextID        models.Snowflake
	cards         map[int]models.MessageRef
	refreshed     []int
	threadsOpened int
	controls      []models.Snowflake
	threadPosts   map[models.Snowflake][]string
	closed        []models.Snowflake
	boards        map[models.MessageRef]Board
	deleted       []models.MessageRef
	missing       map[models.MessageRef]bool
	postErr       error
	// beforeThread runs inside StartThread, outside the lock.
	beforeThread func(task models.Task)
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		nextID:      9000,
		cards:       map[int]models.MessageRef{},
		threadPosts: map[models.Snowflake][]string{},
		boards:      map[models.MessageRef]Board{},
		missing:     map[models.MessageRef]bool{},
	}
}

func (f *fakeSurface) id() models.Snowflake {
	f.nextID++
	return f.nextID
}

func (f *fakeSurface) PostTaskCard(_ context.Context, channelID models.Snowflake, task models.Task) (models.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return models.MessageRef{}, f.postErr
	}
	ref := models.MessageRef{ChannelID: channelID, MessageID: f.id()}
	f.cards[task.ID] = ref
	return ref, nil
}

func (f *fakeSurface) RefreshTaskCard(_ context.Context, task models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, task.ID)
	return nil
}

func (f *fakeSurface) StartThread(_ context.Context, task models.Task) (models.Snowflake, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[task.Message()] {
		return 0, fmt.Errorf("fetch message: %w", apperr.ErrNotExist)
	}
	f.threadsOpened++
	id := f.id()
	hook := f.beforeThread
	f.mu.Unlock()
	if hook != nil {
		hook(task)
	}
	f.mu.Lock()
	return id, nil
}

func (f *fakeSurface) PostThreadControls(_ context.Context, threadID models.Snowflake, _ models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controls = append(f.controls, threadID)
	return nil
}

func (f *fakeSurface) PostToThread(_ context.Context, threadID models.Snowflake, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threadPosts[threadID] = append(f.threadPosts[threadID], content)
	return nil
}

func (f *fakeSurface) CloseThread(_ context.Context, threadID models.Snowflake) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, threadID)
	return nil
}

func (f *fakeSurface) PostBoard(_ context.Context, channelID models.Snowflake, board Board) (models.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := models.MessageRef{ChannelID: channelID, MessageID: f.id()}
	f.boards[ref] = board
	return ref, nil
}

func (f *fakeSurface) RefreshBoard(_ context.Context, ref models.MessageRef, board Board) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[ref] {
		return apperr.ErrNotExist
	}
	f.boards[ref] = board
	return nil
}

func (f *fakeSurface) DeleteMessage(_ context.Context, ref models.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[ref] {
		return apperr.ErrNotExist
	}
	f.deleted = append(f.deleted, ref)
	delete(f.boards, ref)
	return nil
}

type fakeMembers map[models.Snowflake]models.Member

func (m fakeMembers) Member(_ context.Context, _ models.Snowflake, userID models.Snowflake) (models.Member, error) {
	member, ok := m[userID]
	if !ok {
		return models.Member{}, apperr.ErrNotExist
	}
	return member, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (a *fakeAudit) Record(_ context.Context, _ models.Snowflake, entry models.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *fakeAudit) titles() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Title)
	}
	return out
}

type harness struct {
	engine  *Engine
	store   *store.FileStore
	surface *fakeSurface
	audit   *fakeAudit
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.NewFileStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	channel := tasksChannel
	if _, err := st.UpdateConfig(context.Background(), guild, store.ConfigUpdate{TasksChannel: &channel}); err != nil {
		t.Fatalf("seed config: %v", err)
	}
	h := &harness{
		store:   st,
		surface: newFakeSurface(),
		audit:   &fakeAudit{},
	}
	h.engine = New(Deps{
		Tasks:   st,
		Configs: st,
		Surface: h.surface,
		Members: fakeMembers{
			userOne: {ID: userOne, Username: "one"},
			userTwo: {ID: userTwo, Username: "two"},
		},
		Audit:  h.audit,
		Logger: logger,
	})
	return h
}

func (h *harness) create(t *testing.T, title string) models.Task {
	t.Helper()
	task, err := h.engine.Create(context.Background(), models.Actor{UserID: userOne}, guild, Draft{Title: title})
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return task
}
