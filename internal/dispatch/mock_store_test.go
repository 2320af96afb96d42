package dispatch

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexusai/dispatch-api/internal/domain"
	"github.com/nexusai/dispatch-api/internal/generation"
	"github.com/nexusai/dispatch-api/internal/store"
)

// mockTaskStore is an in-memory store.TaskStore whose TryLock performs a
// real compare-and-swap under a mutex, so concurrent dispatch tests exercise
// the same at-most-once semantics the database gives us.
type mockTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
	logs  []*domain.TaskLogEntry

	// Optional error injection, applied before the default behavior.
	ListErr   error
	LockErr   error
	UpdateErr error
}

func newMockTaskStore() *mockTaskStore {
	return &mockTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *mockTaskStore) add(task *domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *task
	s.tasks[task.ID] = &copied
}

func (s *mockTaskStore) get(id uuid.UUID) *domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task, ok := s.tasks[id]; ok {
		copied := *task
		return &copied
	}
	return nil
}

func (s *mockTaskStore) logsFor(id uuid.UUID) []*domain.TaskLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []*domain.TaskLogEntry
	for _, entry := range s.logs {
		if entry.TaskID == id {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (s *mockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.add(task)
	return nil
}

func (s *mockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if task := s.get(id); task != nil {
		return task, nil
	}
	return nil, store.ErrTaskNotFound
}

func (s *mockTaskStore) ListPendingAuto(ctx context.Context, limit int) ([]*domain.Task, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []*domain.Task
	for _, task := range s.tasks {
		if task.Status == domain.TaskStatusPending && task.RunMode == domain.RunModeAuto {
			copied := *task
			tasks = append(tasks, &copied)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (s *mockTaskStore) TryLock(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.LockErr != nil {
		return false, s.LockErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.Status != domain.TaskStatusPending {
		return false, nil
	}
	task.Status = domain.TaskStatusProcessing
	task.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *mockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *mockTaskStore) ListStuck(ctx context.Context, olderThan time.Duration) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	var tasks []*domain.Task
	for _, task := range s.tasks {
		if task.Status == domain.TaskStatusProcessing && task.UpdatedAt.Before(cutoff) {
			copied := *task
			tasks = append(tasks, &copied)
		}
	}
	return tasks, nil
}

func (s *mockTaskStore) AppendLog(ctx context.Context, entry *domain.TaskLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	return nil
}

func (s *mockTaskStore) ListLogs(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskLogEntry, error) {
	return s.logsFor(taskID), nil
}

// mockWorkerStore is an in-memory store.WorkerStore.
type mockWorkerStore struct {
	workers map[string]*domain.WorkerProfile
	GetErr  error
}

func newMockWorkerStore(workers ...*domain.WorkerProfile) *mockWorkerStore {
	s := &mockWorkerStore{workers: make(map[string]*domain.WorkerProfile)}
	for _, worker := range workers {
		s.workers[worker.ID] = worker
	}
	return s
}

func (s *mockWorkerStore) GetByID(ctx context.Context, id string) (*domain.WorkerProfile, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	if worker, ok := s.workers[id]; ok {
		return worker, nil
	}
	return nil, store.ErrWorkerNotFound
}

func (s *mockWorkerStore) ListIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(s.workers))
	for id := range s.workers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// mockProfileStore is an in-memory store.ProfileStore.
type mockProfileStore struct {
	flags  map[uuid.UUID]bool
	GetErr error
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{flags: make(map[uuid.UUID]bool)}
}

func (s *mockProfileStore) AutoRunEnabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	if s.GetErr != nil {
		return false, s.GetErr
	}
	enabled, ok := s.flags[userID]
	if !ok {
		return false, store.ErrProfileNotFound
	}
	return enabled, nil
}

// mockGenerator is a canned generation.Generator.
type mockGenerator struct {
	completion *generation.Completion
	err        error

	mu      sync.Mutex
	prompts []string
}

func (g *mockGenerator) Generate(ctx context.Context, prompt string) (*generation.Completion, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}
	return g.completion, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
