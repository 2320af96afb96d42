package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusai/dispatch-api/internal/assign"
	"github.com/nexusai/dispatch-api/internal/domain"
	"github.com/nexusai/dispatch-api/internal/store"
)

// mockTaskStore records calls so tests can assert what was (not) written.
type mockTaskStore struct {
	store.TaskStore

	tasks map[uuid.UUID]*domain.Task
	logs  map[uuid.UUID][]*domain.TaskLogEntry

	createCalls int
	CreateErr   error
	UpdateErr   error
}

func newServiceMockTaskStore() *mockTaskStore {
	return &mockTaskStore{
		tasks: make(map[uuid.UUID]*domain.Task),
		logs:  make(map[uuid.UUID][]*domain.TaskLogEntry),
	}
}

func (s *mockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.createCalls++
	if s.CreateErr != nil {
		return s.CreateErr
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *mockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if task, ok := s.tasks[id]; ok {
		copied := *task
		return &copied, nil
	}
	return nil, store.ErrTaskNotFound
}

func (s *mockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *mockTaskStore) AppendLog(ctx context.Context, entry *domain.TaskLogEntry) error {
	s.logs[entry.TaskID] = append(s.logs[entry.TaskID], entry)
	return nil
}

func (s *mockTaskStore) ListLogs(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskLogEntry, error) {
	return s.logs[taskID], nil
}

// mockWorkerStore knows a fixed set of worker IDs.
type mockWorkerStore struct {
	ids map[string]bool
}

func newServiceMockWorkerStore(ids ...string) *mockWorkerStore {
	s := &mockWorkerStore{ids: make(map[string]bool)}
	for _, id := range ids {
		s.ids[id] = true
	}
	return s
}

func (s *mockWorkerStore) GetByID(ctx context.Context, id string) (*domain.WorkerProfile, error) {
	if s.ids[id] {
		return &domain.WorkerProfile{ID: id}, nil
	}
	return nil, store.ErrWorkerNotFound
}

func (s *mockWorkerStore) ListIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids, nil
}

type serviceFixture struct {
	tasks   *mockTaskStore
	workers *mockWorkerStore
	service TaskService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	tasks := newServiceMockTaskStore()
	workers := newServiceMockWorkerStore("alex", "bob", "charlie")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &serviceFixture{
		tasks:   tasks,
		workers: workers,
		service: NewTaskService(tasks, workers, assign.NewResolver(workers, logger), logger),
	}
}

func TestTaskService_CreateTask(t *testing.T) {
	t.Parallel()

	t.Run("explicit worker", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)

		task, err := f.service.CreateTask(context.Background(), CreateTaskInput{
			UserID:      uuid.New(),
			WorkerID:    "charlie",
			Title:       "Ship the release",
			Description: "Cut and tag v2",
		})
		require.NoError(t, err)

		assert.Equal(t, "charlie", task.WorkerID)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		assert.Equal(t, domain.RunModeAuto, task.RunMode)

		// The created task landed in the store with its audit entry.
		stored, err := f.tasks.GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, stored.ID)

		logs := f.tasks.logs[task.ID]
		require.Len(t, logs, 1)
		assert.Equal(t, "Task created", logs[0].Message)
	})

	t.Run("unknown explicit worker", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)

		task, err := f.service.CreateTask(context.Background(), CreateTaskInput{
			UserID:      uuid.New(),
			WorkerID:    "nobody",
			Title:       "Ship the release",
			Description: "Cut and tag v2",
		})
		assert.Nil(t, task)
		assert.ErrorIs(t, err, ErrInvalidWorker)
		assert.Zero(t, f.tasks.createCalls)
	})

	t.Run("template assignment", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)

		task, err := f.service.CreateTask(context.Background(), CreateTaskInput{
			UserID:      uuid.New(),
			Title:       "Landing page refresh",
			Description: "New hero section",
			Template:    "design",
		})
		require.NoError(t, err)
		assert.Equal(t, "bob", task.WorkerID)
	})

	t.Run("keyword assignment", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)

		task, err := f.service.CreateTask(context.Background(), CreateTaskInput{
			UserID:      uuid.New(),
			Title:       "Write a blog post",
			Description: "About AI trends",
		})
		require.NoError(t, err)
		assert.Equal(t, "alex", task.WorkerID)
	})

	t.Run("empty title rejected before any store write", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)

		task, err := f.service.CreateTask(context.Background(), CreateTaskInput{
			UserID:      uuid.New(),
			Title:       "   ",
			Description: "details",
		})
		assert.Nil(t, task)
		assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Zero(t, f.tasks.createCalls)
		assert.Empty(t, f.tasks.logs)
	})

	t.Run("store failure surfaces wrapped", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		f.tasks.CreateErr = store.ErrUnavailable

		_, err := f.service.CreateTask(context.Background(), CreateTaskInput{
			UserID:      uuid.New(),
			WorkerID:    "alex",
			Title:       "title",
			Description: "desc",
		})
		assert.ErrorIs(t, err, store.ErrUnavailable)
	})
}

func TestTaskService_GetTask(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	created, err := f.service.CreateTask(context.Background(), CreateTaskInput{
		UserID:      uuid.New(),
		WorkerID:    "alex",
		Title:       "title",
		Description: "desc",
	})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		task, err := f.service.GetTask(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, task.ID)
	})

	t.Run("not found", func(t *testing.T) {
		task, err := f.service.GetTask(context.Background(), uuid.New())
		assert.Nil(t, task)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_ListTaskLogs(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	created, err := f.service.CreateTask(context.Background(), CreateTaskInput{
		UserID:      uuid.New(),
		WorkerID:    "alex",
		Title:       "title",
		Description: "desc",
	})
	require.NoError(t, err)

	t.Run("returns entries for an existing task", func(t *testing.T) {
		entries, err := f.service.ListTaskLogs(context.Background(), created.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Task created", entries[0].Message)
	})

	t.Run("unknown task is not-found, not an empty list", func(t *testing.T) {
		entries, err := f.service.ListTaskLogs(context.Background(), uuid.New())
		assert.Nil(t, entries)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_CancelTask(t *testing.T) {
	t.Parallel()

	newStoredTask := func(t *testing.T, f *serviceFixture, status domain.TaskStatus) *domain.Task {
		t.Helper()

		task, err := f.service.CreateTask(context.Background(), CreateTaskInput{
			UserID:      uuid.New(),
			WorkerID:    "alex",
			Title:       "title",
			Description: "desc",
		})
		require.NoError(t, err)

		if status != domain.TaskStatusPending {
			stored, err := f.tasks.GetByID(context.Background(), task.ID)
			require.NoError(t, err)
			stored.Status = status
			require.NoError(t, f.tasks.Update(context.Background(), stored))
		}
		return task
	}

	t.Run("cancels a pending task", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		task := newStoredTask(t, f, domain.TaskStatusPending)

		cancelled, err := f.service.CancelTask(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCancelled, cancelled.Status)

		stored, err := f.tasks.GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCancelled, stored.Status)

		logs := f.tasks.logs[task.ID]
		require.Len(t, logs, 2)
		assert.Equal(t, "Task cancelled", logs[1].Message)
	})

	t.Run("cancels a processing task", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		task := newStoredTask(t, f, domain.TaskStatusProcessing)

		cancelled, err := f.service.CancelTask(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCancelled, cancelled.Status)
	})

	t.Run("terminal task cannot be cancelled", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		task := newStoredTask(t, f, domain.TaskStatusDone)

		cancelled, err := f.service.CancelTask(context.Background(), task.ID)
		assert.Nil(t, cancelled)
		assert.ErrorIs(t, err, domain.ErrTaskNotCancellable)

		stored, err := f.tasks.GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusDone, stored.Status)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)

		_, err := f.service.CancelTask(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}
