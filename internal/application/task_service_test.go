package application

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceitask/taskboard/internal/domain/entity"
	"github.com/ceitask/taskboard/internal/domain/repository"
)

type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*entity.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[int64]*entity.Task{}}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now()
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) ListByUsername(_ context.Context, username string) ([]*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Task
	for _, t := range r.tasks {
		if t.Username == username {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TargetDatetime == nil && out[j].TargetDatetime == nil {
			return out[i].ID > out[j].ID
		}
		return repository.NullsLastDesc(out[i].TargetDatetime, out[j].TargetDatetime)
	})
	return out, nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		t.Status = status
	}
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

func newTestTaskService() (*TaskService, *fakeTaskRepo) {
	repo := newFakeTaskRepo()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewTaskService(repo, logger, nil, ""), repo
}

func TestCreateTask_DefaultsToTodo(t *testing.T) {
	svc, _ := newTestTaskService()

	task, err := svc.Create(context.Background(), "ab", "buy milk", nil, "")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusTodo, task.Status)
	assert.Equal(t, "buy milk", task.Task)
	assert.NotZero(t, task.ID)
}

func TestCreateTask_TrimsText(t *testing.T) {
	svc, _ := newTestTaskService()

	task, err := svc.Create(context.Background(), "ab", "  write report  ", nil, entity.StatusDoing)
	require.NoError(t, err)
	assert.Equal(t, "write report", task.Task)
	assert.Equal(t, entity.StatusDoing, task.Status)
}

func TestCreateTask_EmptyText(t *testing.T) {
	svc, repo := newTestTaskService()

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := svc.Create(context.Background(), "ab", text, nil, "")
		assert.ErrorIs(t, err, ErrEmptyTask, "text %q", text)
	}
	assert.Empty(t, repo.tasks)
}

func TestCreateTask_InvalidStatus(t *testing.T) {
	svc, _ := newTestTaskService()

	for _, status := range []string{"todo", "DONE", "Archived"} {
		_, err := svc.Create(context.Background(), "ab", "x", nil, status)
		assert.ErrorIs(t, err, ErrInvalidStatus, "status %q", status)
	}
}

func TestListTasks_OrderedByDeadlineDescNullsLast(t *testing.T) {
	svc, _ := newTestTaskService()
	ctx := context.Background()

	early := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, "ab", "no deadline", nil, "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "ab", "early", &early, "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "ab", "late", &late, "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "someone-else", "not mine", &late, "")
	require.NoError(t, err)

	got, err := svc.List(ctx, "ab")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "late", got[0].Task)
	assert.Equal(t, "early", got[1].Task)
	assert.Equal(t, "no deadline", got[2].Task)
}

func TestUpdateStatus(t *testing.T) {
	svc, repo := newTestTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "ab", "x", nil, "")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, task.ID, entity.StatusDone))
	assert.Equal(t, entity.StatusDone, repo.tasks[task.ID].Status)

	// Done back to Todo is allowed.
	require.NoError(t, svc.UpdateStatus(ctx, task.ID, entity.StatusTodo))
	assert.Equal(t, entity.StatusTodo, repo.tasks[task.ID].Status)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, task.ID, "Later"), ErrInvalidStatus)
}

func TestUpdateStatus_MissingIDSucceeds(t *testing.T) {
	svc, _ := newTestTaskService()
	assert.NoError(t, svc.UpdateStatus(context.Background(), 9999, entity.StatusDone))
}

func TestDeleteTask_Idempotent(t *testing.T) {
	svc, repo := newTestTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "ab", "x", nil, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, task.ID))
	assert.Empty(t, repo.tasks)
	require.NoError(t, svc.Delete(ctx, task.ID))
}

func TestSearch_DisabledReturnsEmpty(t *testing.T) {
	svc, _ := newTestTaskService()

	got, err := svc.Search(context.Background(), "ab", "milk", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
