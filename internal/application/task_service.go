package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/ceitask/taskboard/internal/domain/entity"
	"github.com/ceitask/taskboard/internal/domain/repository"
)

var (
	ErrEmptyTask     = errors.New("task must not be empty")
	ErrInvalidStatus = errors.New("invalid status")
)

// TaskService is per-user task CRUD over the task store. Ownership is scoped
// by the caller-supplied username.
type TaskService struct {
	Repo   repository.TaskRepository
	Logger *logrus.Logger

	// Optional search index; nil disables indexing and search.
	ES           *elasticsearch.Client
	ESTasksIndex string
}

func NewTaskService(repo repository.TaskRepository, logger *logrus.Logger, es *elasticsearch.Client, esTasksIndex string) *TaskService {
	return &TaskService{Repo: repo, Logger: logger, ES: es, ESTasksIndex: esTasksIndex}
}

// List returns all tasks owned by username, newest deadline first, tasks
// without a deadline last.
func (s *TaskService) List(ctx context.Context, username string) ([]*entity.Task, error) {
	return s.Repo.ListByUsername(ctx, username)
}

// Create persists a new task. Status defaults to Todo when omitted; the task
// text must be non-empty after trimming.
func (s *TaskService) Create(ctx context.Context, username, text string, deadline *time.Time, status string) (*entity.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyTask
	}
	if status == "" {
		status = entity.StatusTodo
	}
	if !entity.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	t := &entity.Task{
		Username:       username,
		Task:           text,
		TargetDatetime: deadline,
		Status:         status,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.indexTask(ctx, t)
	return t, nil
}

// UpdateStatus overwrites the status unconditionally; any status is reachable
// from any other. A missing id is a no-op success.
func (s *TaskService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !entity.ValidStatus(status) {
		return ErrInvalidStatus
	}
	if err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.reindexStatus(ctx, id, status)
	return nil
}

// Delete removes the task; calling it for an absent id still succeeds.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.deleteFromIndex(ctx, id)
	return nil
}

// Search runs a match query over the user's task text. Returns an empty slice
// when search is not configured.
func (s *TaskService) Search(ctx context.Context, username, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESTasksIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":   map[string]any{"match": map[string]any{"task": q}},
				"filter": map[string]any{"term": map[string]any{"username": username}},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESTasksIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func taskDocID(id int64) string { return strconv.FormatInt(id, 10) }

func (s *TaskService) indexTask(ctx context.Context, t *entity.Task) {
	if s.ES == nil || s.ESTasksIndex == "" {
		return
	}
	doc := map[string]any{
		"id":       t.ID,
		"username": t.Username,
		"task":     t.Task,
		"status":   t.Status,
	}
	if t.TargetDatetime != nil {
		doc["target_datetime"] = t.TargetDatetime.Format(time.RFC3339Nano)
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESTasksIndex, DocumentID: taskDocID(t.ID), Body: strings.NewReader(string(b))}
	s.doES(ctx, req.Do, "index")
}

func (s *TaskService) reindexStatus(ctx context.Context, id int64, status string) {
	if s.ES == nil || s.ESTasksIndex == "" {
		return
	}
	body := `{"doc":{"status":` + strconv.Quote(status) + `}}`
	req := esapi.UpdateRequest{Index: s.ESTasksIndex, DocumentID: taskDocID(id), Body: strings.NewReader(body)}
	s.doES(ctx, req.Do, "update")
}

func (s *TaskService) deleteFromIndex(ctx context.Context, id int64) {
	if s.ES == nil || s.ESTasksIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESTasksIndex, DocumentID: taskDocID(id)}
	s.doES(ctx, req.Do, "delete")
}

// doES runs the request with a short timeout; the index is a convenience,
// so failures are logged and swallowed.
func (s *TaskService) doES(ctx context.Context, do func(context.Context, esapi.Transport) (*esapi.Response, error), op string) {
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("op", op).Warn("es request failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	// 404 on update/delete just means the doc was never indexed.
	if res.IsError() && res.StatusCode != 404 {
		s.Logger.WithFields(logrus.Fields{"op": op, "status": res.Status()}).Warn("es response error")
	}
}
