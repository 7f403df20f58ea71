package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ceitask/taskboard/internal/domain/entity"
	"github.com/ceitask/taskboard/internal/domain/repository"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO todo (username, task, target_datetime, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, t.Username, t.Task, t.TargetDatetime, t.Status)

	return row.Scan(&t.ID, &t.CreatedAt)
}

func (r *TaskRepository) ListByUsername(ctx context.Context, username string) ([]*entity.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, task, target_datetime, status, created_at
		FROM todo
		WHERE username = $1
		ORDER BY target_datetime DESC NULLS LAST, id DESC
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*entity.Task, 0)
	for rows.Next() {
		t := &entity.Task{}
		if err := rows.Scan(&t.ID, &t.Username, &t.Task, &t.TargetDatetime, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateStatus overwrites status unconditionally. A missing id affects zero
// rows and is still a success.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE todo SET status = $1 WHERE id = $2`, status, id)
	return err
}

// Delete is idempotent.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM todo WHERE id = $1`, id)
	return err
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
