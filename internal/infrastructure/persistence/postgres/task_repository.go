package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/persistence/db"
)

const (
	taskColumns = `id, organization_id, created_by, title, description, due_date, is_completed, created_at, updated_at`

	createTaskSQL = `INSERT INTO tasks (id, organization_id, created_by, title, description, due_date, is_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	getTaskByIDSQL = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	listTasksByOrgSQL = `SELECT ` + taskColumns + ` FROM tasks
		WHERE organization_id = $1 ORDER BY created_at DESC`
	listTasksByCreatorSQL = `SELECT ` + taskColumns + ` FROM tasks
		WHERE created_by = $1 ORDER BY created_at DESC`
	updateTaskSQL = `UPDATE tasks SET
		title = COALESCE($2, title),
		description = COALESCE($3, description),
		due_date = COALESCE($4, due_date),
		is_completed = COALESCE($5, is_completed),
		updated_at = now()
		WHERE id = $1`
	deleteTaskSQL = `DELETE FROM tasks WHERE id = $1`
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	_, err := r.pool.Exec(ctx, createTaskSQL,
		task.ID.UUID, task.OrganizationID.UUID, task.CreatedBy.UUID,
		task.Title, task.Description, task.DueDate, task.IsCompleted,
		task.CreatedAt, task.UpdatedAt)
	return err
}

func (r *TaskRepository) GetByID(ctx context.Context, id domain.TaskID) (*domain.Task, error) {
	var t db.Task
	err := r.pool.QueryRow(ctx, getTaskByIDSQL, id.UUID).Scan(
		&t.ID, &t.OrganizationID, &t.CreatedBy, &t.Title, &t.Description,
		&t.DueDate, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return dbTaskToDomain(t), nil
}

func (r *TaskRepository) ListByOrganization(ctx context.Context, orgID domain.OrganizationID) ([]*domain.Task, error) {
	return r.list(ctx, listTasksByOrgSQL, orgID.UUID)
}

func (r *TaskRepository) ListByCreator(ctx context.Context, userID domain.UserID) ([]*domain.Task, error) {
	return r.list(ctx, listTasksByCreatorSQL, userID.UUID)
}

func (r *TaskRepository) list(ctx context.Context, sql string, arg interface{}) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*domain.Task
	for rows.Next() {
		var t db.Task
		if err := rows.Scan(
			&t.ID, &t.OrganizationID, &t.CreatedBy, &t.Title, &t.Description,
			&t.DueDate, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, dbTaskToDomain(t))
	}
	return list, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, id domain.TaskID, upd ports.TaskUpdate) error {
	_, err := r.pool.Exec(ctx, updateTaskSQL, id.UUID, upd.Title, upd.Description, upd.DueDate, upd.IsCompleted)
	return err
}

func (r *TaskRepository) Delete(ctx context.Context, id domain.TaskID) error {
	_, err := r.pool.Exec(ctx, deleteTaskSQL, id.UUID)
	return err
}

func dbTaskToDomain(t db.Task) *domain.Task {
	task := &domain.Task{
		ID:             domain.NewTaskID(t.ID),
		OrganizationID: domain.NewOrganizationID(t.OrganizationID),
		CreatedBy:      domain.NewUserID(t.CreatedBy),
		Title:          t.Title,
		Description:    t.Description,
		IsCompleted:    t.IsCompleted,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.DueDate.Valid {
		d := t.DueDate.Time
		task.DueDate = &d
	}
	return task
}

var _ ports.TaskRepository = (*TaskRepository)(nil)
