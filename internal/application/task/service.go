package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
)

// Service covers organization-scoped task CRUD.
type Service struct {
	tasks ports.TaskRepository
	orgs  ports.OrganizationRepository
}

func NewService(tasks ports.TaskRepository, orgs ports.OrganizationRepository) *Service {
	return &Service{tasks: tasks, orgs: orgs}
}

type CreateInput struct {
	OrganizationID domain.OrganizationID
	Title          string
	Description    string
	// DueInDays, when non-nil, sets the due date that many days from now.
	DueInDays *int
}

func (s *Service) Create(ctx context.Context, creatorID domain.UserID, input CreateInput) (*domain.Task, error) {
	org, err := s.orgs.GetByID(ctx, input.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domerrors.ErrOrgNotFound
	}
	now := time.Now()
	var dueDate *time.Time
	if input.DueInDays != nil {
		d := now.AddDate(0, 0, *input.DueInDays)
		dueDate = &d
	}
	t := &domain.Task{
		ID:             domain.NewTaskID(uuid.New()),
		OrganizationID: input.OrganizationID,
		CreatedBy:      creatorID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		DueDate:        dueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id domain.TaskID) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domerrors.ErrTaskNotFound
	}
	return t, nil
}

func (s *Service) ListByOrganization(ctx context.Context, orgID domain.OrganizationID) ([]*domain.Task, error) {
	return s.tasks.ListByOrganization(ctx, orgID)
}

func (s *Service) ListByCreator(ctx context.Context, userID domain.UserID) ([]*domain.Task, error) {
	return s.tasks.ListByCreator(ctx, userID)
}

type UpdateInput struct {
	Title       *string
	Description *string
	IsCompleted *bool
	DueInDays   *int
}

func (s *Service) Update(ctx context.Context, id domain.TaskID, input UpdateInput) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domerrors.ErrTaskNotFound
	}
	upd := ports.TaskUpdate{
		Description: input.Description,
		IsCompleted: input.IsCompleted,
	}
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		upd.Title = &trimmed
	}
	if input.DueInDays != nil {
		due := time.Now().AddDate(0, 0, *input.DueInDays)
		upd.DueDate = &due
	}
	if err := s.tasks.Update(ctx, id, upd); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id domain.TaskID) error {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return domerrors.ErrTaskNotFound
	}
	return s.tasks.Delete(ctx, id)
}
