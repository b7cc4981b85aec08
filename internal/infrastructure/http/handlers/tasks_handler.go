package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/task"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	domerrors "github.com/Kevlon-pixel/mini-saas-backend/internal/domain/errors"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/http/middleware"
)

type TasksHandler struct {
	svc      *task.Service
	orgs     ports.OrganizationRepository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewTasksHandler(svc *task.Service, orgs ports.OrganizationRepository, log zerolog.Logger) *TasksHandler {
	return &TasksHandler{svc: svc, orgs: orgs, validate: validator.New(), log: log}
}

func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	orgID, ok := parseOrgID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Title       string `json:"title" validate:"required,min=1,max=256"`
		Description string `json:"description" validate:"max=2000"`
		DueInDays   *int   `json:"dueInDays" validate:"omitempty,min=0,max=3650"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	t, err := h.svc.Create(r.Context(), user.ID, task.CreateInput{
		OrganizationID: orgID,
		Title:          body.Title,
		Description:    body.Description,
		DueInDays:      body.DueInDays,
	})
	if err != nil {
		writeDomainErr(w, h.log, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, taskToJSON(t))
}

func (h *TasksHandler) ListByOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, ok := parseOrgID(w, r, "id")
	if !ok {
		return
	}
	tasks, err := h.svc.ListByOrganization(r.Context(), orgID)
	if err != nil {
		writeDomainErr(w, h.log, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasksToJSON(tasks))
}

func (h *TasksHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	tasks, err := h.svc.ListByCreator(r.Context(), user.ID)
	if err != nil {
		writeDomainErr(w, h.log, "list own tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasksToJSON(tasks))
}

func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, taskToJSON(t))
}

func (h *TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}
	var body struct {
		Title       *string `json:"title" validate:"omitempty,min=1,max=256"`
		Description *string `json:"description" validate:"omitempty,max=2000"`
		IsCompleted *bool   `json:"isCompleted"`
		DueInDays   *int    `json:"dueInDays" validate:"omitempty,min=0,max=3650"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	updated, err := h.svc.Update(r.Context(), t.ID, task.UpdateInput{
		Title:       body.Title,
		Description: body.Description,
		IsCompleted: body.IsCompleted,
		DueInDays:   body.DueInDays,
	})
	if err != nil {
		writeDomainErr(w, h.log, "update task", err)
		return
	}
	writeJSON(w, http.StatusOK, taskToJSON(updated))
}

func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), t.ID); err != nil {
		writeDomainErr(w, h.log, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadAuthorized fetches the task from the id URL param and checks that the
// caller belongs to its organization. Routes keyed by task id carry no org
// id, so membership is resolved from the task itself.
func (h *TasksHandler) loadAuthorized(w http.ResponseWriter, r *http.Request) (*domain.Task, bool) {
	user := middleware.UserFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid task id")
		return nil, false
	}
	t, err := h.svc.Get(r.Context(), domain.NewTaskID(id))
	if err != nil {
		writeDomainErr(w, h.log, "get task", err)
		return nil, false
	}
	member, err := h.orgs.GetMember(r.Context(), t.OrganizationID, user.ID)
	if err != nil {
		writeDomainErr(w, h.log, "get task membership", err)
		return nil, false
	}
	if member == nil {
		writeErr(w, http.StatusForbidden, ErrCodeForbidden, domerrors.ErrNotOrgMember.Error())
		return nil, false
	}
	return t, true
}

func taskToJSON(t *domain.Task) map[string]interface{} {
	out := map[string]interface{}{
		"id":              t.ID.String(),
		"organization_id": t.OrganizationID.String(),
		"created_by":      t.CreatedBy.String(),
		"title":           t.Title,
		"description":     t.Description,
		"is_completed":    t.IsCompleted,
		"created_at":      t.CreatedAt,
		"updated_at":      t.UpdatedAt,
	}
	if t.DueDate != nil {
		out["due_date"] = t.DueDate
	}
	return out
}

func tasksToJSON(tasks []*domain.Task) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToJSON(t))
	}
	return out
}
