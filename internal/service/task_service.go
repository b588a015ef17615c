package service

import (
	"context"
	"fmt"

	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"
	"github.com/kriskris-27/the-dev-ops-mern/internal/repo"
	"github.com/kriskris-27/the-dev-ops-mern/internal/utils"
)

// TaskService stores tasks and joins their users at read time.
//
// Reads are two steps: load the tasks, then load the referenced users in one
// batch. A reference that no longer resolves becomes an unresolved UserRef;
// the task is still returned.
//
// Create and Update check that the user exists before writing. The check and
// the write are not in one transaction, so a user deleted in between leaves an
// orphaned reference, which reads already tolerate.
type TaskService struct {
	tasks repo.TaskRepo
	users repo.UserRepo
}

func NewTaskService(tasks repo.TaskRepo, users repo.UserRepo) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

func (s *TaskService) List(ctx context.Context) ([]dom.TaskView, error) {
	list, err := s.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return s.join(ctx, list)
}

// ListByUser returns the tasks referencing userID. An unknown user yields an empty list.
func (s *TaskService) ListByUser(ctx context.Context, userID string) ([]dom.TaskView, error) {
	list, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks by user: %w", err)
	}
	return s.join(ctx, list)
}

func (s *TaskService) Get(ctx context.Context, id string) (dom.TaskView, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return dom.TaskView{}, taskErr("get task", err)
	}
	return s.joinOne(ctx, t)
}

// Create stores a task after checking that its user exists.
func (s *TaskService) Create(ctx context.Context, d dom.TaskDraft) (dom.TaskView, error) {
	owner, err := s.requireUser(ctx, d.UserID)
	if err != nil {
		return dom.TaskView{}, err
	}
	t, err := s.tasks.Create(ctx, dom.Task{
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
		UserID:      d.UserID,
	})
	if err != nil {
		return dom.TaskView{}, fmt.Errorf("create task: %w", err)
	}
	return dom.TaskView{Task: t, User: dom.ResolvedUser(owner)}, nil
}

// Update applies a partial update. A changed user reference is checked again.
func (s *TaskService) Update(ctx context.Context, id string, patch dom.TaskPatch) (dom.TaskView, error) {
	if patch.UserID != nil {
		if _, err := s.requireUser(ctx, *patch.UserID); err != nil {
			return dom.TaskView{}, err
		}
	}
	t, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		return dom.TaskView{}, taskErr("update task", err)
	}
	return s.joinOne(ctx, t)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	ok, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !ok {
		return dom.NotFound("Task")
	}
	return nil
}

func (s *TaskService) requireUser(ctx context.Context, userID string) (dom.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if utils.IsNoRows(err) {
			return dom.User{}, dom.ErrUnknownUser
		}
		return dom.User{}, fmt.Errorf("resolve task user: %w", err)
	}
	return u, nil
}

func (s *TaskService) joinOne(ctx context.Context, t dom.Task) (dom.TaskView, error) {
	views, err := s.join(ctx, []dom.Task{t})
	if err != nil {
		return dom.TaskView{}, err
	}
	return views[0], nil
}

func (s *TaskService) join(ctx context.Context, list []dom.Task) ([]dom.TaskView, error) {
	ids := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, t := range list {
		if _, ok := seen[t.UserID]; ok {
			continue
		}
		seen[t.UserID] = struct{}{}
		ids = append(ids, t.UserID)
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve task users: %w", err)
	}
	byID := make(map[string]dom.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	views := make([]dom.TaskView, len(list))
	for i, t := range list {
		ref := dom.UnresolvedUser(t.UserID)
		if u, ok := byID[t.UserID]; ok {
			ref = dom.ResolvedUser(u)
		}
		views[i] = dom.TaskView{Task: t, User: ref}
	}
	return views, nil
}

func taskErr(op string, err error) error {
	if utils.IsNoRows(err) {
		return dom.NotFound("Task")
	}
	return fmt.Errorf("%s: %w", op, err)
}
