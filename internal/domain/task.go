package domain

import "time"

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task as stored: UserID is a bare reference, never a copy of the user.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	UserID      *string
}

// UnknownUserName is shown for a task whose user no longer exists.
const UnknownUserName = "Unknown user"

// UserRef is the read-time projection of a task's user.
// Resolved is false when the referenced user could not be found.
type UserRef struct {
	ID       string
	Name     string
	Email    string
	Resolved bool
}

// ResolvedUser builds a reference from an existing user.
func ResolvedUser(u User) UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Resolved: true}
}

// UnresolvedUser builds the placeholder for a dangling reference.
func UnresolvedUser(id string) UserRef {
	return UserRef{ID: id, Name: UnknownUserName}
}

// TaskView is a task joined with its user at read time.
type TaskView struct {
	Task
	User UserRef
}

// TaskDraft is a validated create request with enum defaults already applied.
type TaskDraft struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	UserID      string
}
