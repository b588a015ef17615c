package dto

import "time"

// CreateTaskRequest is the JSON body for POST /tasks. User is the owning user's id.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	User        string `json:"user"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	User        *string `json:"user"`
}

// TaskUser is the user summary joined into a task at read time.
// Unresolved is set when the referenced user no longer exists.
type TaskUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Unresolved bool   `json:"unresolved,omitempty"`
}

type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	User        TaskUser  `json:"user"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type DeletedTaskResponse struct {
	DeletedID string `json:"deletedId"`
}
