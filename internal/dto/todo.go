package dto

import "time"

// AddTodoRequest is the JSON body for POST /todo. Task is a pointer so a missing field is told apart from "".
type AddTodoRequest struct {
	Task *string `json:"task"`
}

type TodoResponse struct {
	ID        string    `json:"id"`
	Task      string    `json:"task"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListTodosResponse struct {
	Todos     []TodoResponse `json:"todos"`
	Count     int            `json:"count"`
	Completed int            `json:"completed"`
	Pending   int            `json:"pending"`
}

type DeletedTodoResponse struct {
	DeletedID string `json:"deletedId"`
}

type ClearCompletedResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}
