package domain

import "time"

// Todo is a personal todo item. It is owned by exactly one anonymous session.
// Не зависит от Gin, Postgres, Redis.
type Todo struct {
	ID        string
	Task      string
	Completed bool
	SessionID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TodoList is a session's todos plus counts derived from that same slice.
type TodoList struct {
	Todos     []Todo
	Count     int
	Completed int
	Pending   int
}

// NewTodoList computes the counters over list; they are never stored.
func NewTodoList(list []Todo) TodoList {
	out := TodoList{Todos: list, Count: len(list)}
	for _, t := range list {
		if t.Completed {
			out.Completed++
		}
	}
	out.Pending = out.Count - out.Completed
	return out
}
