package model

import "time"

// Task is a task document stored under state/tasks. The memory core never
// writes tasks; they are read-only input to the vector index builder. Title
// is the only required field.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Entities    []string  `json:"entities,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}
