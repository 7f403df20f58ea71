package entity

import "time"

// Task statuses. Any status is reachable from any other; the board does not
// enforce a workflow ordering.
const (
	StatusTodo  = "Todo"
	StatusDoing = "Doing"
	StatusDone  = "Done"
)

// Task is one to-do item owned by exactly one user. Ownership is logical
// (by username), not a relational constraint, and is immutable after create.
type Task struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Task           string     `json:"task"`
	TargetDatetime *time.Time `json:"target_datetime"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ValidStatus reports whether s is one of the three board statuses.
func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusDoing || s == StatusDone
}
