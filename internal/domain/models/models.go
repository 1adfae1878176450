package models

import (
	"strconv"
	"strings"
	"time"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists the allowed statuses in transition order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

func (s TaskStatus) Valid() bool {
	for _, allowed := range TaskStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

// ValidPhonePrefixes are the operator prefixes a phone number may start with.
var ValidPhonePrefixes = []string{"070", "080", "090", "081", "091"}

type User struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func (u User) GetID() int { return u.ID }

// Field returns the string value of a unique-constrained field.
func (u User) Field(name string) string {
	switch name {
	case "firstName":
		return u.FirstName
	case "lastName":
		return u.LastName
	case "email":
		return u.Email
	case "phone":
		return u.Phone
	}
	return ""
}

type Task struct {
	ID          int
	UserID      *int
	Title       string
	Description string
	Duration    int
	Status      TaskStatus
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	CompletedAt *time.Time
}

func (t Task) GetID() int { return t.ID }

func (t Task) Field(name string) string {
	switch name {
	case "title":
		return t.Title
	case "description":
		return t.Description
	case "status":
		return string(t.Status)
	}
	return ""
}

// OwnedBy reports whether the task references userID.
func (t Task) OwnedBy(userID int) bool {
	return t.UserID != nil && *t.UserID == userID
}

type Item struct {
	ID          int
	Name        string
	Quantity    int
	UnitPrice   float64
	TotalPrice  float64
	Description string
}

func (i Item) GetID() int { return i.ID }

func (i Item) Field(name string) string {
	switch name {
	case "name":
		return i.Name
	case "description":
		return i.Description
	case "quantity":
		return strconv.Itoa(i.Quantity)
	}
	return ""
}

// Recompute keeps TotalPrice consistent with Quantity and UnitPrice.
func (i *Item) Recompute() {
	i.TotalPrice = float64(i.Quantity) * i.UnitPrice
}

// UserView is the public shape of a User.
type UserView struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type TaskView struct {
	ID          int        `json:"id"`
	UserID      *int       `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Duration    int        `json:"duration"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type ItemView struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
	Description string  `json:"description"`
}

// EqualFold is the case-insensitive comparison used for unique fields.
func EqualFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
