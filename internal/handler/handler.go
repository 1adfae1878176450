// Package handler implements the user, task and item operations. Every
// operation validates first, then touches the store, then formats the result
// into a response envelope; no error escapes past an operation.
package handler

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"taskhub/internal/domain/errors"
	"taskhub/internal/domain/models"
	"taskhub/internal/metrics"
	"taskhub/internal/response"

	"go.uber.org/zap"
)

// Store is the record storage the handlers operate on.
type Store interface {
	GetUsers() []models.User
	GetUserByID(id int) (*models.User, error)
	CreateUser(user *models.User) int
	UpdateUser(id int, user *models.User) error
	DeleteUser(id int) (*models.User, error)

	GetTasks() []models.Task
	GetTaskByID(id int) (*models.Task, error)
	GetTasksByUserID(userID int) []models.Task
	CreateTask(task *models.Task) int
	UpdateTask(id int, task *models.Task) error
	DeleteTask(id int) error

	GetItems() []models.Item
	GetItemByID(id int) (*models.Item, error)
	CreateItem(item *models.Item) int
	UpdateItem(id int, item *models.Item) error
	DeleteItem(id int) error
}

type Handlers struct {
	// mu covers validation and mutation together so uniqueness checks
	// cannot race with inserts. One scope spans all tables because user
	// deletion rewrites tasks.
	mu      sync.Mutex
	store   Store
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Handlers)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handlers) { h.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(h *Handlers) { h.log = l }
}

// WithClock overrides the source of created_at, updated_at and completed_at.
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) { h.now = now }
}

func New(store Store, opts ...Option) *Handlers {
	h := &Handlers{
		store: store,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type result struct {
	message string
	data    any
	code    int
}

func ok(message string, data any) result {
	return result{message: message, data: data, code: http.StatusOK}
}

func created(message string, data any) result {
	return result{message: message, data: data, code: http.StatusCreated}
}

func (h *Handlers) timestamp() time.Time {
	return h.now().UTC()
}

// run executes one operation under the store lock and turns its outcome,
// including a panic, into an envelope.
func (h *Handlers) run(entity, operation string, fn func() (result, error)) (env response.Envelope, code int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			h.log.Error("operation panicked",
				zap.String("entity", entity),
				zap.String("operation", operation),
				zap.String("panic", fmt.Sprint(r)),
			)
			h.metrics.ObserveOperation(entity, operation, response.StatusError)
			env, code = response.InternalError("")
		}
	}()

	res, err := fn()
	if err != nil {
		env, code = response.FromError(err)
		if errors.IsDomain(err) {
			h.log.Info("operation rejected",
				zap.String("entity", entity),
				zap.String("operation", operation),
				zap.Int("code", code),
				zap.String("reason", err.Error()),
			)
		} else {
			h.log.Error("operation failed",
				zap.String("entity", entity),
				zap.String("operation", operation),
				zap.Error(err),
			)
		}
		h.metrics.ObserveOperation(entity, operation, response.StatusError)
		return env, code
	}

	h.log.Debug("operation completed",
		zap.String("entity", entity),
		zap.String("operation", operation),
		zap.Int("code", res.code),
	)
	h.metrics.ObserveOperation(entity, operation, response.StatusSuccess)
	return response.Success(res.message, res.data, res.code)
}

func userNotFound(id int) error {
	return errors.NotFound("User with id %d not found", id)
}

func taskNotFound(id int) error {
	return errors.NotFound("Task with id %d not found", id)
}

func itemNotFound(id int) error {
	return errors.NotFound("Item with id %d not found", id)
}
