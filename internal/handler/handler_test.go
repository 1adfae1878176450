package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"taskhub/internal/domain/models"
	"taskhub/internal/metrics"
	"taskhub/internal/response"
	"taskhub/internal/validation"
	storage "taskhub/repository/inmemory"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newHandlers(opts ...Option) *Handlers {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(storage.NewStorage(), opts...)
}

// body decodes a JSON literal the same way the HTTP layer does.
func body(t *testing.T, s string) any {
	t.Helper()
	raw, err := validation.Decode([]byte(s))
	require.NoError(t, err)
	return raw
}

func mustCreateUser(t *testing.T, h *Handlers, email, phone string) models.UserView {
	t.Helper()
	env, code := h.CreateUser(body(t, fmt.Sprintf(
		`{"firstName":"Ada","lastName":"Obi","email":%q,"phone":%q}`, email, phone)))
	require.Equal(t, http.StatusCreated, code, env.Message)
	return env.Data.(models.UserView)
}

func mustCreateTask(t *testing.T, h *Handlers, payload string) models.TaskView {
	t.Helper()
	env, code := h.CreateTask(body(t, payload))
	require.Equal(t, http.StatusCreated, code, env.Message)
	return env.Data.(models.TaskView)
}

func TestCreateUserValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    struct {
			code    int
			message string
		}
	}{
		{
			name:    "missing field reported before format",
			payload: `{"firstName":"A","lastName":"Obi","email":"bad"}`,
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "phone is required and cannot be empty"},
		},
		{
			name:    "blank value counts as missing",
			payload: `{"firstName":"  ","lastName":"Obi","email":"ada@example.com","phone":"08012345678"}`,
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "firstName is required and cannot be empty"},
		},
		{
			name:    "short first name",
			payload: `{"firstName":"A","lastName":"Obi","email":"bad","phone":"0801"}`,
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "firstName cannot be less than 2 alphabetic characters"},
		},
		{
			name:    "non alphabetic last name",
			payload: `{"firstName":"Ada","lastName":"Ob1","email":"bad","phone":"0801"}`,
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "lastName cannot be less than 2 alphabetic characters"},
		},
		{
			name:    "email before phone",
			payload: `{"firstName":"Ada","lastName":"Obi","email":"ada.example.com","phone":"0801"}`,
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "Invalid email format"},
		},
		{
			name:    "phone not a string",
			payload: `{"firstName":"Ada","lastName":"Obi","email":"ada@example.com","phone":8012345678}`,
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "Phone number must be a string of digits"},
		},
		{
			name:    "phone too short",
			payload: `{"firstName":"Ada","lastName":"Obi","email":"ada@example.com","phone":"0801234"}`,
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "Phone number must be numeric and at least 11 digits long"},
		},
		{
			name:    "phone without valid prefix",
			payload: `{"firstName":"Ada","lastName":"Obi","email":"ada@example.com","phone":"12345678901"}`,
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "Phone number must start with a valid prefix (070, 080, 090, 081, 091)"},
		},
		{
			name:    "valid",
			payload: `{"firstName":"Ada","lastName":"Obi","email":"ada@example.com","phone":"08012345678"}`,
			want: struct {
				code    int
				message string
			}{http.StatusCreated, "User created successfully"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlers()
			env, code := h.CreateUser(body(t, tt.payload))
			assert.Equal(t, tt.want.code, code)
			assert.Equal(t, tt.want.message, env.Message)
		})
	}
}

func TestCreateUserPayloadShape(t *testing.T) {
	h := newHandlers()

	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{name: "nil", payload: nil, want: "Payload is missing"},
		{name: "array", payload: []any{"a"}, want: "Payload must be a valid JSON object"},
		{name: "empty", payload: map[string]any{}, want: "Payload cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, code := h.CreateUser(tt.payload)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, response.StatusError, env.Status)
			assert.Equal(t, tt.want, env.Message)
		})
	}
}

func TestUserUniqueness(t *testing.T) {
	h := newHandlers()
	first := mustCreateUser(t, h, "A@b.com", "08012345678")

	env, code := h.CreateUser(body(t, `{"firstName":"Bola","lastName":"Ade","email":"a@b.com","phone":"09012345678"}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User with email 'a@b.com' already exists", env.Message)

	env, code = h.CreateUser(body(t, `{"firstName":"Bola","lastName":"Ade","email":"bola@b.com","phone":"08012345678"}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User with phone number '08012345678' already exists", env.Message)

	// Updating a user with their own email is not a conflict.
	env, code = h.UpdateUser(first.ID, body(t, `{"email":"a@B.com","lastName":"Okafor"}`))
	require.Equal(t, http.StatusOK, code, env.Message)
	updated := env.Data.(models.UserView)
	assert.Equal(t, "a@B.com", updated.Email)
	assert.Equal(t, "Okafor", updated.LastName)
	assert.Equal(t, "Ada", updated.FirstName)

	second := mustCreateUser(t, h, "bola@b.com", "09012345678")
	env, code = h.UpdateUser(second.ID, body(t, `{"email":"A@B.COM"}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User with email 'A@B.COM' already exists", env.Message)
}

func TestUpdateUser(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		payload any
		want    struct {
			code    int
			message string
		}
	}{
		{
			name:    "missing user wins over bad payload",
			id:      9,
			payload: nil,
			want: struct {
				code    int
				message string
			}{http.StatusNotFound, "User with id 9 not found"},
		},
		{
			name:    "empty payload",
			id:      1,
			payload: map[string]any{},
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "Payload cannot be empty"},
		},
		{
			name:    "invalid phone",
			id:      1,
			payload: map[string]any{"phone": "0701"},
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "Phone number must be numeric and at least 11 digits long"},
		},
		{
			name:    "valid partial",
			id:      1,
			payload: map[string]any{"phone": "07011112222"},
			want: struct {
				code    int
				message string
			}{http.StatusOK, "User updated successfully"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlers()
			mustCreateUser(t, h, "ada@example.com", "08012345678")

			env, code := h.UpdateUser(tt.id, tt.payload)
			assert.Equal(t, tt.want.code, code)
			assert.Equal(t, tt.want.message, env.Message)

			got, _ := h.GetUser(1)
			user := got.Data.(models.UserView)
			if tt.want.code == http.StatusOK {
				assert.Equal(t, "07011112222", user.Phone)
			} else {
				assert.Equal(t, "08012345678", user.Phone)
			}
		})
	}
}

func TestIDsAreMonotonic(t *testing.T) {
	h := newHandlers()
	a := mustCreateUser(t, h, "a@example.com", "08011111111")
	b := mustCreateUser(t, h, "b@example.com", "08022222222")
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)

	_, code := h.DeleteUser(b.ID)
	require.Equal(t, http.StatusOK, code)

	c := mustCreateUser(t, h, "c@example.com", "08033333333")
	assert.Equal(t, 3, c.ID)
}

func TestEmptyListsSucceed(t *testing.T) {
	h := newHandlers()

	tests := []struct {
		name    string
		list    func() (response.Envelope, int)
		message string
	}{
		{name: "users", list: h.ListUsers, message: "No users at the moment"},
		{name: "tasks", list: h.ListTasks, message: "No tasks at the moment"},
		{name: "items", list: h.ListItems, message: "No items at the moment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, code := tt.list()
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, response.StatusSuccess, env.Status)
			assert.Equal(t, tt.message, env.Message)

			data, err := json.Marshal(env.Data)
			require.NoError(t, err)
			assert.Equal(t, "[]", string(data))
		})
	}
}

func TestFetchMissingIsNotFound(t *testing.T) {
	h := newHandlers()

	tests := []struct {
		name    string
		call    func() (response.Envelope, int)
		message string
	}{
		{name: "user", call: func() (response.Envelope, int) { return h.GetUser(1) }, message: "User with id 1 not found"},
		{name: "task", call: func() (response.Envelope, int) { return h.GetTask(2) }, message: "Task with id 2 not found"},
		{name: "item", call: func() (response.Envelope, int) { return h.GetItem(3) }, message: "Item with id 3 not found"},
		{name: "user tasks", call: func() (response.Envelope, int) { return h.ListUserTasks(4) }, message: "User with id 4 not found"},
		{name: "delete task", call: func() (response.Envelope, int) { return h.DeleteTask(5) }, message: "Task with id 5 not found"},
		{name: "delete item", call: func() (response.Envelope, int) { return h.DeleteItem(6) }, message: "Item with id 6 not found"},
		{name: "update item", call: func() (response.Envelope, int) { return h.UpdateItem(7, nil) }, message: "Item with id 7 not found"},
		{name: "update task", call: func() (response.Envelope, int) { return h.UpdateTask(8, nil) }, message: "Task with id 8 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, code := tt.call()
			assert.Equal(t, http.StatusNotFound, code)
			assert.Equal(t, response.StatusError, env.Status)
			assert.Equal(t, tt.message, env.Message)
			assert.Nil(t, env.Data)
		})
	}
}

func TestCreateTask(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    struct {
			code    int
			message string
			userID  *int
		}
	}{
		{
			name:    "missing duration",
			payload: `{"title":"Report","description":"numbers"}`,
			want: struct {
				code    int
				message string
				userID  *int
			}{code: http.StatusBadRequest, message: "duration is required and cannot be empty"},
		},
		{
			name:    "short title",
			payload: `{"title":"Re","description":"numbers","duration":10}`,
			want: struct {
				code    int
				message string
				userID  *int
			}{code: http.StatusBadRequest, message: "Title must be a non-empty string of at least 3 characters"},
		},
		{
			name:    "duration too small",
			payload: `{"title":"Report","description":"numbers","duration":5}`,
			want: struct {
				code    int
				message string
				userID  *int
			}{code: http.StatusBadRequest, message: "Duration must be a positive integer representing minutes, and must be greater than 5"},
		},
		{
			name:    "fractional duration",
			payload: `{"title":"Report","description":"numbers","duration":10.5}`,
			want: struct {
				code    int
				message string
				userID  *int
			}{code: http.StatusBadRequest, message: "Duration must be a positive integer representing minutes, and must be greater than 5"},
		},
		{
			name:    "duplicate title in other case",
			payload: `{"title":"EXISTING TASK","description":"numbers","duration":10}`,
			want: struct {
				code    int
				message string
				userID  *int
			}{code: http.StatusBadRequest, message: "Task with title 'EXISTING TASK' already exists"},
		},
		{
			name:    "unknown user",
			payload: `{"title":"Report","description":"numbers","duration":10,"user_id":42}`,
			want: struct {
				code    int
				message string
				userID  *int
			}{code: http.StatusNotFound, message: "User with id 42 not found"},
		},
		{
			name:    "non integer user id",
			payload: `{"title":"Report","description":"numbers","duration":10,"user_id":"1"}`,
			want: struct {
				code    int
				message string
				userID  *int
			}{code: http.StatusBadRequest, message: "user_id must be an integer"},
		},
		{
			name:    "null user id",
			payload: `{"title":"Report","description":"numbers","duration":10,"user_id":null}`,
			want: struct {
				code    int
				message string
				userID  *int
			}{code: http.StatusCreated, message: "Task created successfully"},
		},
		{
			name:    "owned by existing user",
			payload: `{"title":"Report","description":"numbers","duration":10,"user_id":1}`,
			want: struct {
				code    int
				message string
				userID  *int
			}{code: http.StatusCreated, message: "Task created successfully", userID: intPtr(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlers()
			mustCreateUser(t, h, "ada@example.com", "08012345678")
			mustCreateTask(t, h, `{"title":"Existing task","description":"seed","duration":10}`)

			env, code := h.CreateTask(body(t, tt.payload))
			assert.Equal(t, tt.want.code, code)
			assert.Equal(t, tt.want.message, env.Message)
			if code != http.StatusCreated {
				return
			}

			task := env.Data.(models.TaskView)
			assert.Equal(t, 2, task.ID)
			assert.Equal(t, tt.want.userID, task.UserID)
			assert.Equal(t, models.StatusPending, task.Status)
			assert.Equal(t, fixedNow, task.CreatedAt)
			assert.Nil(t, task.UpdatedAt)
			assert.Nil(t, task.CompletedAt)
		})
	}
}

func TestUpdateTask(t *testing.T) {
	h := newHandlers()
	mustCreateTask(t, h, `{"title":"First","description":"one","duration":10}`)
	mustCreateTask(t, h, `{"title":"Second","description":"two","duration":20}`)

	env, code := h.UpdateTask(1, body(t, `{"title":"second"}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Task with title 'second' already exists", env.Message)

	env, code = h.UpdateTask(1, body(t, `{"duration":3}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Duration must be a positive integer representing minutes, and must be greater than 5", env.Message)

	env, code = h.UpdateTask(1, body(t, `{"title":"FIRST","duration":45}`))
	require.Equal(t, http.StatusOK, code, env.Message)
	task := env.Data.(models.TaskView)
	assert.Equal(t, "FIRST", task.Title)
	assert.Equal(t, "one", task.Description)
	assert.Equal(t, 45, task.Duration)
	require.NotNil(t, task.UpdatedAt)
	assert.Equal(t, fixedNow, *task.UpdatedAt)
}

func TestAssignTask(t *testing.T) {
	h := newHandlers()
	user := mustCreateUser(t, h, "ada@example.com", "08012345678")
	task := mustCreateTask(t, h, `{"title":"Report","description":"numbers","duration":10}`)

	env, code := h.AssignTask(99, 77)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Task with id 99 not found", env.Message)

	env, code = h.AssignTask(task.ID, 77)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User with id 77 not found", env.Message)

	env, code = h.AssignTask(task.ID, user.ID)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Task with id 1 assigned to user with id 1 successfully", env.Message)
	assigned := env.Data.(models.TaskView)
	require.NotNil(t, assigned.UserID)
	assert.Equal(t, user.ID, *assigned.UserID)
	assert.NotNil(t, assigned.UpdatedAt)

	env, code = h.ListUserTasks(user.ID)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Tasks for user with id 1 retrieved successfully", env.Message)
	assert.Len(t, env.Data.([]models.TaskView), 1)
}

func TestDeleteUserOrphansTasks(t *testing.T) {
	h := newHandlers()
	user := mustCreateUser(t, h, "ada@example.com", "08012345678")
	for i := 1; i <= 5; i++ {
		mustCreateTask(t, h, fmt.Sprintf(`{"title":"Task %d","description":"d","duration":10,"user_id":%d}`, i, user.ID))
	}

	env, code := h.DeleteUser(user.ID)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User deleted successfully", env.Message)
	assert.Nil(t, env.Data)

	env, code = h.GetTask(5)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, env.Data.(models.TaskView).UserID)

	_, code = h.GetUser(user.ID)
	assert.Equal(t, http.StatusNotFound, code)
}

type brokenDeleteStore struct {
	*storage.Storage
}

func (brokenDeleteStore) DeleteUser(int) (*models.User, error) {
	return nil, fmt.Errorf("tasks table out of sync")
}

func TestDeleteUserStoreFailure(t *testing.T) {
	h := New(brokenDeleteStore{Storage: storage.NewStorage()})

	env, code := h.DeleteUser(1)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", env.Message)

	env, code = New(storage.NewStorage()).DeleteUser(1)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User with id 1 not found", env.Message)
}

func TestUpdateTaskStatus(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		payload any
		want    struct {
			code    int
			message string
		}
	}{
		{
			name:    "missing payload",
			id:      1,
			payload: nil,
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "status field is required"},
		},
		{
			name:    "missing status",
			id:      1,
			payload: map[string]any{"state": "completed"},
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "status field is required"},
		},
		{
			name:    "unknown status",
			id:      1,
			payload: map[string]any{"status": "archived"},
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "Invalid task status. Allowed values are: pending, in-progress, completed"},
		},
		{
			name:    "missing task",
			id:      9,
			payload: map[string]any{"status": "in-progress"},
			want: struct {
				code    int
				message string
			}{http.StatusNotFound, "Task with id 9 not found"},
		},
		{
			name:    "skip in-progress",
			id:      1,
			payload: map[string]any{"status": "completed"},
			want: struct {
				code    int
				message string
			}{http.StatusOK, "Task with id 1 marked as completed successfully"},
		},
		{
			name:    "back to pending before completion",
			id:      1,
			payload: map[string]any{"status": "pending"},
			want: struct {
				code    int
				message string
			}{http.StatusOK, "Task with id 1 marked as pending successfully"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlers()
			mustCreateTask(t, h, `{"title":"Report","description":"numbers","duration":10}`)

			env, code := h.UpdateTaskStatus(tt.id, tt.payload)
			assert.Equal(t, tt.want.code, code)
			assert.Equal(t, tt.want.message, env.Message)
		})
	}
}

func TestCompletedIsTerminal(t *testing.T) {
	h := newHandlers()
	mustCreateTask(t, h, `{"title":"Report","description":"numbers","duration":10}`)

	env, code := h.UpdateTaskStatus(1, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, code)
	task := env.Data.(models.TaskView)
	assert.Equal(t, models.StatusCompleted, task.Status)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, fixedNow, *task.CompletedAt)
	require.NotNil(t, task.UpdatedAt)

	for _, target := range []string{"pending", "in-progress", "completed"} {
		t.Run(target, func(t *testing.T) {
			env, code := h.UpdateTaskStatus(1, map[string]any{"status": target})
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "Task with id 1 is already marked as completed", env.Message)
		})
	}

	env, _ = h.GetTask(1)
	assert.Equal(t, models.StatusCompleted, env.Data.(models.TaskView).Status)
}

func TestItems(t *testing.T) {
	h := newHandlers()

	env, code := h.CreateItem(body(t, `{"name":"Rice","quantity":10,"unit_price":65000,"description":"50kg bag"}`))
	require.Equal(t, http.StatusCreated, code, env.Message)
	item := env.Data.(models.ItemView)
	assert.Equal(t, float64(650000), item.TotalPrice)

	env, code = h.UpdateItem(item.ID, body(t, `{"quantity":5}`))
	require.Equal(t, http.StatusOK, code, env.Message)
	item = env.Data.(models.ItemView)
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, float64(65000), item.UnitPrice)
	assert.Equal(t, float64(325000), item.TotalPrice)
	assert.Equal(t, "50kg bag", item.Description)

	env, code = h.UpdateItem(item.ID, body(t, `{"unit_price":1.5}`))
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, 7.5, env.Data.(models.ItemView).TotalPrice)

	env, code = h.DeleteItem(item.ID)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Item deleted successfully", env.Message)
}

func TestCreateItemValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "missing unit price", payload: `{"name":"Beans","quantity":1}`, want: "unit_price is required and cannot be empty"},
		{name: "name not a string", payload: `{"name":12,"quantity":1,"unit_price":3}`, want: "Item name must be a non-empty string"},
		{name: "zero quantity", payload: `{"name":"Beans","quantity":0,"unit_price":3}`, want: "Quantity must be a positive integer"},
		{name: "fractional quantity", payload: `{"name":"Beans","quantity":1.5,"unit_price":3}`, want: "Quantity must be a positive integer"},
		{name: "negative price", payload: `{"name":"Beans","quantity":1,"unit_price":-3}`, want: "Unit_price must be a positive number"},
		{name: "price as string", payload: `{"name":"Beans","quantity":1,"unit_price":"3"}`, want: "Unit_price must be a positive number"},
		{name: "description not a string", payload: `{"name":"Beans","quantity":1,"unit_price":3,"description":4}`, want: "description must be a string"},
		{name: "duplicate name", payload: `{"name":" rice ","quantity":1,"unit_price":3}`, want: "Item with name ' rice ' already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlers()
			_, code := h.CreateItem(body(t, `{"name":"Rice","quantity":10,"unit_price":65000}`))
			require.Equal(t, http.StatusCreated, code)

			env, code := h.CreateItem(body(t, tt.payload))
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.want, env.Message)

			list, _ := h.ListItems()
			assert.Len(t, list.Data.([]models.ItemView), 1)
		})
	}
}

func TestConcurrentCreatesKeepUniqueness(t *testing.T) {
	h := newHandlers()

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, code := h.CreateItem(map[string]any{
				"name":       "Rice",
				"quantity":   json.Number("1"),
				"unit_price": json.Number("2"),
			})
			if code == http.StatusCreated {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	list, _ := h.ListItems()
	assert.Len(t, list.Data.([]models.ItemView), 1)
}

func TestPanicBecomesInternalError(t *testing.T) {
	h := newHandlers()

	env, code := h.run("item", "create", func() (result, error) {
		panic("boom")
	})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", env.Message)

	// The lock is released after a panic.
	_, code = h.ListItems()
	assert.Equal(t, http.StatusOK, code)
}

func TestOperationMetrics(t *testing.T) {
	m := metrics.New("test")
	h := newHandlers(WithMetrics(m))

	h.CreateItem(body(t, `{"name":"Rice","quantity":10,"unit_price":65000}`))
	h.CreateItem(body(t, `{"name":"rice","quantity":10,"unit_price":65000}`))
	h.GetItem(1)

	expected := `
# HELP taskhub_operations_total Entity operations by outcome
# TYPE taskhub_operations_total counter
taskhub_operations_total{entity="item",operation="create",result="error",service="test"} 1
taskhub_operations_total{entity="item",operation="create",result="success",service="test"} 1
taskhub_operations_total{entity="item",operation="fetch",result="success",service="test"} 1
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "taskhub_operations_total")
	assert.NoError(t, err)
}

func intPtr(v int) *int { return &v }

func TestItemTotalMustBeFinite(t *testing.T) {
	tests := []struct {
		name string
		call func(h *Handlers) (response.Envelope, int)
		want struct {
			code    int
			message string
		}
	}{
		{
			name: "create overflows",
			call: func(h *Handlers) (response.Envelope, int) {
				return h.CreateItem(body(t, `{"name":"Gold","quantity":2,"unit_price":1e308}`))
			},
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "Quantity multiplied by unit_price is too large"},
		},
		{
			name: "update quantity against stored price",
			call: func(h *Handlers) (response.Envelope, int) {
				return h.UpdateItem(1, body(t, `{"quantity":1000}`))
			},
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "Quantity multiplied by unit_price is too large"},
		},
		{
			name: "update price against stored quantity",
			call: func(h *Handlers) (response.Envelope, int) {
				return h.UpdateItem(2, body(t, `{"unit_price":1.5e308}`))
			},
			want: struct {
				code    int
				message string
			}{http.StatusBadRequest, "Quantity multiplied by unit_price is too large"},
		},
		{
			name: "large but finite",
			call: func(h *Handlers) (response.Envelope, int) {
				return h.CreateItem(body(t, `{"name":"Gold","quantity":1,"unit_price":1e308}`))
			},
			want: struct {
				code    int
				message string
			}{http.StatusCreated, "Item created successfully"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlers()
			_, code := h.CreateItem(body(t, `{"name":"Bullion","quantity":1,"unit_price":1e306}`))
			require.Equal(t, http.StatusCreated, code)
			_, code = h.CreateItem(body(t, `{"name":"Ingot","quantity":2,"unit_price":10}`))
			require.Equal(t, http.StatusCreated, code)

			env, code := tt.call(h)
			assert.Equal(t, tt.want.code, code)
			assert.Equal(t, tt.want.message, env.Message)

			list, code := h.ListItems()
			require.Equal(t, http.StatusOK, code)
			_, err := json.Marshal(list)
			assert.NoError(t, err)

			stored, _ := h.GetItem(1)
			assert.Equal(t, float64(1e306), stored.Data.(models.ItemView).TotalPrice)
			stored, _ = h.GetItem(2)
			assert.Equal(t, float64(20), stored.Data.(models.ItemView).TotalPrice)
		})
	}
}

func TestUpdateItemKeepsUnsentFields(t *testing.T) {
	h := newHandlers()
	_, code := h.CreateItem(body(t, `{"name":"Rice","quantity":10,"unit_price":65000,"description":"50kg bag"}`))
	require.Equal(t, http.StatusCreated, code)

	env, code := h.UpdateItem(1, body(t, `{"description":null}`))
	require.Equal(t, http.StatusOK, code, env.Message)
	item := env.Data.(models.ItemView)
	assert.Equal(t, "Rice", item.Name)
	assert.Equal(t, "50kg bag", item.Description)
	assert.Equal(t, float64(650000), item.TotalPrice)
}
