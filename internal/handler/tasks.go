package handler

import (
	"fmt"

	"taskhub/internal/domain/errors"
	"taskhub/internal/domain/models"
	"taskhub/internal/response"
	"taskhub/internal/validation"
)

const entityTask = "task"

func (h *Handlers) CreateTask(payload any) (response.Envelope, int) {
	return h.run(entityTask, "create", func() (result, error) {
		p, err := validation.AsPayload(payload)
		if err != nil {
			return result{}, err
		}
		err = validation.Run(chain(
			required(p, "title", "description", "duration"),
			[]Rule{
				title(p),
				nonEmptyString(p, "description", "Description must be a non-empty string"),
				duration(p),
				unique(h.store.GetTasks, p, "title", "Task", "title", 0),
				h.taskOwner(p),
			},
		)...)
		if err != nil {
			return result{}, err
		}

		task := models.Task{
			Status:    models.StatusPending,
			CreatedAt: h.timestamp(),
		}
		setString(p, "title", &task.Title)
		setString(p, "description", &task.Description)
		task.Duration, _ = p.Int("duration")
		if id, ok := p.Int("user_id"); ok {
			task.UserID = &id
		}
		h.store.CreateTask(&task)
		return created("Task created successfully", response.FormatTask(task)), nil
	})
}

// taskOwner validates an optional user_id: when the client sends one that is
// not null it has to be an integer naming an existing user.
func (h *Handlers) taskOwner(p validation.Payload) Rule {
	return func() error {
		if !p.Has("user_id") || p.IsNull("user_id") {
			return nil
		}
		id, ok := p.Int("user_id")
		if !ok {
			return errors.Validation("user_id must be an integer")
		}
		if _, err := h.store.GetUserByID(id); err != nil {
			return userNotFound(id)
		}
		return nil
	}
}

func (h *Handlers) ListTasks() (response.Envelope, int) {
	return h.run(entityTask, "list", func() (result, error) {
		tasks := h.store.GetTasks()
		if len(tasks) == 0 {
			return ok("No tasks at the moment", response.FormatTasks(tasks)), nil
		}
		return ok("Tasks retrieved successfully", response.FormatTasks(tasks)), nil
	})
}

func (h *Handlers) GetTask(id int) (response.Envelope, int) {
	return h.run(entityTask, "fetch", func() (result, error) {
		task, err := h.store.GetTaskByID(id)
		if err != nil {
			return result{}, taskNotFound(id)
		}
		return ok("Task retrieved successfully", response.FormatTask(*task)), nil
	})
}

func (h *Handlers) UpdateTask(id int, payload any) (response.Envelope, int) {
	return h.run(entityTask, "update", func() (result, error) {
		task, err := h.store.GetTaskByID(id)
		if err != nil {
			return result{}, taskNotFound(id)
		}
		p, err := validation.AsPayload(payload)
		if err != nil {
			return result{}, err
		}
		err = validation.Run(chain(
			when(p, "title", title(p), unique(h.store.GetTasks, p, "title", "Task", "title", id)),
			when(p, "description", nonEmptyString(p, "description", "Description must be a non-empty string")),
			when(p, "duration", duration(p)),
		)...)
		if err != nil {
			return result{}, err
		}

		setString(p, "title", &task.Title)
		setString(p, "description", &task.Description)
		if d, ok := p.Int("duration"); ok {
			task.Duration = d
		}
		now := h.timestamp()
		task.UpdatedAt = &now
		if err := h.store.UpdateTask(id, task); err != nil {
			return result{}, err
		}
		return ok("Task updated successfully", response.FormatTask(*task)), nil
	})
}

func (h *Handlers) DeleteTask(id int) (response.Envelope, int) {
	return h.run(entityTask, "delete", func() (result, error) {
		if err := h.store.DeleteTask(id); err != nil {
			return result{}, taskNotFound(id)
		}
		return ok("Task deleted successfully", nil), nil
	})
}

func (h *Handlers) AssignTask(taskID, userID int) (response.Envelope, int) {
	return h.run(entityTask, "assign", func() (result, error) {
		task, err := h.store.GetTaskByID(taskID)
		if err != nil {
			return result{}, taskNotFound(taskID)
		}
		if _, err := h.store.GetUserByID(userID); err != nil {
			return result{}, userNotFound(userID)
		}

		owner := userID
		task.UserID = &owner
		now := h.timestamp()
		task.UpdatedAt = &now
		if err := h.store.UpdateTask(taskID, task); err != nil {
			return result{}, err
		}
		return ok(fmt.Sprintf("Task with id %d assigned to user with id %d successfully", taskID, userID), response.FormatTask(*task)), nil
	})
}

// UpdateTaskStatus moves a task to another status. Any non-completed status
// may move to any allowed status; completed is terminal.
func (h *Handlers) UpdateTaskStatus(id int, payload any) (response.Envelope, int) {
	return h.run(entityTask, "status", func() (result, error) {
		p, err := validation.AsPayload(payload)
		if err != nil {
			return result{}, validationOr(err, "status field is required")
		}
		if err := validation.Run(statusPresent(p), status(p)); err != nil {
			return result{}, err
		}
		raw, _ := p.String("status")
		next := models.TaskStatus(raw)

		task, err := h.store.GetTaskByID(id)
		if err != nil {
			return result{}, taskNotFound(id)
		}
		if task.Status == models.StatusCompleted {
			return result{}, errors.DomainState("Task with id %d is already marked as completed", id)
		}

		now := h.timestamp()
		task.Status = next
		if next == models.StatusCompleted {
			completedAt := now
			task.CompletedAt = &completedAt
		}
		task.UpdatedAt = &now
		if err := h.store.UpdateTask(id, task); err != nil {
			return result{}, err
		}
		return ok(fmt.Sprintf("Task with id %d marked as %s successfully", id, next), response.FormatTask(*task)), nil
	})
}

// validationOr replaces the generic missing/empty payload message with one
// naming the field the operation needs.
func validationOr(err error, message string) error {
	if errors.IsDomain(err) {
		return errors.Validation("%s", message)
	}
	return err
}
