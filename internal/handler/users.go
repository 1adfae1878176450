package handler

import (
	stderrors "errors"
	"fmt"

	"taskhub/internal/domain/errors"
	"taskhub/internal/domain/models"
	"taskhub/internal/response"
	"taskhub/internal/validation"
)

const entityUser = "user"

func (h *Handlers) CreateUser(payload any) (response.Envelope, int) {
	return h.run(entityUser, "create", func() (result, error) {
		p, err := validation.AsPayload(payload)
		if err != nil {
			return result{}, err
		}
		err = validation.Run(chain(
			required(p, "firstName", "lastName", "email", "phone"),
			[]Rule{
				personName(p, "firstName"),
				personName(p, "lastName"),
				email(p),
				phone(p),
				unique(h.store.GetUsers, p, "email", "User", "email", 0),
				unique(h.store.GetUsers, p, "phone", "User", "phone number", 0),
			},
		)...)
		if err != nil {
			return result{}, err
		}

		var user models.User
		setString(p, "firstName", &user.FirstName)
		setString(p, "lastName", &user.LastName)
		setString(p, "email", &user.Email)
		setString(p, "phone", &user.Phone)
		h.store.CreateUser(&user)
		return created("User created successfully", response.FormatUser(user)), nil
	})
}

func (h *Handlers) ListUsers() (response.Envelope, int) {
	return h.run(entityUser, "list", func() (result, error) {
		users := h.store.GetUsers()
		if len(users) == 0 {
			return ok("No users at the moment", response.FormatUsers(users)), nil
		}
		return ok("Users retrieved successfully", response.FormatUsers(users)), nil
	})
}

func (h *Handlers) GetUser(id int) (response.Envelope, int) {
	return h.run(entityUser, "fetch", func() (result, error) {
		user, err := h.store.GetUserByID(id)
		if err != nil {
			return result{}, userNotFound(id)
		}
		return ok("User retrieved successfully", response.FormatUser(*user)), nil
	})
}

func (h *Handlers) UpdateUser(id int, payload any) (response.Envelope, int) {
	return h.run(entityUser, "update", func() (result, error) {
		user, err := h.store.GetUserByID(id)
		if err != nil {
			return result{}, userNotFound(id)
		}
		p, err := validation.AsPayload(payload)
		if err != nil {
			return result{}, err
		}
		err = validation.Run(chain(
			when(p, "firstName", personName(p, "firstName")),
			when(p, "lastName", personName(p, "lastName")),
			when(p, "email", email(p), unique(h.store.GetUsers, p, "email", "User", "email", id)),
			when(p, "phone", phone(p), unique(h.store.GetUsers, p, "phone", "User", "phone number", id)),
		)...)
		if err != nil {
			return result{}, err
		}

		setString(p, "firstName", &user.FirstName)
		setString(p, "lastName", &user.LastName)
		setString(p, "email", &user.Email)
		setString(p, "phone", &user.Phone)
		if err := h.store.UpdateUser(id, user); err != nil {
			return result{}, err
		}
		return ok("User updated successfully", response.FormatUser(*user)), nil
	})
}

// DeleteUser removes the user and orphans their tasks.
func (h *Handlers) DeleteUser(id int) (response.Envelope, int) {
	return h.run(entityUser, "delete", func() (result, error) {
		if _, err := h.store.DeleteUser(id); err != nil {
			if stderrors.Is(err, errors.ErrNotFound) {
				return result{}, userNotFound(id)
			}
			return result{}, err
		}
		return ok("User deleted successfully", nil), nil
	})
}

func (h *Handlers) ListUserTasks(id int) (response.Envelope, int) {
	return h.run(entityUser, "tasks", func() (result, error) {
		if _, err := h.store.GetUserByID(id); err != nil {
			return result{}, userNotFound(id)
		}
		tasks := h.store.GetTasksByUserID(id)
		if len(tasks) == 0 {
			return ok(fmt.Sprintf("No tasks assigned to user with id %d at the moment", id), response.FormatTasks(tasks)), nil
		}
		return ok(fmt.Sprintf("Tasks for user with id %d retrieved successfully", id), response.FormatTasks(tasks)), nil
	})
}
