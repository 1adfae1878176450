package storage

import (
	"taskhub/internal/domain/errors"
	"taskhub/internal/domain/models"
)

// Storage holds the users, tasks and items tables for one process. It does no
// locking of its own; callers serialize access.
type Storage struct {
	users *Table[models.User]
	tasks *Table[models.Task]
	items *Table[models.Item]
}

func NewStorage() *Storage {
	return &Storage{
		users: NewTable(func(u *models.User, id int) { u.ID = id }),
		tasks: NewTable(func(t *models.Task, id int) { t.ID = id }),
		items: NewTable(func(i *models.Item, id int) { i.ID = id }),
	}
}

func (s *Storage) GetUsers() []models.User {
	return s.users.All()
}

func (s *Storage) GetUserByID(id int) (*models.User, error) {
	user, exists := s.users.Get(id)
	if !exists {
		return nil, errors.ErrNotFound
	}
	return &user, nil
}

func (s *Storage) CreateUser(user *models.User) int {
	user.ID = s.users.Insert(*user)
	return user.ID
}

func (s *Storage) UpdateUser(id int, user *models.User) error {
	return s.users.Replace(id, *user)
}

// DeleteUser removes the user and clears user_id on every task that
// referenced them. The tasks themselves are kept.
func (s *Storage) DeleteUser(id int) (*models.User, error) {
	user, exists := s.users.Remove(id)
	if !exists {
		return nil, errors.ErrNotFound
	}
	for _, task := range s.tasks.All() {
		if task.OwnedBy(id) {
			task.UserID = nil
			// ids come from All, so this fails only on concurrent removal.
			if err := s.tasks.Replace(task.ID, task); err != nil {
				return &user, err
			}
		}
	}
	return &user, nil
}

func (s *Storage) GetTasks() []models.Task {
	return s.tasks.All()
}

func (s *Storage) GetTaskByID(id int) (*models.Task, error) {
	task, exists := s.tasks.Get(id)
	if !exists {
		return nil, errors.ErrNotFound
	}
	return &task, nil
}

func (s *Storage) GetTasksByUserID(userID int) []models.Task {
	tasks := []models.Task{}
	for _, t := range s.tasks.All() {
		if t.OwnedBy(userID) {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func (s *Storage) CreateTask(task *models.Task) int {
	task.ID = s.tasks.Insert(*task)
	return task.ID
}

func (s *Storage) UpdateTask(id int, task *models.Task) error {
	return s.tasks.Replace(id, *task)
}

func (s *Storage) DeleteTask(id int) error {
	if _, exists := s.tasks.Remove(id); !exists {
		return errors.ErrNotFound
	}
	return nil
}

func (s *Storage) GetItems() []models.Item {
	return s.items.All()
}

func (s *Storage) GetItemByID(id int) (*models.Item, error) {
	item, exists := s.items.Get(id)
	if !exists {
		return nil, errors.ErrNotFound
	}
	return &item, nil
}

// CreateItem stores the item with its total price derived from quantity and unit price.
func (s *Storage) CreateItem(item *models.Item) int {
	item.Recompute()
	item.ID = s.items.Insert(*item)
	return item.ID
}

func (s *Storage) UpdateItem(id int, item *models.Item) error {
	item.Recompute()
	return s.items.Replace(id, *item)
}

func (s *Storage) DeleteItem(id int) error {
	if _, exists := s.items.Remove(id); !exists {
		return errors.ErrNotFound
	}
	return nil
}
