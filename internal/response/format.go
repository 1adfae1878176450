package response

import "taskhub/internal/domain/models"

func FormatUser(u models.User) models.UserView {
	return models.UserView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
	}
}

func FormatUsers(users []models.User) []models.UserView {
	out := make([]models.UserView, 0, len(users))
	for _, u := range users {
		out = append(out, FormatUser(u))
	}
	return out
}

func FormatTask(t models.Task) models.TaskView {
	return models.TaskView{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Duration:    t.Duration,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}
}

func FormatTasks(tasks []models.Task) []models.TaskView {
	out := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, FormatTask(t))
	}
	return out
}

func FormatItem(i models.Item) models.ItemView {
	return models.ItemView{
		ID:          i.ID,
		Name:        i.Name,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		TotalPrice:  i.TotalPrice,
		Description: i.Description,
	}
}

func FormatItems(items []models.Item) []models.ItemView {
	out := make([]models.ItemView, 0, len(items))
	for _, i := range items {
		out = append(out, FormatItem(i))
	}
	return out
}
