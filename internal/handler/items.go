package handler

import (
	"taskhub/internal/domain/models"
	"taskhub/internal/response"
	"taskhub/internal/validation"
)

const entityItem = "item"

func (h *Handlers) CreateItem(payload any) (response.Envelope, int) {
	return h.run(entityItem, "create", func() (result, error) {
		p, err := validation.AsPayload(payload)
		if err != nil {
			return result{}, err
		}
		err = validation.Run(chain(
			required(p, "name", "quantity", "unit_price"),
			[]Rule{
				nonEmptyString(p, "name", "Item name must be a non-empty string"),
				quantity(p),
				unitPrice(p),
				itemTotal(p, models.Item{}),
			},
			when(p, "description", optionalString(p, "description")),
			[]Rule{unique(h.store.GetItems, p, "name", "Item", "name", 0)},
		)...)
		if err != nil {
			return result{}, err
		}

		var item models.Item
		setString(p, "name", &item.Name)
		setString(p, "description", &item.Description)
		item.Quantity, _ = p.Int("quantity")
		item.UnitPrice, _ = p.Float("unit_price")
		h.store.CreateItem(&item)
		return created("Item created successfully", response.FormatItem(item)), nil
	})
}

func (h *Handlers) ListItems() (response.Envelope, int) {
	return h.run(entityItem, "list", func() (result, error) {
		items := h.store.GetItems()
		if len(items) == 0 {
			return ok("No items at the moment", response.FormatItems(items)), nil
		}
		return ok("Items retrieved successfully", response.FormatItems(items)), nil
	})
}

func (h *Handlers) GetItem(id int) (response.Envelope, int) {
	return h.run(entityItem, "fetch", func() (result, error) {
		item, err := h.store.GetItemByID(id)
		if err != nil {
			return result{}, itemNotFound(id)
		}
		return ok("Item retrieved successfully", response.FormatItem(*item)), nil
	})
}

// UpdateItem applies the fields present in the payload and recomputes the
// total price from the resulting quantity and unit price.
func (h *Handlers) UpdateItem(id int, payload any) (response.Envelope, int) {
	return h.run(entityItem, "update", func() (result, error) {
		item, err := h.store.GetItemByID(id)
		if err != nil {
			return result{}, itemNotFound(id)
		}
		p, err := validation.AsPayload(payload)
		if err != nil {
			return result{}, err
		}
		err = validation.Run(chain(
			when(p, "name",
				nonEmptyString(p, "name", "Item name must be a non-empty string"),
				unique(h.store.GetItems, p, "name", "Item", "name", id),
			),
			when(p, "quantity", quantity(p)),
			when(p, "unit_price", unitPrice(p)),
			[]Rule{itemTotal(p, *item)},
			when(p, "description", optionalString(p, "description")),
		)...)
		if err != nil {
			return result{}, err
		}

		setString(p, "name", &item.Name)
		setString(p, "description", &item.Description)
		if q, ok := p.Int("quantity"); ok {
			item.Quantity = q
		}
		if price, ok := p.Float("unit_price"); ok {
			item.UnitPrice = price
		}
		if err := h.store.UpdateItem(id, item); err != nil {
			return result{}, err
		}
		return ok("Item updated successfully", response.FormatItem(*item)), nil
	})
}

func (h *Handlers) DeleteItem(id int) (response.Envelope, int) {
	return h.run(entityItem, "delete", func() (result, error) {
		if err := h.store.DeleteItem(id); err != nil {
			return result{}, itemNotFound(id)
		}
		return ok("Item deleted successfully", nil), nil
	})
}
