package handler

import (
	"math"
	"strings"
	"unicode/utf8"

	"taskhub/internal/domain/errors"
	"taskhub/internal/domain/models"
	"taskhub/internal/validation"
)

type Rule = validation.Rule

func required(p validation.Payload, fields ...string) []Rule {
	rules := make([]Rule, 0, len(fields))
	for _, field := range fields {
		rules = append(rules, func() error { return validation.RequiredField(p, field) })
	}
	return rules
}

// when keeps rules only if field is present in the payload. Update paths use
// it to validate exactly the fields the client sent.
func when(p validation.Payload, field string, rules ...Rule) []Rule {
	if !p.Has(field) {
		return nil
	}
	return rules
}

func chain(groups ...[]Rule) []Rule {
	var out []Rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// unique reads the table when the rule runs, not when it is built.
func unique[T validation.Record](records func() []T, p validation.Payload, field, entity, label string, excludeID int) Rule {
	return func() error {
		value, _ := p.String(field)
		if !validation.UniqueField(records(), field, value, excludeID) {
			return errors.Validation("%s with %s '%s' already exists", entity, label, value)
		}
		return nil
	}
}

func personName(p validation.Payload, field string) Rule {
	return func() error { return validation.FieldLength(p, field, 2) }
}

func email(p validation.Payload) Rule {
	return func() error {
		value, ok := p.String("email")
		if !ok || strings.TrimSpace(value) == "" || !validation.Email(value) {
			return errors.Validation("Invalid email format")
		}
		return nil
	}
}

func phone(p validation.Payload) Rule {
	return func() error {
		value, ok := p.String("phone")
		if !ok {
			return errors.Validation("Phone number must be a string of digits")
		}
		if !validation.PhoneShape(value) {
			return errors.Validation("Phone number must be numeric and at least 11 digits long")
		}
		if !validation.PhonePrefix(value) {
			return errors.Validation("Phone number must start with a valid prefix (%s)", strings.Join(models.ValidPhonePrefixes, ", "))
		}
		return nil
	}
}

func title(p validation.Payload) Rule {
	return func() error {
		value, ok := p.String("title")
		if !ok || strings.TrimSpace(value) == "" || utf8.RuneCountInString(value) < 3 {
			return errors.Validation("Title must be a non-empty string of at least 3 characters")
		}
		return nil
	}
}

func nonEmptyString(p validation.Payload, field, message string) Rule {
	return func() error {
		value, ok := p.String(field)
		if !ok || strings.TrimSpace(value) == "" {
			return errors.Validation("%s", message)
		}
		return nil
	}
}

func duration(p validation.Payload) Rule {
	return func() error {
		if !validation.PositiveInteger(p["duration"], 6) {
			return errors.Validation("Duration must be a positive integer representing minutes, and must be greater than 5")
		}
		return nil
	}
}

func quantity(p validation.Payload) Rule {
	return func() error {
		if !validation.PositiveInteger(p["quantity"], 1) {
			return errors.Validation("Quantity must be a positive integer")
		}
		return nil
	}
}

func unitPrice(p validation.Payload) Rule {
	return func() error {
		if !validation.PositiveValue(p["unit_price"]) {
			return errors.Validation("Unit_price must be a positive number")
		}
		return nil
	}
}

// itemTotal rejects a quantity and unit price whose product is not a finite
// number. Fields missing from p keep their values from current.
func itemTotal(p validation.Payload, current models.Item) Rule {
	return func() error {
		if q, ok := p.Int("quantity"); ok {
			current.Quantity = q
		}
		if price, ok := p.Float("unit_price"); ok {
			current.UnitPrice = price
		}
		current.Recompute()
		if math.IsInf(current.TotalPrice, 0) || math.IsNaN(current.TotalPrice) {
			return errors.Validation("Quantity multiplied by unit_price is too large")
		}
		return nil
	}
}

func optionalString(p validation.Payload, field string) Rule {
	return func() error {
		if p.IsNull(field) {
			return nil
		}
		if _, ok := p.String(field); !ok {
			return errors.Validation("%s must be a string", field)
		}
		return nil
	}
}

func status(p validation.Payload) Rule {
	return func() error {
		value, ok := p.String("status")
		if !ok || !models.TaskStatus(value).Valid() {
			return errors.Validation("Invalid task status. Allowed values are: pending, in-progress, completed")
		}
		return nil
	}
}

func statusPresent(p validation.Payload) Rule {
	return func() error {
		if !p.Has("status") {
			return errors.Validation("status field is required")
		}
		return nil
	}
}

// setString copies field into dst when p holds a string there.
func setString(p validation.Payload, field string, dst *string) {
	if v, ok := p.String(field); ok {
		*dst = v
	}
}
