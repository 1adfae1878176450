package validation

import (
	"strings"
	"unicode/utf8"

	"taskhub/internal/domain/errors"
	"taskhub/internal/domain/models"
)

// Record is anything stored in a table that carries unique-constrained fields.
type Record interface {
	GetID() int
	Field(name string) string
}

// Rule is a single validation step; it returns nil when the step passes.
type Rule func() error

// Run evaluates rules in order and returns the first failure.
func Run(rules ...Rule) error {
	for _, rule := range rules {
		if err := rule(); err != nil {
			return err
		}
	}
	return nil
}

// RequiredField fails if field is missing or its stringified, trimmed value is empty.
func RequiredField(p Payload, field string) error {
	if !p.Has(field) || p.Text(field) == "" {
		return errors.Validation("%s is required and cannot be empty", field)
	}
	return nil
}

// FieldLength fails if field is not alphabetic or shorter than min after trimming.
func FieldLength(p Payload, field string, min int) error {
	s, ok := p.String(field)
	if !ok || !check(s, "alpha") || utf8.RuneCountInString(strings.TrimSpace(s)) < min {
		return errors.Validation("%s cannot be less than %d alphabetic characters", field, min)
	}
	return nil
}

// Email matches local-part, '@' and a domain containing a dot.
func Email(value string) bool {
	at := strings.LastIndex(value, "@")
	if at < 1 || !strings.Contains(value[at+1:], ".") {
		return false
	}
	return check(value, "email")
}

// Phone is true iff value is all digits, at least 11 long and starts with a
// known operator prefix.
func Phone(value string) bool {
	return check(value, "number,min=11,phoneprefix")
}

// PhoneShape checks the digits and length half of Phone.
func PhoneShape(value string) bool {
	return check(value, "number,min=11")
}

// PhonePrefix checks the prefix half of Phone.
func PhonePrefix(value string) bool {
	return hasPhonePrefix(value)
}

// UniqueField is true iff no record other than excludeID has field equal to
// value, compared case-insensitively. Pass 0 to exclude nothing.
func UniqueField[T Record](records []T, field, value string, excludeID int) bool {
	for _, r := range records {
		if excludeID != 0 && r.GetID() == excludeID {
			continue
		}
		if models.EqualFold(r.Field(field), value) {
			return false
		}
	}
	return true
}

func PositiveInteger(value any, min int) bool {
	i, ok := asInt(value)
	return ok && i >= min
}

func PositiveFloat(value any, min float64) bool {
	f, ok := asFloat(value)
	return ok && f >= min
}

// PositiveValue accepts a positive integer or a positive float.
func PositiveValue(value any) bool {
	return PositiveInteger(value, 1) || PositiveFloat(value, 1.0)
}
