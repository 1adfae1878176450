package validation

import (
	"strings"
	"sync"

	"taskhub/internal/domain/models"

	gpvalidator "github.com/go-playground/validator/v10"
)

var (
	v    *gpvalidator.Validate
	once sync.Once
)

func instance() *gpvalidator.Validate {
	once.Do(func() {
		v = gpvalidator.New()
		_ = v.RegisterValidation("phoneprefix", func(fl gpvalidator.FieldLevel) bool {
			return hasPhonePrefix(fl.Field().String())
		})
	})
	return v
}

func check(value any, tag string) bool {
	return instance().Var(value, tag) == nil
}

func hasPhonePrefix(phone string) bool {
	for _, prefix := range models.ValidPhonePrefixes {
		if strings.HasPrefix(phone, prefix) {
			return true
		}
	}
	return false
}
