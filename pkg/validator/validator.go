package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Struct validates a struct against its `validate` tags.
func Struct(obj interface{}) error {
	return validate.Struct(obj)
}
