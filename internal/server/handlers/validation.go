package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mamadbah2/household/internal/domain/models"
)

// RegisterValidators adds the custom binding rules used by request structs.
// It must run before the first request is bound.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("servicekind", func(fl validator.FieldLevel) bool {
		_, err := models.ParseServiceKind(fl.Field().String())
		return err == nil
	})
}
