package http

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/room-booking-backend/internal/resource"
)

// RegisterValidators adds the resource_kind tag to gin's validator engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("resource_kind", validateKind); err != nil {
		return fmt.Errorf("register resource_kind validator: %w", err)
	}
	return nil
}

func validateKind(fl validator.FieldLevel) bool {
	return resource.Kind(fl.Field().String()).Valid()
}
