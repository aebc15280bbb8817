// validation.go
package dto

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs custom rules on gin's validator engine.
// Called once from main before the router is built.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Payment gateways issue references of at least 5 characters; anything
	// shorter is a typo, not a transaction id.
	_ = v.RegisterValidation("txnref", func(fl validator.FieldLevel) bool {
		return len(strings.TrimSpace(fl.Field().String())) >= 5
	})
}
