package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

// Validator adapts go-playground/validator to echo.Validator and reports
// the first violation as a bad request.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator that names fields by their json tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Validate checks i against its struct tags.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return errorbank.BadRequest(Message(fe),
			errorbank.WithDetail("field", fe.Field()),
			errorbank.WithDetail("rule", fe.Tag()),
		)
	}
	return errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
}

// Message renders a single field violation.
func Message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, fe.Param())
	case "objectid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
