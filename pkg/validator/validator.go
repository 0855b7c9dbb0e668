package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/appointment-scheduler/pkg/errors"
)

// MessageFunc renders the message for a failed rule on a field
type MessageFunc func(field, tag, param string) string

// Validator wraps go-playground/validator and reports failures by JSON field name
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &Validator{validate: v}
}

// RegisterCustomTypeFunc lets value types such as dates be validated through
// the value returned by fn. Returning nil marks the field as empty.
func (v *Validator) RegisterCustomTypeFunc(fn validator.CustomTypeFunc, types ...interface{}) {
	v.validate.RegisterCustomTypeFunc(fn, types...)
}

// Struct validates obj and returns one FieldError per failing field
func (v *Validator) Struct(obj interface{}, msg MessageFunc) ([]apperrors.FieldError, error) {
	if msg == nil {
		msg = DefaultMessage
	}

	err := v.validate.Struct(obj)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: msg(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return fields, nil
}

func DefaultMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(param), ", "))
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
