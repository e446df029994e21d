package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	apperrors "github.com/jwalitptl/healthcare-api/pkg/errors"
)

var phonePattern = regexp.MustCompile(`^[+]*[(]{0,1}[0-9]{1,4}[)]{0,1}[-\s\./0-9]*$`)

// Messages maps "field.tag" (json field name) to the user facing requirement text.
type Messages map[string]string

// Validator provides struct validation that reports failures as
// validation AppErrors.
type Validator struct {
	v *validator.Validate
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

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return &Validator{v: v}
}

// RegisterValidation adds a custom tag.
func (v *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return v.v.RegisterValidation(tag, fn)
}

// Struct validates obj and returns the first failure as a validation error for
// entityType.
func (v *Validator) Struct(obj interface{}, entityType string, messages Messages) error {
	err := v.v.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Validation("input", err.Error(), entityType)
	}

	fe := fieldErrs[0]
	requirement, ok := messages[fe.Field()+"."+fe.Tag()]
	if !ok {
		requirement = defaultMessage(fe)
	}
	return apperrors.Validation(fe.Field(), requirement, entityType)
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("must be less than %s characters", fe.Param())
	case "email":
		return "Invalid email format"
	case "phone":
		return "Invalid phone number"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
