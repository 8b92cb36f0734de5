package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	commonerrors "github.com/blogsphere/backend/internal/common/errors"
)

var (
	passwordCharsRegex = regexp.MustCompile(`^[a-zA-Z\d]+$`)
	dataURLRegex       = regexp.MustCompile(`^data:image/(png|jpg|jpeg);base64,`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})

	_ = v.RegisterValidation("dataurl_image", func(fl validator.FieldLevel) bool {
		return dataURLRegex.MatchString(fl.Field().String())
	})

	return v
}

// IsStrongPassword accepts letters and digits only, with at least one lowercase,
// one uppercase letter and one digit. Length is checked separately by tags.
func IsStrongPassword(value string) bool {
	if !passwordCharsRegex.MatchString(value) {
		return false
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range value {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	return hasLower && hasUpper && hasDigit
}

// Struct validates v and returns ErrValidation with per-field details on failure.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return commonerrors.ErrValidation.WithCause(err)
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = describe(fe)
	}

	return commonerrors.ErrValidation.WithDetails(details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid id"
	case "eqfield":
		return fmt.Sprintf("must match %s", lowerFirst(fe.Param()))
	case "password":
		return "must contain only letters and digits with at least one lowercase, one uppercase and one digit"
	case "dataurl_image":
		return "must be a base64 png or jpeg data url"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
