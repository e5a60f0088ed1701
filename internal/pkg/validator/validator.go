package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// usernamePattern allows letters, digits and @.+-_ like most account systems.
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// reservedUsernames are taken by /users/me style endpoints.
var reservedUsernames = map[string]bool{"me": true}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return usernamePattern.MatchString(v) && !reservedUsernames[strings.ToLower(v)]
	})
}

// Validate checks struct tags and returns failed rules keyed by JSON field
// name, or nil when v is valid.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"non_field_errors": err.Error()}
	}

	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
