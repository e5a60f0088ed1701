package recipe

import "errors"

var (
	ErrNotFound    = errors.New("recipe not found")
	ErrForbidden   = errors.New("only the author can change this recipe")
	ErrEmptyBasket = errors.New("shopping cart is empty")
)

// ValidationError is a client-correctable problem with one payload field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
