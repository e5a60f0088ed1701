package auth

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrInactiveUser       = errors.New("account is not active")
	ErrUnauthorized       = errors.New("authentication credentials were not provided or are invalid")
	ErrUserNotFound       = errors.New("user not found")
)

// FieldErrors reports rejected request fields, keyed by JSON name.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
