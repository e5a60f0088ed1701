package ledger

import "errors"

var (
	ErrUnknownKind         = errors.New("unknown relation kind")
	ErrTargetNotFound      = errors.New("target not found")
	ErrSelfFollow          = errors.New("you cannot subscribe to yourself")
	ErrDuplicate           = errors.New("already marked")
	ErrNotFound            = errors.New("not marked")
	ErrInvalidRecipesLimit = errors.New("recipes_limit must be a non-negative integer")
)
