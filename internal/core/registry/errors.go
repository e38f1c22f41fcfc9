package registry

import "errors"

var (
	ErrUnknownEntity         = errors.New("unknown entity")
	ErrUnknownTag            = errors.New("unknown tag")
	ErrDuplicateRegistration = errors.New("entity id already registered")
	ErrPoolExhausted         = errors.New("entity pool exhausted")
	ErrNotPooled             = errors.New("entity is not pooled")
	ErrInvalidDefinition     = errors.New("invalid entity definition")
)
