package bus

import "errors"

var (
	ErrNilHandler     = errors.New("nil event handler")
	ErrEmptyEventType = errors.New("empty event type")
)
