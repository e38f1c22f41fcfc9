package component

import "errors"

var (
	ErrUnknownComponent = errors.New("unknown component")
	ErrRootNotObject    = errors.New("catalog root is not an object")
	ErrNoComponents     = errors.New(`catalog has no "components" object`)
)
