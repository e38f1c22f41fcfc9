package entity

import "errors"

var (
	ErrUnsupportedShape = errors.New("unsupported entity payload shape")
	ErrNoSceneFile      = errors.New("no entity file matches scene")
	ErrNoSceneName      = errors.New("empty scene name")
)
