package core

import (
	"errors"
)

var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrUnknownEnum       = errors.New("unknown enumeration value")
	ErrInvalidDimensions = errors.New("invalid card dimensions")
	ErrTextureDecode     = errors.New("texture decode failed")
	ErrContextLost       = errors.New("rendering context lost")
	ErrNotInitialized    = errors.New("not initialized")
	ErrAlreadyShutdown   = errors.New("already shut down")
	ErrUnknown           = errors.New("unknown")
)
