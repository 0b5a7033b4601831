package secret

import "errors"

// Sentinel errors for secret resolution.
var (
	ErrInvalidRegistration = errors.New("secret: invalid provider registration")
	ErrDuplicateProvider   = errors.New("secret: provider already registered")
	ErrUnknownProvider     = errors.New("secret: provider is not registered")
	ErrMissingEnv          = errors.New("secret: missing required environment variables")
	ErrEmptySecret         = errors.New("secret: provider returned empty value")
	ErrNotFound            = errors.New("secret: not found")
)
