package dashboard

import "errors"

// Sentinel errors for dashboard operations.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("api key not found")
	ErrStore      = errors.New("store failure")
	ErrClipboard  = errors.New("clipboard unavailable")
)
