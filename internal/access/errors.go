package access

import "errors"

// Sentinel errors for access decisions. Guards map these to HTTP responses;
// they are never used to leak another identity's data.
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInsufficientRole       = errors.New("insufficient role level")
	ErrInsufficientFunction   = errors.New("function not permitted for role set")
	ErrInsufficientScope      = errors.New("geographic scope not permitted")
	ErrProfileIncomplete      = errors.New("profile has no community or district assigned")
)
