package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and fetch errors
	ErrAPIRequest        = fmt.Errorf("API request failed")
	ErrRetriesExhausted  = fmt.Errorf("retries exhausted")
	ErrUnexpectedPayload = fmt.Errorf("unexpected payload shape")

	// Export errors
	ErrLocaleLocked  = fmt.Errorf("locale output is locked by another process")
	ErrLocaleFailed  = fmt.Errorf("locale export failed")
	ErrSheetConflict = fmt.Errorf("duplicate sheet name")
	ErrRunNotFound   = fmt.Errorf("run not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidLocale   = fmt.Errorf("invalid locale")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
