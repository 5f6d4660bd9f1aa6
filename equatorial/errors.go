package equatorial

import "errors"

// Error kinds returned by the client. Callers match them with errors.Is.
var (
	ErrNetwork    = errors.New("network error")
	ErrParse      = errors.New("parse error")
	ErrDecode     = errors.New("decode error")
	ErrIO         = errors.New("io error")
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication failed")
)
