package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrInvalidToken     = fmt.Errorf("malformed auth token")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrInvalidState     = fmt.Errorf("invalid oauth state")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("not found")
	ErrStaleResponse      = fmt.Errorf("stale response discarded")

	// Editing and validation errors
	ErrValidation        = fmt.Errorf("validation failed")
	ErrSpotNotFound      = fmt.Errorf("spot not found")
	ErrUnknownRegion     = fmt.Errorf("unknown region")
	ErrSubRegionRequired = fmt.Errorf("sub-region selection required")
	ErrUnsupportedMedia  = fmt.Errorf("unsupported media type")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
