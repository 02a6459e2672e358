package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig       = fmt.Errorf("configuration not found")
	ErrInvalidConfig       = fmt.Errorf("invalid configuration")
	ErrBrokerNotConfigured = fmt.Errorf("identity broker not configured")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrLoginRequired    = fmt.Errorf("login required")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrNoToken          = fmt.Errorf("no access token available")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSubmissionInFlight = fmt.Errorf("a submission is already in flight")
	ErrPlaylistNotCreated = fmt.Errorf("playlist not created")
	ErrHistoryNotFound    = fmt.Errorf("history entry not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
