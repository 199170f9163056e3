package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrInvalidBaseURL is returned when the API base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid api base_url: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the API timeout is <= 0.
	ErrInvalidTimeout = errors.New("invalid api timeout: must be > 0")

	// ErrInvalidRateLimit is returned when rate_limit or burst is negative.
	ErrInvalidRateLimit = errors.New("invalid api rate_limit or burst: must be >= 0")

	// ErrInvalidProfileTimeout is returned when the session profile timeout is <= 0.
	ErrInvalidProfileTimeout = errors.New("invalid session profile_timeout: must be > 0")

	// ErrInvalidDebounce is returned when the debounce interval is <= 0.
	ErrInvalidDebounce = errors.New("invalid query debounce_interval: must be > 0")

	// ErrInvalidPageSize is returned when the page size is <= 0.
	ErrInvalidPageSize = errors.New("invalid query page_size: must be > 0")

	// ErrInvalidDisplayFormat is returned when display format is not recognized.
	ErrInvalidDisplayFormat = errors.New("invalid display format: must be table, json, or simple")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConfigNotFound is returned when config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)
