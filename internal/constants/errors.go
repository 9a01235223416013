package constants

import "errors"

// Configuration errors.
var (
	ErrNoEndpointConfigured = errors.New("no cluster endpoint configured, use --endpoint or 'sfctl config set endpoint <url>'")
	ErrUnknownConfigKey     = errors.New("unknown configuration key")
	ErrInvalidOutputFormat  = errors.New("invalid output format, expected table, json or yaml")
	ErrInvalidConcurrency   = errors.New("concurrency must be between 1 and 16")
)

// Authentication errors.
var (
	ErrNoAccessToken     = errors.New("no access token available")
	ErrIncompleteAADAuth = errors.New("tenant id, client id, client secret and resource are all required for Azure AD authentication")
)

// Validation errors.
var (
	ErrInvalidBooleanValue        = errors.New("value must be 'true' or 'false'")
	ErrDirectoryTraversalDetected = errors.New("directory traversal detected in file path")
	ErrNotRegularFile             = errors.New("path is not a regular file")
)
