package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Service Fabric REST API versions per resource family.
const (
	APIVersionApplications     = "6.1"
	APIVersionApplicationTypes = "6.0"
	APIVersionNodes            = "6.3"
	APIVersionServices         = "6.0"
	APIVersionPartitions       = "6.0"
	APIVersionReplicas         = "6.0"
	APIVersionBackupRestore    = "6.4"
	APIVersionCluster          = "6.4"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 60 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second

	// StreamFinalResultTimeout bounds how long a page stream waits to hand
	// its last result to a receiver after cancellation.
	StreamFinalResultTimeout = time.Second

	// DefaultServerTimeout is the gateway side timeout in seconds.
	DefaultServerTimeout = 60
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit limits concurrent drains.
	DefaultConcurrencyLimit = 3

	// MaxConcurrencyLimit caps --concurrency.
	MaxConcurrencyLimit = 16
)

// Authentication.
const (
	// DefaultAuthorityHost is the Azure AD login endpoint.
	DefaultAuthorityHost = "https://login.microsoftonline.com"

	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second
)

// Cache sizes and lifetimes.
const (
	// DefaultCacheSize is the default cache size limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// MaxCacheValueSize is the maximum size for cached values (1MB).
	MaxCacheValueSize = 1024 * 1024

	// DefaultNATSBucket is the key-value bucket used by the NATS cache.
	DefaultNATSBucket = "sfctl-cache"
)

// Display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// StringTruncationLength is the default length for truncating strings.
	StringTruncationLength = 60
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Boolean string constants.
const (
	// BooleanTrue string representation.
	BooleanTrue = "true"

	// BooleanFalse string representation.
	BooleanFalse = "false"
)
