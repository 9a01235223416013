package sf

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// FabricError is the error object returned by the Service Fabric gateway.
type FabricError struct {
	Code    string `json:"Code"    yaml:"code"`
	Message string `json:"Message" yaml:"message"`
}

// Error implements the error interface.
func (e *FabricError) Error() string {
	if e.Message == "" {
		return e.Code
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ResponseError is a non-2xx response from the gateway.
type ResponseError struct {
	StatusCode int          `json:"-"`
	Err        *FabricError `json:"Error"`
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("%s (status: %d)", e.Err.Error(), e.StatusCode)
}

// Unwrap exposes the FabricError to errors.As.
func (e *ResponseError) Unwrap() error {
	if e.Err == nil {
		return nil
	}

	return e.Err
}

// Common Service Fabric error codes.
const (
	ErrorCodeApplicationNotFound     = "FABRIC_E_APPLICATION_NOT_FOUND"
	ErrorCodeApplicationTypeNotFound = "FABRIC_E_APPLICATION_TYPE_NOT_FOUND"
	ErrorCodeNodeNotFound            = "FABRIC_E_NODE_NOT_FOUND"
	ErrorCodeServiceDoesNotExist     = "FABRIC_E_SERVICE_DOES_NOT_EXIST"
	ErrorCodePartitionNotFound       = "FABRIC_E_PARTITION_NOT_FOUND"
	ErrorCodeBackupPolicyNotExisting = "FABRIC_E_BACKUP_POLICY_NOT_EXISTING"
	ErrorCodeTimeout                 = "FABRIC_E_TIMEOUT"
	ErrorCodeInvalidArgument         = "E_INVALIDARG"
	ErrorCodeAccessDenied            = "E_ACCESSDENIED"
)

//nolint:gochecknoglobals // Lookup table of not-found codes
var notFoundCodes = map[string]struct{}{
	ErrorCodeApplicationNotFound:     {},
	ErrorCodeApplicationTypeNotFound: {},
	ErrorCodeNodeNotFound:            {},
	ErrorCodeServiceDoesNotExist:     {},
	ErrorCodePartitionNotFound:       {},
	ErrorCodeBackupPolicyNotExisting: {},
}

// Common static errors that can be wrapped with context.
var (
	ErrMalformedPage      = errors.New("malformed page")
	ErrNoMoreItems        = errors.New("no more items")
	ErrConfigRequired     = errors.New("config is required")
	ErrEndpointRequired   = errors.New("cluster endpoint is required")
	ErrInvalidConfig      = errors.New("invalid config")
	ErrIDRequired         = errors.New("identifier is required")
	ErrCertificateKeyPair = errors.New("client certificate and key must be provided together")
	ErrInvalidCABundle    = errors.New("no certificates found in CA bundle")
	ErrThumbprintWithCA   = errors.New("server thumbprint and CA bundle are mutually exclusive")
	ErrCacheMiss          = errors.New("key not found")
	ErrCacheEntryExpired  = errors.New("entry expired")
)

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	fabricErr := &FabricError{}
	if errors.As(err, &fabricErr) {
		_, ok := notFoundCodes[fabricErr.Code]

		return ok
	}

	return statusIs(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	return statusIs(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is an authorization failure.
func IsForbidden(err error) bool {
	fabricErr := &FabricError{}
	if errors.As(err, &fabricErr) && fabricErr.Code == ErrorCodeAccessDenied {
		return true
	}

	return statusIs(err, http.StatusForbidden)
}

// IsTimeout checks if the gateway reported an operation timeout.
func IsTimeout(err error) bool {
	fabricErr := &FabricError{}
	if errors.As(err, &fabricErr) && fabricErr.Code == ErrorCodeTimeout {
		return true
	}

	return statusIs(err, http.StatusGatewayTimeout)
}

func statusIs(err error, status int) bool {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		return respErr.StatusCode == status
	}

	return false
}

// ParseResponseError parses an error response body.
func ParseResponseError(statusCode int, data []byte) *ResponseError {
	respErr := &ResponseError{StatusCode: statusCode}

	if len(data) == 0 {
		return respErr
	}

	err := json.Unmarshal(data, respErr)
	if err != nil || respErr.Err == nil || respErr.Err.Code == "" {
		respErr.Err = nil
	}

	return respErr
}
