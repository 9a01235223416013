package sf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ContinuationToken is the opaque resume marker of a paged collection.
//
// The zero value is both the "empty" token and the call-site default: either
// one asks the server for the start of the collection. Tokens are values and
// are never mutated; each page carries a new one.
type ContinuationToken struct {
	value string
}

// EmptyContinuationToken starts a listing from the beginning of a collection.
//
//nolint:gochecknoglobals // Exported sentinel value, immutable by construction
var EmptyContinuationToken = ContinuationToken{}

// NewContinuationToken wraps a server supplied token value.
func NewContinuationToken(value string) ContinuationToken {
	return ContinuationToken{value: value}
}

// String returns the raw token value.
func (t ContinuationToken) String() string {
	return t.value
}

// HasNext reports whether the server signalled that another page exists.
func (t ContinuationToken) HasNext() bool {
	return t.value != ""
}

// IsEmpty reports whether the token carries no value.
func (t ContinuationToken) IsEmpty() bool {
	return t.value == ""
}

// MarshalJSON implements json.Marshaler.
func (t ContinuationToken) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(t.value)
	if err != nil {
		return nil, fmt.Errorf("encoding continuation token: %w", err)
	}

	return data, nil
}

// UnmarshalJSON accepts a JSON string or null. Any other shape means the
// server sent a cursor this client cannot read.
func (t *ContinuationToken) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		t.value = ""

		return nil
	}

	var value string

	err := json.Unmarshal(trimmed, &value)
	if err != nil {
		return fmt.Errorf("%w: continuation token is not a string: %s", ErrMalformedPage, string(trimmed))
	}

	t.value = value

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t ContinuationToken) MarshalYAML() (interface{}, error) {
	return t.value, nil
}

// PagedList is one page of a Service Fabric list response.
type PagedList[T any] struct {
	ContinuationToken ContinuationToken `json:"ContinuationToken" yaml:"continuation_token"`
	Items             []T               `json:"Items"             yaml:"items"`
}

// UnmarshalJSON requires the ContinuationToken key. An empty or null token
// ends the collection; a page without the key is malformed.
func (p *PagedList[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var fields map[string]json.RawMessage

	err := json.Unmarshal(data, &fields)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPage, err)
	}

	rawToken, ok := fields["ContinuationToken"]
	if !ok {
		return fmt.Errorf("%w: page has no ContinuationToken", ErrMalformedPage)
	}

	var (
		token ContinuationToken
		items []T
	)

	err = token.UnmarshalJSON(rawToken)
	if err != nil {
		return err
	}

	if rawItems, ok := fields["Items"]; ok {
		err = json.Unmarshal(rawItems, &items)
		if err != nil {
			return fmt.Errorf("%w: items: %w", ErrMalformedPage, err)
		}
	}

	p.ContinuationToken = token
	p.Items = items

	return nil
}

// QueryParams holds the query parameters shared by Service Fabric endpoints.
type QueryParams struct {
	APIVersion        string
	ContinuationToken ContinuationToken
	MaxResults        int64
	// Timeout is the server side operation timeout in seconds.
	Timeout int
	Filters map[string]string
}

// NewQueryParams creates empty query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string]string),
	}
}

// WithAPIVersion sets the api-version parameter.
func (q *QueryParams) WithAPIVersion(version string) *QueryParams {
	q.APIVersion = version

	return q
}

// WithContinuationToken sets the continuation token.
func (q *QueryParams) WithContinuationToken(token ContinuationToken) *QueryParams {
	q.ContinuationToken = token

	return q
}

// WithMaxResults sets the maximum number of results per page.
func (q *QueryParams) WithMaxResults(maxResults int64) *QueryParams {
	q.MaxResults = maxResults

	return q
}

// WithTimeout sets the server side timeout in seconds.
func (q *QueryParams) WithTimeout(seconds int) *QueryParams {
	q.Timeout = seconds

	return q
}

// WithFilter sets an endpoint specific filter. Empty values are ignored.
func (q *QueryParams) WithFilter(key, value string) *QueryParams {
	if value == "" {
		return q
	}

	if q.Filters == nil {
		q.Filters = make(map[string]string)
	}

	q.Filters[key] = value

	return q
}

// Clone returns a copy that can be modified independently.
func (q *QueryParams) Clone() *QueryParams {
	clone := *q

	clone.Filters = make(map[string]string, len(q.Filters))
	for key, value := range q.Filters {
		clone.Filters[key] = value
	}

	return &clone
}

// ToValues converts the parameters to url.Values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q.APIVersion != "" {
		values.Set("api-version", q.APIVersion)
	}

	if !q.ContinuationToken.IsEmpty() {
		values.Set("ContinuationToken", q.ContinuationToken.String())
	}

	if q.MaxResults > 0 {
		values.Set("MaxResults", strconv.FormatInt(q.MaxResults, 10))
	}

	if q.Timeout > 0 {
		values.Set("timeout", strconv.Itoa(q.Timeout))
	}

	for key, value := range q.Filters {
		if strings.TrimSpace(value) != "" {
			values.Set(key, value)
		}
	}

	return values
}
