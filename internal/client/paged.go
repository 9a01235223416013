package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/sfctl/internal/http"
	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

// pagedResource is the shared plumbing behind every list endpoint: one
// request per page, the continuation token threaded through the query, and
// DrainAll for the full collection.
type pagedResource[T any] struct {
	httpClient *http.Client
	logger     sf.Logger
	// resource names the collection in errors, e.g. "nodes".
	resource string
}

func newPagedResource[T any](httpClient *http.Client, logger sf.Logger, resource string) pagedResource[T] {
	return pagedResource[T]{
		httpClient: httpClient,
		logger:     logger,
		resource:   resource,
	}
}

// list fetches the page of path that starts at token.
func (r *pagedResource[T]) list(
	ctx context.Context,
	path string,
	params *sf.QueryParams,
	token sf.ContinuationToken,
) (*sf.PagedList[T], error) {
	query := params.Clone().WithContinuationToken(token).ToValues()

	resp, err := r.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.resource, err)
	}

	return decodePage[T](r.resource, resp.Body)
}

// fetcher binds path and params into a FetchFunc.
func (r *pagedResource[T]) fetcher(path string, params *sf.QueryParams) sf.FetchFunc[T] {
	return func(ctx context.Context, token sf.ContinuationToken) (*sf.PagedList[T], error) {
		return r.list(ctx, path, params, token)
	}
}

// listAll drains the collection at path into emit.
func (r *pagedResource[T]) listAll(
	ctx context.Context,
	path string,
	params *sf.QueryParams,
	emit sf.EmitFunc[T],
) (sf.DrainResult, error) {
	var opts []sf.DrainOption
	if r.logger != nil {
		opts = append(opts, sf.WithDrainLogger(r.logger))
	}

	return sf.DrainAll(ctx, r.fetcher(path, params), sf.EmptyContinuationToken, emit, opts...)
}

// decodePage parses a list body. An empty or null body is an absent page.
func decodePage[T any](resource string, body []byte) (*sf.PagedList[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil //nolint:nilnil // nil page is the absent page marker
	}

	var page sf.PagedList[T]

	err := json.Unmarshal(trimmed, &page)
	if err != nil {
		if errors.Is(err, sf.ErrMalformedPage) {
			return nil, fmt.Errorf("parsing %s list response: %w", resource, err)
		}

		return nil, fmt.Errorf("parsing %s list response: %w: %w", resource, sf.ErrMalformedPage, err)
	}

	return &page, nil
}

// getJSON reads a single resource.
func getJSON[T any](ctx context.Context, httpClient *http.Client, path, apiVersion, what string) (*T, error) {
	query := sf.NewQueryParams().WithAPIVersion(apiVersion).ToValues()

	resp, err := httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", what, err)
	}

	var result T

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", what, err)
	}

	return &result, nil
}
