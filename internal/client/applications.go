package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/sfctl/internal/constants"
	"github.com/fivetwenty-io/sfctl/internal/http"
	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

// ApplicationsClient implements sf.ApplicationsClient.
type ApplicationsClient struct {
	pagedResource[sf.ApplicationInfo]
}

// NewApplicationsClient creates a new applications client.
func NewApplicationsClient(httpClient *http.Client, logger sf.Logger) *ApplicationsClient {
	return &ApplicationsClient{
		pagedResource: newPagedResource[sf.ApplicationInfo](httpClient, logger, "applications"),
	}
}

// Get implements sf.ApplicationsClient.Get.
func (c *ApplicationsClient) Get(ctx context.Context, applicationID string) (*sf.ApplicationInfo, error) {
	if applicationID == "" {
		return nil, fmt.Errorf("getting application: %w", sf.ErrIDRequired)
	}

	path := "/Applications/" + url.PathEscape(applicationID)

	return getJSON[sf.ApplicationInfo](ctx, c.httpClient, path, constants.APIVersionApplications, "application")
}

// List implements sf.ApplicationsClient.List.
func (c *ApplicationsClient) List(
	ctx context.Context,
	opts *sf.ApplicationListOptions,
	token sf.ContinuationToken,
) (*sf.PagedList[sf.ApplicationInfo], error) {
	return c.list(ctx, "/Applications", opts.QueryParams(), token)
}

// Fetcher implements sf.ApplicationsClient.Fetcher.
func (c *ApplicationsClient) Fetcher(opts *sf.ApplicationListOptions) sf.FetchFunc[sf.ApplicationInfo] {
	return c.fetcher("/Applications", opts.QueryParams())
}

// ListAll implements sf.ApplicationsClient.ListAll.
func (c *ApplicationsClient) ListAll(
	ctx context.Context,
	opts *sf.ApplicationListOptions,
	emit sf.EmitFunc[sf.ApplicationInfo],
) (sf.DrainResult, error) {
	return c.listAll(ctx, "/Applications", opts.QueryParams(), emit)
}

// ApplicationTypesClient implements sf.ApplicationTypesClient.
type ApplicationTypesClient struct {
	pagedResource[sf.ApplicationTypeInfo]
}

// NewApplicationTypesClient creates a new application types client.
func NewApplicationTypesClient(httpClient *http.Client, logger sf.Logger) *ApplicationTypesClient {
	return &ApplicationTypesClient{
		pagedResource: newPagedResource[sf.ApplicationTypeInfo](httpClient, logger, "application types"),
	}
}

// List implements sf.ApplicationTypesClient.List.
func (c *ApplicationTypesClient) List(
	ctx context.Context,
	opts *sf.ApplicationTypeListOptions,
	token sf.ContinuationToken,
) (*sf.PagedList[sf.ApplicationTypeInfo], error) {
	return c.list(ctx, "/ApplicationTypes", opts.QueryParams(), token)
}

// Fetcher implements sf.ApplicationTypesClient.Fetcher.
func (c *ApplicationTypesClient) Fetcher(opts *sf.ApplicationTypeListOptions) sf.FetchFunc[sf.ApplicationTypeInfo] {
	return c.fetcher("/ApplicationTypes", opts.QueryParams())
}

// ListAll implements sf.ApplicationTypesClient.ListAll.
func (c *ApplicationTypesClient) ListAll(
	ctx context.Context,
	opts *sf.ApplicationTypeListOptions,
	emit sf.EmitFunc[sf.ApplicationTypeInfo],
) (sf.DrainResult, error) {
	return c.listAll(ctx, "/ApplicationTypes", opts.QueryParams(), emit)
}
