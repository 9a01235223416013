package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/sfctl/internal/http"
	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

// ServicesClient implements sf.ServicesClient.
type ServicesClient struct {
	pagedResource[sf.ServiceInfo]
}

// NewServicesClient creates a new services client.
func NewServicesClient(httpClient *http.Client, logger sf.Logger) *ServicesClient {
	return &ServicesClient{
		pagedResource: newPagedResource[sf.ServiceInfo](httpClient, logger, "services"),
	}
}

func servicesPath(opts *sf.ServiceListOptions) (string, error) {
	if opts == nil || opts.ApplicationID == "" {
		return "", fmt.Errorf("listing services: application %w", sf.ErrIDRequired)
	}

	return "/Applications/" + url.PathEscape(opts.ApplicationID) + "/$/GetServices", nil
}

// List implements sf.ServicesClient.List.
func (c *ServicesClient) List(ctx context.Context, opts *sf.ServiceListOptions, token sf.ContinuationToken) (*sf.PagedList[sf.ServiceInfo], error) {
	path, err := servicesPath(opts)
	if err != nil {
		return nil, err
	}

	return c.list(ctx, path, opts.QueryParams(), token)
}

// Fetcher implements sf.ServicesClient.Fetcher. A missing application id
// surfaces on the first fetch.
func (c *ServicesClient) Fetcher(opts *sf.ServiceListOptions) sf.FetchFunc[sf.ServiceInfo] {
	path, err := servicesPath(opts)
	if err != nil {
		return failingFetch[sf.ServiceInfo](err)
	}

	return c.fetcher(path, opts.QueryParams())
}

// ListAll implements sf.ServicesClient.ListAll.
func (c *ServicesClient) ListAll(ctx context.Context, opts *sf.ServiceListOptions, emit sf.EmitFunc[sf.ServiceInfo]) (sf.DrainResult, error) {
	path, err := servicesPath(opts)
	if err != nil {
		return sf.DrainResult{Outcome: sf.DrainFailed}, err
	}

	return c.listAll(ctx, path, opts.QueryParams(), emit)
}

// PartitionsClient implements sf.PartitionsClient.
type PartitionsClient struct {
	pagedResource[sf.ServicePartitionInfo]
}

// NewPartitionsClient creates a new partitions client.
func NewPartitionsClient(httpClient *http.Client, logger sf.Logger) *PartitionsClient {
	return &PartitionsClient{
		pagedResource: newPagedResource[sf.ServicePartitionInfo](httpClient, logger, "partitions"),
	}
}

func partitionsPath(opts *sf.PartitionListOptions) (string, error) {
	if opts == nil || opts.ServiceID == "" {
		return "", fmt.Errorf("listing partitions: service %w", sf.ErrIDRequired)
	}

	return "/Services/" + url.PathEscape(opts.ServiceID) + "/$/GetPartitions", nil
}

// List implements sf.PartitionsClient.List.
func (c *PartitionsClient) List(
	ctx context.Context,
	opts *sf.PartitionListOptions,
	token sf.ContinuationToken,
) (*sf.PagedList[sf.ServicePartitionInfo], error) {
	path, err := partitionsPath(opts)
	if err != nil {
		return nil, err
	}

	return c.list(ctx, path, opts.QueryParams(), token)
}

// Fetcher implements sf.PartitionsClient.Fetcher.
func (c *PartitionsClient) Fetcher(opts *sf.PartitionListOptions) sf.FetchFunc[sf.ServicePartitionInfo] {
	path, err := partitionsPath(opts)
	if err != nil {
		return failingFetch[sf.ServicePartitionInfo](err)
	}

	return c.fetcher(path, opts.QueryParams())
}

// ListAll implements sf.PartitionsClient.ListAll.
func (c *PartitionsClient) ListAll(
	ctx context.Context,
	opts *sf.PartitionListOptions,
	emit sf.EmitFunc[sf.ServicePartitionInfo],
) (sf.DrainResult, error) {
	path, err := partitionsPath(opts)
	if err != nil {
		return sf.DrainResult{Outcome: sf.DrainFailed}, err
	}

	return c.listAll(ctx, path, opts.QueryParams(), emit)
}

// ReplicasClient implements sf.ReplicasClient.
type ReplicasClient struct {
	pagedResource[sf.ReplicaInfo]
}

// NewReplicasClient creates a new replicas client.
func NewReplicasClient(httpClient *http.Client, logger sf.Logger) *ReplicasClient {
	return &ReplicasClient{
		pagedResource: newPagedResource[sf.ReplicaInfo](httpClient, logger, "replicas"),
	}
}

func replicasPath(opts *sf.ReplicaListOptions) (string, error) {
	if opts == nil || opts.PartitionID == "" {
		return "", fmt.Errorf("listing replicas: partition %w", sf.ErrIDRequired)
	}

	return "/Partitions/" + url.PathEscape(opts.PartitionID) + "/$/GetReplicas", nil
}

// List implements sf.ReplicasClient.List.
func (c *ReplicasClient) List(ctx context.Context, opts *sf.ReplicaListOptions, token sf.ContinuationToken) (*sf.PagedList[sf.ReplicaInfo], error) {
	path, err := replicasPath(opts)
	if err != nil {
		return nil, err
	}

	return c.list(ctx, path, opts.QueryParams(), token)
}

// Fetcher implements sf.ReplicasClient.Fetcher.
func (c *ReplicasClient) Fetcher(opts *sf.ReplicaListOptions) sf.FetchFunc[sf.ReplicaInfo] {
	path, err := replicasPath(opts)
	if err != nil {
		return failingFetch[sf.ReplicaInfo](err)
	}

	return c.fetcher(path, opts.QueryParams())
}

// ListAll implements sf.ReplicasClient.ListAll.
func (c *ReplicasClient) ListAll(ctx context.Context, opts *sf.ReplicaListOptions, emit sf.EmitFunc[sf.ReplicaInfo]) (sf.DrainResult, error) {
	path, err := replicasPath(opts)
	if err != nil {
		return sf.DrainResult{Outcome: sf.DrainFailed}, err
	}

	return c.listAll(ctx, path, opts.QueryParams(), emit)
}

func failingFetch[T any](err error) sf.FetchFunc[T] {
	return func(context.Context, sf.ContinuationToken) (*sf.PagedList[T], error) {
		return nil, err
	}
}
