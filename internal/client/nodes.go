package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/sfctl/internal/constants"
	"github.com/fivetwenty-io/sfctl/internal/http"
	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

const nodesPath = "/Nodes"

// NodesClient implements sf.NodesClient.
type NodesClient struct {
	pagedResource[sf.NodeInfo]
}

// NewNodesClient creates a new nodes client.
func NewNodesClient(httpClient *http.Client, logger sf.Logger) *NodesClient {
	return &NodesClient{
		pagedResource: newPagedResource[sf.NodeInfo](httpClient, logger, "nodes"),
	}
}

// Get implements sf.NodesClient.Get.
func (c *NodesClient) Get(ctx context.Context, nodeName string) (*sf.NodeInfo, error) {
	if nodeName == "" {
		return nil, fmt.Errorf("getting node: %w", sf.ErrIDRequired)
	}

	return getJSON[sf.NodeInfo](ctx, c.httpClient, nodesPath+"/"+url.PathEscape(nodeName), constants.APIVersionNodes, "node")
}

// List implements sf.NodesClient.List.
func (c *NodesClient) List(ctx context.Context, opts *sf.NodeListOptions, token sf.ContinuationToken) (*sf.PagedList[sf.NodeInfo], error) {
	return c.list(ctx, nodesPath, opts.QueryParams(), token)
}

// Fetcher implements sf.NodesClient.Fetcher.
func (c *NodesClient) Fetcher(opts *sf.NodeListOptions) sf.FetchFunc[sf.NodeInfo] {
	return c.fetcher(nodesPath, opts.QueryParams())
}

// ListAll implements sf.NodesClient.ListAll.
func (c *NodesClient) ListAll(ctx context.Context, opts *sf.NodeListOptions, emit sf.EmitFunc[sf.NodeInfo]) (sf.DrainResult, error) {
	return c.listAll(ctx, nodesPath, opts.QueryParams(), emit)
}
