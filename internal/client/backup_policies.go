package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/sfctl/internal/constants"
	"github.com/fivetwenty-io/sfctl/internal/http"
	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

const backupPoliciesPath = "/BackupRestore/BackupPolicies"

// BackupPoliciesClient implements sf.BackupPoliciesClient.
type BackupPoliciesClient struct {
	pagedResource[sf.BackupPolicyDescription]

	entities pagedResource[sf.BackupEntity]
}

// NewBackupPoliciesClient creates a new backup policies client.
func NewBackupPoliciesClient(httpClient *http.Client, logger sf.Logger) *BackupPoliciesClient {
	return &BackupPoliciesClient{
		pagedResource: newPagedResource[sf.BackupPolicyDescription](httpClient, logger, "backup policies"),
		entities:      newPagedResource[sf.BackupEntity](httpClient, logger, "backup enabled entities"),
	}
}

// Get implements sf.BackupPoliciesClient.Get.
func (c *BackupPoliciesClient) Get(ctx context.Context, policyName string) (*sf.BackupPolicyDescription, error) {
	if policyName == "" {
		return nil, fmt.Errorf("getting backup policy: %w", sf.ErrIDRequired)
	}

	path := backupPoliciesPath + "/" + url.PathEscape(policyName)

	return getJSON[sf.BackupPolicyDescription](ctx, c.httpClient, path, constants.APIVersionBackupRestore, "backup policy")
}

// List implements sf.BackupPoliciesClient.List.
func (c *BackupPoliciesClient) List(
	ctx context.Context,
	opts *sf.BackupPolicyListOptions,
	token sf.ContinuationToken,
) (*sf.PagedList[sf.BackupPolicyDescription], error) {
	return c.list(ctx, backupPoliciesPath, opts.QueryParams(), token)
}

// Fetcher implements sf.BackupPoliciesClient.Fetcher.
func (c *BackupPoliciesClient) Fetcher(opts *sf.BackupPolicyListOptions) sf.FetchFunc[sf.BackupPolicyDescription] {
	return c.fetcher(backupPoliciesPath, opts.QueryParams())
}

// ListAll implements sf.BackupPoliciesClient.ListAll.
func (c *BackupPoliciesClient) ListAll(
	ctx context.Context,
	opts *sf.BackupPolicyListOptions,
	emit sf.EmitFunc[sf.BackupPolicyDescription],
) (sf.DrainResult, error) {
	return c.listAll(ctx, backupPoliciesPath, opts.QueryParams(), emit)
}

func backupEntitiesPath(opts *sf.BackupEntityListOptions) (string, error) {
	if opts == nil || opts.PolicyName == "" {
		return "", fmt.Errorf("listing backup enabled entities: policy %w", sf.ErrIDRequired)
	}

	return backupPoliciesPath + "/" + url.PathEscape(opts.PolicyName) + "/$/GetBackupEnabledEntities", nil
}

// ListEntities implements sf.BackupPoliciesClient.ListEntities.
func (c *BackupPoliciesClient) ListEntities(
	ctx context.Context,
	opts *sf.BackupEntityListOptions,
	token sf.ContinuationToken,
) (*sf.PagedList[sf.BackupEntity], error) {
	path, err := backupEntitiesPath(opts)
	if err != nil {
		return nil, err
	}

	return c.entities.list(ctx, path, opts.QueryParams(), token)
}

// EntitiesFetcher implements sf.BackupPoliciesClient.EntitiesFetcher.
func (c *BackupPoliciesClient) EntitiesFetcher(opts *sf.BackupEntityListOptions) sf.FetchFunc[sf.BackupEntity] {
	path, err := backupEntitiesPath(opts)
	if err != nil {
		return failingFetch[sf.BackupEntity](err)
	}

	return c.entities.fetcher(path, opts.QueryParams())
}

// ListAllEntities implements sf.BackupPoliciesClient.ListAllEntities.
func (c *BackupPoliciesClient) ListAllEntities(
	ctx context.Context,
	opts *sf.BackupEntityListOptions,
	emit sf.EmitFunc[sf.BackupEntity],
) (sf.DrainResult, error) {
	path, err := backupEntitiesPath(opts)
	if err != nil {
		return sf.DrainResult{Outcome: sf.DrainFailed}, err
	}

	return c.entities.listAll(ctx, path, opts.QueryParams(), emit)
}
