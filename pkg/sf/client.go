package sf

import (
	"context"
	"time"
)

// ApplicationsClient lists and reads applications.
type ApplicationsClient interface {
	Get(ctx context.Context, applicationID string) (*ApplicationInfo, error)
	List(ctx context.Context, opts *ApplicationListOptions, token ContinuationToken) (*PagedList[ApplicationInfo], error)
	Fetcher(opts *ApplicationListOptions) FetchFunc[ApplicationInfo]
	ListAll(ctx context.Context, opts *ApplicationListOptions, emit EmitFunc[ApplicationInfo]) (DrainResult, error)
}

// ApplicationTypesClient lists provisioned application types.
type ApplicationTypesClient interface {
	List(ctx context.Context, opts *ApplicationTypeListOptions, token ContinuationToken) (*PagedList[ApplicationTypeInfo], error)
	Fetcher(opts *ApplicationTypeListOptions) FetchFunc[ApplicationTypeInfo]
	ListAll(ctx context.Context, opts *ApplicationTypeListOptions, emit EmitFunc[ApplicationTypeInfo]) (DrainResult, error)
}

// NodesClient lists and reads cluster nodes.
type NodesClient interface {
	Get(ctx context.Context, nodeName string) (*NodeInfo, error)
	List(ctx context.Context, opts *NodeListOptions, token ContinuationToken) (*PagedList[NodeInfo], error)
	Fetcher(opts *NodeListOptions) FetchFunc[NodeInfo]
	ListAll(ctx context.Context, opts *NodeListOptions, emit EmitFunc[NodeInfo]) (DrainResult, error)
}

// ServicesClient lists the services of an application.
type ServicesClient interface {
	List(ctx context.Context, opts *ServiceListOptions, token ContinuationToken) (*PagedList[ServiceInfo], error)
	Fetcher(opts *ServiceListOptions) FetchFunc[ServiceInfo]
	ListAll(ctx context.Context, opts *ServiceListOptions, emit EmitFunc[ServiceInfo]) (DrainResult, error)
}

// PartitionsClient lists the partitions of a service.
type PartitionsClient interface {
	List(ctx context.Context, opts *PartitionListOptions, token ContinuationToken) (*PagedList[ServicePartitionInfo], error)
	Fetcher(opts *PartitionListOptions) FetchFunc[ServicePartitionInfo]
	ListAll(ctx context.Context, opts *PartitionListOptions, emit EmitFunc[ServicePartitionInfo]) (DrainResult, error)
}

// ReplicasClient lists the replicas of a partition.
type ReplicasClient interface {
	List(ctx context.Context, opts *ReplicaListOptions, token ContinuationToken) (*PagedList[ReplicaInfo], error)
	Fetcher(opts *ReplicaListOptions) FetchFunc[ReplicaInfo]
	ListAll(ctx context.Context, opts *ReplicaListOptions, emit EmitFunc[ReplicaInfo]) (DrainResult, error)
}

// BackupPoliciesClient lists and reads backup policies.
type BackupPoliciesClient interface {
	Get(ctx context.Context, policyName string) (*BackupPolicyDescription, error)
	List(ctx context.Context, opts *BackupPolicyListOptions, token ContinuationToken) (*PagedList[BackupPolicyDescription], error)
	Fetcher(opts *BackupPolicyListOptions) FetchFunc[BackupPolicyDescription]
	ListAll(ctx context.Context, opts *BackupPolicyListOptions, emit EmitFunc[BackupPolicyDescription]) (DrainResult, error)
	ListEntities(ctx context.Context, opts *BackupEntityListOptions, token ContinuationToken) (*PagedList[BackupEntity], error)
	EntitiesFetcher(opts *BackupEntityListOptions) FetchFunc[BackupEntity]
	ListAllEntities(ctx context.Context, opts *BackupEntityListOptions, emit EmitFunc[BackupEntity]) (DrainResult, error)
}

// ApplicationResourceClients groups the application model clients.
type ApplicationResourceClients interface {
	Applications() ApplicationsClient
	ApplicationTypes() ApplicationTypesClient
	Services() ServicesClient
	Partitions() PartitionsClient
	Replicas() ReplicasClient
}

// ClusterResourceClients groups the cluster level clients.
type ClusterResourceClients interface {
	Nodes() NodesClient
	BackupPolicies() BackupPoliciesClient
}

// ClusterInfoClient reads cluster wide information.
type ClusterInfoClient interface {
	GetClusterVersion(ctx context.Context) (*ClusterVersion, error)
}

// Client is the Service Fabric management client.
type Client interface {
	ApplicationResourceClients
	ClusterResourceClients
	ClusterInfoClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building an sf.Client.
//
// # Authentication
//
// Service Fabric clusters are secured with X.509 client certificates or with
// Azure AD. The concrete client applies, in order:
//  1. ClientCertFile/ClientKeyFile: mutual TLS with the given key pair.
//  2. AccessToken: used directly as a static Bearer token.
//  3. TenantID/ClientID/ClientSecret: Azure AD client credentials grant for
//     the cluster application identified by Resource.
//  4. No credentials: requests are sent without authentication.
//
// Certificate authentication can be combined with a bearer token.
//
// # Timeouts and retries
//
// Per-request timeouts are controlled via the context passed to client
// methods and by HTTPTimeout. Transient failures (5xx, 429, connection errors)
// are retried according to RetryMax/RetryWaitMin/RetryWaitMax. A drain of a
// paged collection never has an aggregate timeout of its own.
type Config struct {
	// Endpoint is the HTTP gateway of the cluster, e.g. "https://cluster:19080".
	Endpoint string `validate:"required"`

	ClientCertFile string `validate:"required_with=ClientKeyFile"`
	ClientKeyFile  string `validate:"required_with=ClientCertFile"`
	// CAFile is a PEM bundle used to verify the cluster certificate.
	CAFile string
	// ServerCertThumbprint pins the cluster certificate when the cluster uses
	// a self signed certificate. Hex encoded SHA-1. The pin replaces chain
	// verification, so it cannot be combined with CAFile.
	ServerCertThumbprint string `validate:"omitempty,excluded_with=CAFile,hexadecimal,len=40"`

	AccessToken string

	TenantID     string `validate:"required_with=ClientSecret"`
	ClientID     string `validate:"required_with=ClientSecret"`
	ClientSecret string
	// Resource is the AAD application ID URI of the cluster.
	Resource string `validate:"required_with=ClientSecret"`
	// AuthorityHost overrides https://login.microsoftonline.com.
	AuthorityHost string `validate:"omitempty,url"`

	HTTPTimeout  time.Duration `validate:"gte=0"`
	RetryMax     int           `validate:"gte=0,lte=20"`
	RetryWaitMin time.Duration `validate:"gte=0"`
	RetryWaitMax time.Duration `validate:"gte=0"`

	// Debug enables HTTP request/response logging when a Logger is provided.
	Debug     bool
	Logger    Logger
	UserAgent string

	// Cache caches GET responses. Nil disables caching.
	Cache    *CacheConfig
	CacheTTL time.Duration `validate:"gte=0"`
}
