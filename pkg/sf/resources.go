package sf

import (
	"strconv"

	"github.com/fivetwenty-io/sfctl/internal/constants"
)

// ApplicationParameter is a name/value override of an application.
type ApplicationParameter struct {
	Key   string `json:"Key"   yaml:"key"`
	Value string `json:"Value" yaml:"value"`
}

// ApplicationInfo describes a deployed application.
type ApplicationInfo struct {
	ID                        string                 `json:"Id"                        yaml:"id"`
	Name                      string                 `json:"Name"                      yaml:"name"`
	TypeName                  string                 `json:"TypeName"                  yaml:"type_name"`
	TypeVersion               string                 `json:"TypeVersion"               yaml:"type_version"`
	Status                    string                 `json:"Status"                    yaml:"status"`
	Parameters                []ApplicationParameter `json:"Parameters,omitempty"      yaml:"parameters,omitempty"`
	HealthState               string                 `json:"HealthState"               yaml:"health_state"`
	ApplicationDefinitionKind string                 `json:"ApplicationDefinitionKind" yaml:"application_definition_kind"`
}

// ApplicationTypeInfo describes a provisioned application type version.
type ApplicationTypeInfo struct {
	Name                          string                 `json:"Name"                          yaml:"name"`
	Version                       string                 `json:"Version"                       yaml:"version"`
	DefaultParameterList          []ApplicationParameter `json:"DefaultParameterList,omitempty" yaml:"default_parameter_list,omitempty"`
	Status                        string                 `json:"Status"                        yaml:"status"`
	StatusDetails                 string                 `json:"StatusDetails,omitempty"       yaml:"status_details,omitempty"`
	ApplicationTypeDefinitionKind string                 `json:"ApplicationTypeDefinitionKind" yaml:"application_type_definition_kind"`
}

// NodeID is the internal identifier of a node.
type NodeID struct {
	ID string `json:"Id" yaml:"id"`
}

// NodeInfo describes a cluster node.
type NodeInfo struct {
	Name                string `json:"Name"                yaml:"name"`
	IPAddressOrFQDN     string `json:"IpAddressOrFQDN"     yaml:"ip_address_or_fqdn"`
	Type                string `json:"Type"                yaml:"type"`
	CodeVersion         string `json:"CodeVersion"         yaml:"code_version"`
	ConfigVersion       string `json:"ConfigVersion"       yaml:"config_version"`
	NodeStatus          string `json:"NodeStatus"          yaml:"node_status"`
	NodeUpTimeInSeconds string `json:"NodeUpTimeInSeconds" yaml:"node_up_time_in_seconds"`
	HealthState         string `json:"HealthState"         yaml:"health_state"`
	IsSeedNode          bool   `json:"IsSeedNode"          yaml:"is_seed_node"`
	UpgradeDomain       string `json:"UpgradeDomain"       yaml:"upgrade_domain"`
	FaultDomain         string `json:"FaultDomain"         yaml:"fault_domain"`
	ID                  NodeID `json:"Id"                  yaml:"id"`
	InstanceID          string `json:"InstanceId"          yaml:"instance_id"`
	IsStopped           bool   `json:"IsStopped"           yaml:"is_stopped"`
}

// ServiceInfo describes a service of an application.
type ServiceInfo struct {
	ID                string `json:"Id"                          yaml:"id"`
	ServiceKind       string `json:"ServiceKind"                 yaml:"service_kind"`
	Name              string `json:"Name"                        yaml:"name"`
	TypeName          string `json:"TypeName"                    yaml:"type_name"`
	ManifestVersion   string `json:"ManifestVersion"             yaml:"manifest_version"`
	HealthState       string `json:"HealthState"                 yaml:"health_state"`
	ServiceStatus     string `json:"ServiceStatus"               yaml:"service_status"`
	IsServiceGroup    bool   `json:"IsServiceGroup"              yaml:"is_service_group"`
	HasPersistedState bool   `json:"HasPersistedState,omitempty" yaml:"has_persisted_state,omitempty"`
}

// PartitionInformation identifies a partition and its key range.
type PartitionInformation struct {
	ServicePartitionKind string `json:"ServicePartitionKind" yaml:"service_partition_kind"`
	ID                   string `json:"Id"                   yaml:"id"`
	LowKey               string `json:"LowKey,omitempty"     yaml:"low_key,omitempty"`
	HighKey              string `json:"HighKey,omitempty"    yaml:"high_key,omitempty"`
	Name                 string `json:"Name,omitempty"       yaml:"name,omitempty"`
}

// ServicePartitionInfo describes a partition of a service.
type ServicePartitionInfo struct {
	ServiceKind          string               `json:"ServiceKind"                    yaml:"service_kind"`
	HealthState          string               `json:"HealthState"                    yaml:"health_state"`
	PartitionStatus      string               `json:"PartitionStatus"                yaml:"partition_status"`
	PartitionInformation PartitionInformation `json:"PartitionInformation"           yaml:"partition_information"`
	TargetReplicaSetSize int64                `json:"TargetReplicaSetSize,omitempty" yaml:"target_replica_set_size,omitempty"`
	MinReplicaSetSize    int64                `json:"MinReplicaSetSize,omitempty"    yaml:"min_replica_set_size,omitempty"`
	InstanceCount        int64                `json:"InstanceCount,omitempty"        yaml:"instance_count,omitempty"`
}

// ReplicaInfo describes a replica (stateful) or instance (stateless).
type ReplicaInfo struct {
	ServiceKind                  string `json:"ServiceKind"                  yaml:"service_kind"`
	ReplicaID                    string `json:"ReplicaId,omitempty"          yaml:"replica_id,omitempty"`
	InstanceID                   string `json:"InstanceId,omitempty"         yaml:"instance_id,omitempty"`
	ReplicaRole                  string `json:"ReplicaRole,omitempty"        yaml:"replica_role,omitempty"`
	ReplicaStatus                string `json:"ReplicaStatus"                yaml:"replica_status"`
	HealthState                  string `json:"HealthState"                  yaml:"health_state"`
	NodeName                     string `json:"NodeName"                     yaml:"node_name"`
	Address                      string `json:"Address"                      yaml:"address"`
	LastInBuildDurationInSeconds string `json:"LastInBuildDurationInSeconds" yaml:"last_in_build_duration_in_seconds"`
}

// Identity returns the replica id, or the instance id for stateless services.
func (r *ReplicaInfo) Identity() string {
	if r.ReplicaID != "" {
		return r.ReplicaID
	}

	return r.InstanceID
}

// BackupSchedule is the schedule of a backup policy.
type BackupSchedule struct {
	ScheduleKind          string   `json:"ScheduleKind"                    yaml:"schedule_kind"`
	Interval              string   `json:"Interval,omitempty"              yaml:"interval,omitempty"`
	ScheduleFrequencyType string   `json:"ScheduleFrequencyType,omitempty" yaml:"schedule_frequency_type,omitempty"`
	RunDays               []string `json:"RunDays,omitempty"               yaml:"run_days,omitempty"`
	RunTimes              []string `json:"RunTimes,omitempty"              yaml:"run_times,omitempty"`
}

// BackupStorage is the storage target of a backup policy.
type BackupStorage struct {
	StorageKind   string `json:"StorageKind"             yaml:"storage_kind"`
	FriendlyName  string `json:"FriendlyName,omitempty"  yaml:"friendly_name,omitempty"`
	Path          string `json:"Path,omitempty"          yaml:"path,omitempty"`
	ContainerName string `json:"ContainerName,omitempty" yaml:"container_name,omitempty"`
	// ConnectionString is never rendered.
	ConnectionString string `json:"ConnectionString,omitempty" yaml:"-"`
}

// RetentionPolicy controls how long backups are kept.
type RetentionPolicy struct {
	RetentionPolicyType    string `json:"RetentionPolicyType"              yaml:"retention_policy_type"`
	RetentionDuration      string `json:"RetentionDuration,omitempty"      yaml:"retention_duration,omitempty"`
	MinimumNumberOfBackups int    `json:"MinimumNumberOfBackups,omitempty" yaml:"minimum_number_of_backups,omitempty"`
}

// BackupPolicyDescription describes a backup policy.
type BackupPolicyDescription struct {
	Name                  string           `json:"Name"                      yaml:"name"`
	AutoRestoreOnDataLoss bool             `json:"AutoRestoreOnDataLoss"     yaml:"auto_restore_on_data_loss"`
	MaxIncrementalBackups int              `json:"MaxIncrementalBackups"     yaml:"max_incremental_backups"`
	Schedule              BackupSchedule   `json:"Schedule"                  yaml:"schedule"`
	Storage               BackupStorage    `json:"Storage"                   yaml:"storage"`
	RetentionPolicy       *RetentionPolicy `json:"RetentionPolicy,omitempty" yaml:"retention_policy,omitempty"`
}

// BackupEntity is an application, service or partition with backup enabled.
type BackupEntity struct {
	EntityKind      string `json:"EntityKind"                yaml:"entity_kind"`
	ApplicationName string `json:"ApplicationName,omitempty" yaml:"application_name,omitempty"`
	ServiceName     string `json:"ServiceName,omitempty"     yaml:"service_name,omitempty"`
	PartitionID     string `json:"PartitionId,omitempty"     yaml:"partition_id,omitempty"`
}

// Target returns the most specific name of the entity.
func (e *BackupEntity) Target() string {
	switch {
	case e.PartitionID != "":
		return e.PartitionID
	case e.ServiceName != "":
		return e.ServiceName
	default:
		return e.ApplicationName
	}
}

// ClusterVersion is the fabric code version of the cluster.
type ClusterVersion struct {
	Version string `json:"Version" yaml:"version"`
}

// ListOptions converts a typed list request into query parameters.
type ListOptions interface {
	QueryParams() *QueryParams
}

// PageOptions are the paging controls shared by every list request.
type PageOptions struct {
	// MaxResults limits items per page. Zero lets the server decide.
	MaxResults int64
	// Timeout is the server side timeout in seconds.
	Timeout int
}

func (o PageOptions) apply(params *QueryParams) *QueryParams {
	return params.WithMaxResults(o.MaxResults).WithTimeout(o.Timeout)
}

// ApplicationListOptions filters GET /Applications.
type ApplicationListOptions struct {
	PageOptions

	ApplicationTypeName          string
	ApplicationDefinitionKind    int
	ExcludeApplicationParameters bool
}

// QueryParams implements ListOptions.
func (o *ApplicationListOptions) QueryParams() *QueryParams {
	params := NewQueryParams().WithAPIVersion(constants.APIVersionApplications)
	if o == nil {
		return params
	}

	params.WithFilter("ApplicationTypeName", o.ApplicationTypeName)

	if o.ApplicationDefinitionKind != 0 {
		params.WithFilter("ApplicationDefinitionKindFilter", strconv.Itoa(o.ApplicationDefinitionKind))
	}

	if o.ExcludeApplicationParameters {
		params.WithFilter("ExcludeApplicationParameters", "true")
	}

	return o.apply(params)
}

// ApplicationTypeListOptions filters GET /ApplicationTypes.
type ApplicationTypeListOptions struct {
	PageOptions

	ApplicationTypeDefinitionKind int
	ExcludeApplicationParameters  bool
}

// QueryParams implements ListOptions.
func (o *ApplicationTypeListOptions) QueryParams() *QueryParams {
	params := NewQueryParams().WithAPIVersion(constants.APIVersionApplicationTypes)
	if o == nil {
		return params
	}

	if o.ApplicationTypeDefinitionKind != 0 {
		params.WithFilter("ApplicationTypeDefinitionKindFilter", strconv.Itoa(o.ApplicationTypeDefinitionKind))
	}

	if o.ExcludeApplicationParameters {
		params.WithFilter("ExcludeApplicationParameters", "true")
	}

	return o.apply(params)
}

// NodeListOptions filters GET /Nodes.
type NodeListOptions struct {
	PageOptions

	// NodeStatusFilter is one of default, all, up, down, enabling, disabling,
	// disabled, unknown, removed.
	NodeStatusFilter string
}

// QueryParams implements ListOptions.
func (o *NodeListOptions) QueryParams() *QueryParams {
	params := NewQueryParams().WithAPIVersion(constants.APIVersionNodes)
	if o == nil {
		return params
	}

	params.WithFilter("NodeStatusFilter", o.NodeStatusFilter)

	return o.apply(params)
}

// ServiceListOptions filters GET /Applications/{id}/$/GetServices.
type ServiceListOptions struct {
	PageOptions

	ApplicationID   string
	ServiceTypeName string
}

// QueryParams implements ListOptions.
func (o *ServiceListOptions) QueryParams() *QueryParams {
	params := NewQueryParams().WithAPIVersion(constants.APIVersionServices)
	if o == nil {
		return params
	}

	params.WithFilter("ServiceTypeName", o.ServiceTypeName)

	return o.apply(params)
}

// PartitionListOptions filters GET /Services/{id}/$/GetPartitions.
type PartitionListOptions struct {
	PageOptions

	ServiceID string
}

// QueryParams implements ListOptions.
func (o *PartitionListOptions) QueryParams() *QueryParams {
	params := NewQueryParams().WithAPIVersion(constants.APIVersionPartitions)
	if o == nil {
		return params
	}

	return o.apply(params)
}

// ReplicaListOptions filters GET /Partitions/{id}/$/GetReplicas.
type ReplicaListOptions struct {
	PageOptions

	PartitionID string
}

// QueryParams implements ListOptions.
func (o *ReplicaListOptions) QueryParams() *QueryParams {
	params := NewQueryParams().WithAPIVersion(constants.APIVersionReplicas)
	if o == nil {
		return params
	}

	return o.apply(params)
}

// BackupPolicyListOptions filters GET /BackupRestore/BackupPolicies.
type BackupPolicyListOptions struct {
	PageOptions
}

// QueryParams implements ListOptions.
func (o *BackupPolicyListOptions) QueryParams() *QueryParams {
	params := NewQueryParams().WithAPIVersion(constants.APIVersionBackupRestore)
	if o == nil {
		return params
	}

	return o.apply(params)
}

// BackupEntityListOptions filters
// GET /BackupRestore/BackupPolicies/{name}/$/GetBackupEnabledEntities.
type BackupEntityListOptions struct {
	PageOptions

	PolicyName string
}

// QueryParams implements ListOptions.
func (o *BackupEntityListOptions) QueryParams() *QueryParams {
	params := NewQueryParams().WithAPIVersion(constants.APIVersionBackupRestore)
	if o == nil {
		return params
	}

	return o.apply(params)
}
