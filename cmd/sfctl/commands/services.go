package commands

import (
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

var serviceColumns = columns[sf.ServiceInfo]{
	headers: []string{"Id", "Name", "Kind", "Type", "Version", "Status", "Health"},
	row: func(svc *sf.ServiceInfo) []string {
		return []string{svc.ID, svc.Name, svc.ServiceKind, svc.TypeName, svc.ManifestVersion, svc.ServiceStatus, svc.HealthState}
	},
}

var partitionColumns = columns[sf.ServicePartitionInfo]{
	headers: []string{"Id", "Kind", "Partitioning", "Status", "Health"},
	row: func(partition *sf.ServicePartitionInfo) []string {
		return []string{
			partition.PartitionInformation.ID,
			partition.ServiceKind,
			partition.PartitionInformation.ServicePartitionKind,
			partition.PartitionStatus,
			partition.HealthState,
		}
	},
}

var replicaColumns = columns[sf.ReplicaInfo]{
	headers: []string{"Id", "Kind", "Role", "Status", "Health", "Node", "Address"},
	row: func(replica *sf.ReplicaInfo) []string {
		return []string{
			replica.Identity(),
			replica.ServiceKind,
			orNotAvailable(replica.ReplicaRole),
			replica.ReplicaStatus,
			replica.HealthState,
			replica.NodeName,
			truncate(replica.Address),
		}
	},
}

// NewServicesCommand creates the services command group.
func NewServicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "services",
		Aliases: []string{"service"},
		Short:   "Query services",
		Long:    "List the services of an application",
	}

	cmd.AddCommand(newServicesListCommand())

	return cmd
}

func newServicesListCommand() *cobra.Command {
	opts := &sf.ServiceListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List services of an application",
		Long:  "List every service of an application, following continuation tokens until the last page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.ApplicationID == "" {
				return ErrApplicationIDRequired
			}

			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			return runList(cmd, "services", serviceColumns, func(emit sf.EmitFunc[sf.ServiceInfo]) (sf.DrainResult, error) {
				return client.Services().ListAll(cmd.Context(), opts, emit)
			})
		},
	}

	pageOptionsFlags(cmd, &opts.PageOptions)
	cmd.Flags().StringVar(&opts.ApplicationID, "application-id", "", "application id, e.g. MyApp for fabric:/MyApp")
	cmd.Flags().StringVar(&opts.ServiceTypeName, "type-name", "", "only services of this service type")

	return cmd
}

// NewPartitionsCommand creates the partitions command group.
func NewPartitionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "partitions",
		Aliases: []string{"partition"},
		Short:   "Query partitions",
		Long:    "List the partitions of a service",
	}

	cmd.AddCommand(newPartitionsListCommand())

	return cmd
}

func newPartitionsListCommand() *cobra.Command {
	opts := &sf.PartitionListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List partitions of a service",
		Long:  "List every partition of a service, following continuation tokens until the last page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.ServiceID == "" {
				return ErrServiceIDRequired
			}

			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			return runList(cmd, "partitions", partitionColumns, func(emit sf.EmitFunc[sf.ServicePartitionInfo]) (sf.DrainResult, error) {
				return client.Partitions().ListAll(cmd.Context(), opts, emit)
			})
		},
	}

	pageOptionsFlags(cmd, &opts.PageOptions)
	cmd.Flags().StringVar(&opts.ServiceID, "service-id", "", "service id, e.g. MyApp~MySvc for fabric:/MyApp/MySvc")

	return cmd
}

// NewReplicasCommand creates the replicas command group.
func NewReplicasCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "replicas",
		Aliases: []string{"replica", "instances"},
		Short:   "Query replicas",
		Long:    "List the replicas or instances of a partition",
	}

	cmd.AddCommand(newReplicasListCommand())

	return cmd
}

func newReplicasListCommand() *cobra.Command {
	opts := &sf.ReplicaListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List replicas of a partition",
		Long:  "List every replica of a partition, following continuation tokens until the last page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.PartitionID == "" {
				return ErrPartitionIDRequired
			}

			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			return runList(cmd, "replicas", replicaColumns, func(emit sf.EmitFunc[sf.ReplicaInfo]) (sf.DrainResult, error) {
				return client.Replicas().ListAll(cmd.Context(), opts, emit)
			})
		},
	}

	pageOptionsFlags(cmd, &opts.PageOptions)
	cmd.Flags().StringVar(&opts.PartitionID, "partition-id", "", "partition id")

	return cmd
}
