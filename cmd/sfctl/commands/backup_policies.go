package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/sfctl/internal/constants"
	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

var backupPolicyColumns = columns[sf.BackupPolicyDescription]{
	headers: []string{"Name", "Schedule", "Storage", "Auto Restore", "Max Incremental"},
	row: func(policy *sf.BackupPolicyDescription) []string {
		return []string{
			policy.Name,
			policy.Schedule.ScheduleKind,
			policy.Storage.StorageKind,
			formatBool(policy.AutoRestoreOnDataLoss),
			strconv.Itoa(policy.MaxIncrementalBackups),
		}
	},
}

var backupEntityColumns = columns[sf.BackupEntity]{
	headers: []string{"Kind", "Target"},
	row: func(entity *sf.BackupEntity) []string {
		return []string{entity.EntityKind, entity.Target()}
	},
}

// NewBackupPoliciesCommand creates the backup-policies command group.
func NewBackupPoliciesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup-policies",
		Aliases: []string{"backup-policy"},
		Short:   "Query backup policies",
		Long:    "List backup policies and the entities they apply to",
	}

	cmd.AddCommand(newBackupPoliciesListCommand())
	cmd.AddCommand(newBackupPoliciesGetCommand())
	cmd.AddCommand(newBackupPoliciesEntitiesCommand())

	return cmd
}

func newBackupPoliciesListCommand() *cobra.Command {
	opts := &sf.BackupPolicyListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backup policies",
		Long:  "List every backup policy configured in the cluster",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			return runList(cmd, "backup policies", backupPolicyColumns, func(emit sf.EmitFunc[sf.BackupPolicyDescription]) (sf.DrainResult, error) {
				return client.BackupPolicies().ListAll(cmd.Context(), opts, emit)
			})
		},
	}

	pageOptionsFlags(cmd, &opts.PageOptions)

	return cmd
}

func newBackupPoliciesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get POLICY_NAME",
		Short: "Get backup policy details",
		Long:  "Display a single backup policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			policy, err := client.BackupPolicies().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get backup policy: %w", err)
			}

			retention := constants.NotAvailable
			if policy.RetentionPolicy != nil {
				retention = policy.RetentionPolicy.RetentionPolicyType + " " + policy.RetentionPolicy.RetentionDuration
			}

			schedule := policy.Schedule.ScheduleKind
			if policy.Schedule.Interval != "" {
				schedule += " " + policy.Schedule.Interval
			}

			if len(policy.Schedule.RunTimes) > 0 {
				schedule += " at " + strings.Join(policy.Schedule.RunTimes, ", ")
			}

			return renderValue(cmd, policy, [][]string{
				{"Name", policy.Name},
				{"Schedule", schedule},
				{"Storage", policy.Storage.StorageKind},
				{"Location", truncate(orNotAvailable(policy.Storage.Path + policy.Storage.ContainerName))},
				{"Auto Restore", formatBool(policy.AutoRestoreOnDataLoss)},
				{"Max Incremental", strconv.Itoa(policy.MaxIncrementalBackups)},
				{"Retention", strings.TrimSpace(retention)},
			})
		},
	}
}

func newBackupPoliciesEntitiesCommand() *cobra.Command {
	opts := &sf.BackupEntityListOptions{}

	cmd := &cobra.Command{
		Use:   "entities POLICY_NAME",
		Short: "List entities a backup policy applies to",
		Long:  "List the applications, services and partitions with the backup policy enabled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.PolicyName = args[0]

			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			return runList(cmd, "backup entities", backupEntityColumns, func(emit sf.EmitFunc[sf.BackupEntity]) (sf.DrainResult, error) {
				return client.BackupPolicies().ListAllEntities(cmd.Context(), opts, emit)
			})
		},
	}

	pageOptionsFlags(cmd, &opts.PageOptions)

	return cmd
}
