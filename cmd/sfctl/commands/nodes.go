package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

var nodeColumns = columns[sf.NodeInfo]{
	headers: []string{"Name", "Address", "Type", "Status", "Health", "Seed", "UD", "FD"},
	row: func(node *sf.NodeInfo) []string {
		return []string{
			node.Name,
			node.IPAddressOrFQDN,
			node.Type,
			node.NodeStatus,
			node.HealthState,
			formatBool(node.IsSeedNode),
			node.UpgradeDomain,
			node.FaultDomain,
		}
	},
}

// NewNodesCommand creates the nodes command group.
func NewNodesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nodes",
		Aliases: []string{"node"},
		Short:   "Query cluster nodes",
		Long:    "List and inspect the nodes of the cluster",
	}

	cmd.AddCommand(newNodesListCommand())
	cmd.AddCommand(newNodesGetCommand())

	return cmd
}

func newNodesListCommand() *cobra.Command {
	opts := &sf.NodeListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List nodes",
		Long:  "List every node of the cluster, following continuation tokens until the last page",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			return runList(cmd, "nodes", nodeColumns, func(emit sf.EmitFunc[sf.NodeInfo]) (sf.DrainResult, error) {
				return client.Nodes().ListAll(cmd.Context(), opts, emit)
			})
		},
	}

	pageOptionsFlags(cmd, &opts.PageOptions)
	cmd.Flags().StringVar(&opts.NodeStatusFilter, "status", "", "node status filter (default, all, up, down, enabling, disabling, disabled, unknown, removed)")

	return cmd
}

func newNodesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get NODE_NAME",
		Short: "Get node details",
		Long:  "Display detailed information about a single node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			node, err := client.Nodes().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get node: %w", err)
			}

			return renderValue(cmd, node, [][]string{
				{"Name", node.Name},
				{"Id", orNotAvailable(node.ID.ID)},
				{"Address", node.IPAddressOrFQDN},
				{"Type", node.Type},
				{"Status", node.NodeStatus},
				{"Health", node.HealthState},
				{"Code Version", node.CodeVersion},
				{"Config Version", node.ConfigVersion},
				{"Up Time (s)", orNotAvailable(node.NodeUpTimeInSeconds)},
				{"Seed Node", formatBool(node.IsSeedNode)},
				{"Upgrade Domain", node.UpgradeDomain},
				{"Fault Domain", node.FaultDomain},
				{"Stopped", formatBool(node.IsStopped)},
			})
		},
	}
}
