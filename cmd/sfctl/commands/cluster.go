package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewClusterCommand creates the cluster command group.
func NewClusterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Query the cluster",
		Long:  "Show cluster wide information",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the cluster code version",
		Long:  "Display the Service Fabric runtime version the cluster is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			version, err := client.GetClusterVersion(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get cluster version: %w", err)
			}

			return renderValue(cmd, version, [][]string{{"Version", version.Version}})
		},
	})

	return cmd
}
