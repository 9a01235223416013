package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

var applicationColumns = columns[sf.ApplicationInfo]{
	headers: []string{"Id", "Name", "Type", "Version", "Status", "Health"},
	row: func(app *sf.ApplicationInfo) []string {
		return []string{app.ID, app.Name, app.TypeName, app.TypeVersion, app.Status, app.HealthState}
	},
}

var applicationTypeColumns = columns[sf.ApplicationTypeInfo]{
	headers: []string{"Name", "Version", "Status", "Details"},
	row: func(appType *sf.ApplicationTypeInfo) []string {
		return []string{appType.Name, appType.Version, appType.Status, truncate(orNotAvailable(appType.StatusDetails))}
	},
}

// NewApplicationsCommand creates the applications command group.
func NewApplicationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"application", "apps", "app"},
		Short:   "Query applications",
		Long:    "List and inspect applications deployed to the cluster",
	}

	cmd.AddCommand(newApplicationsListCommand())
	cmd.AddCommand(newApplicationsGetCommand())

	return cmd
}

func newApplicationsListCommand() *cobra.Command {
	opts := &sf.ApplicationListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications",
		Long:  "List every application in the cluster, following continuation tokens until the last page",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			return runList(cmd, "applications", applicationColumns, func(emit sf.EmitFunc[sf.ApplicationInfo]) (sf.DrainResult, error) {
				return client.Applications().ListAll(cmd.Context(), opts, emit)
			})
		},
	}

	pageOptionsFlags(cmd, &opts.PageOptions)
	cmd.Flags().StringVar(&opts.ApplicationTypeName, "type-name", "", "only applications of this application type")
	cmd.Flags().IntVar(&opts.ApplicationDefinitionKind, "definition-kind", 0, "application definition kind filter bitmask")
	cmd.Flags().BoolVar(&opts.ExcludeApplicationParameters, "exclude-parameters", false, "omit application parameters")

	return cmd
}

func newApplicationsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get APPLICATION_ID",
		Short: "Get application details",
		Long:  "Display detailed information about a single application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			app, err := client.Applications().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get application: %w", err)
			}

			params := make([]string, 0, len(app.Parameters))
			for _, p := range app.Parameters {
				params = append(params, p.Key+"="+p.Value)
			}

			return renderValue(cmd, app, [][]string{
				{"Id", app.ID},
				{"Name", app.Name},
				{"Type", app.TypeName},
				{"Version", app.TypeVersion},
				{"Status", app.Status},
				{"Health", app.HealthState},
				{"Definition Kind", orNotAvailable(app.ApplicationDefinitionKind)},
				{"Parameters", truncate(orNotAvailable(strings.Join(params, ", ")))},
			})
		},
	}
}

// NewApplicationTypesCommand creates the application-types command group.
func NewApplicationTypesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "application-types",
		Aliases: []string{"application-type", "app-types"},
		Short:   "Query application types",
		Long:    "List application types provisioned in the cluster",
	}

	cmd.AddCommand(newApplicationTypesListCommand())

	return cmd
}

func newApplicationTypesListCommand() *cobra.Command {
	opts := &sf.ApplicationTypeListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List application types",
		Long:  "List every provisioned application type version",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			return runList(cmd, "application types", applicationTypeColumns, func(emit sf.EmitFunc[sf.ApplicationTypeInfo]) (sf.DrainResult, error) {
				return client.ApplicationTypes().ListAll(cmd.Context(), opts, emit)
			})
		},
	}

	pageOptionsFlags(cmd, &opts.PageOptions)
	cmd.Flags().IntVar(&opts.ApplicationTypeDefinitionKind, "definition-kind", 0, "application type definition kind filter bitmask")
	cmd.Flags().BoolVar(&opts.ExcludeApplicationParameters, "exclude-parameters", false, "omit default parameters")

	return cmd
}
