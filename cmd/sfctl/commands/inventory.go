package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/sfctl/internal/constants"
	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

// InventoryEntry summarizes the drain of one collection.
type InventoryEntry struct {
	Collection string `json:"collection"      yaml:"collection"`
	Items      int    `json:"items"           yaml:"items"`
	Pages      int    `json:"pages"           yaml:"pages"`
	Outcome    string `json:"outcome"         yaml:"outcome"`
	Duration   string `json:"duration"        yaml:"duration"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

func discard[T any](T) error { return nil }

// inventoryJobs maps collection names to drain jobs over client.
func inventoryJobs(client sf.Client, logger sf.Logger) map[string]sf.DrainJob {
	opt := sf.WithDrainLogger(logger)

	return map[string]sf.DrainJob{
		"applications": sf.NewDrainJob("applications",
			client.Applications().Fetcher(&sf.ApplicationListOptions{ExcludeApplicationParameters: true}),
			discard[sf.ApplicationInfo], opt),
		"application-types": sf.NewDrainJob("application-types",
			client.ApplicationTypes().Fetcher(&sf.ApplicationTypeListOptions{ExcludeApplicationParameters: true}),
			discard[sf.ApplicationTypeInfo], opt),
		"nodes": sf.NewDrainJob("nodes",
			client.Nodes().Fetcher(&sf.NodeListOptions{NodeStatusFilter: "all"}),
			discard[sf.NodeInfo], opt),
		"backup-policies": sf.NewDrainJob("backup-policies",
			client.BackupPolicies().Fetcher(nil),
			discard[sf.BackupPolicyDescription], opt),
	}
}

// NewInventoryCommand creates the inventory command.
func NewInventoryCommand() *cobra.Command {
	var (
		concurrency int
		collections []string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Count the items of several collections concurrently",
		Long: `Drain several cluster collections at once and report how many items and
pages each one returned. A failing collection does not stop the others.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency < 1 || concurrency > constants.MaxConcurrencyLimit {
				return fmt.Errorf("%w: %d", constants.ErrInvalidConcurrency, concurrency)
			}

			err := checkOutputFormat(viper.GetString("output"))
			if err != nil {
				return err
			}

			client, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			available := inventoryJobs(client, drainLogger(cmd))
			jobs := make([]sf.DrainJob, 0, len(collections))

			for _, name := range collections {
				job, ok := available[name]
				if !ok {
					return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
				}

				jobs = append(jobs, job)
			}

			drainer := sf.NewBatchDrainer(concurrency)
			drainer.SetTimeout(timeout)

			results, batchErr := drainer.Execute(cmd.Context(), jobs)
			if results == nil {
				return batchErr
			}

			err = renderInventory(cmd, results)
			if err != nil {
				return err
			}

			if batchErr != nil {
				return fmt.Errorf("inventory incomplete: %w", batchErr)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultConcurrencyLimit, "collections drained at the same time")
	cmd.Flags().StringSliceVar(&collections, "collections",
		[]string{"applications", "application-types", "nodes", "backup-policies"}, "collections to drain")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "time limit per collection (0 for none)")

	return cmd
}

func renderInventory(cmd *cobra.Command, results []sf.BatchResult) error {
	entries := make([]InventoryEntry, 0, len(results))

	for _, result := range results {
		entry := InventoryEntry{
			Collection: result.Name,
			Items:      result.Result.Count,
			Pages:      result.Result.Pages,
			Outcome:    result.Result.Outcome.String(),
			Duration:   result.Duration.Round(time.Millisecond).String(),
		}

		if result.Error != nil {
			entry.Error = result.Error.Error()
		}

		entries = append(entries, entry)
	}

	out := cmd.OutOrStdout()

	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(entries)
	case constants.FormatYAML:
		return yaml.NewEncoder(out).Encode(entries)
	case constants.FormatTable, "":
		table := tablewriter.NewWriter(out)
		table.Header("Collection", "Items", "Pages", "Outcome", "Duration", "Error")

		for _, entry := range entries {
			_ = table.Append([]string{
				entry.Collection,
				strconv.Itoa(entry.Items),
				strconv.Itoa(entry.Pages),
				titleCase(entry.Outcome),
				entry.Duration,
				truncate(entry.Error),
			})
		}

		_ = table.Append([]string{"Total", strconv.Itoa(sf.TotalCount(results)), "", "", "", ""})

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, viper.GetString("output"))
	}
}
