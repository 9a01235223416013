package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/sfctl/internal/constants"
	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

// Common static errors used throughout the commands package.
var (
	ErrApplicationIDRequired = errors.New("application id is required (--application-id)")
	ErrServiceIDRequired     = errors.New("service id is required (--service-id)")
	ErrPartitionIDRequired   = errors.New("partition id is required (--partition-id)")
	ErrCollectionNotFound    = errors.New("unknown collection")
)

// columns describes how an item renders as a table row.
type columns[T any] struct {
	headers []string
	row     func(item *T) []string
}

// itemWriter writes drained items one at a time: one JSON document per line,
// one YAML document per item, or one table row per item.
type itemWriter[T any] struct {
	format  string
	jsonEnc *json.Encoder
	yamlEnc *yaml.Encoder
	table   *tablewriter.Table
	columns columns[T]
}

func newItemWriter[T any](out io.Writer, format string, cols columns[T]) (*itemWriter[T], error) {
	writer := &itemWriter[T]{format: format, columns: cols}

	switch format {
	case constants.FormatJSON:
		writer.jsonEnc = json.NewEncoder(out)
	case constants.FormatYAML:
		writer.yamlEnc = yaml.NewEncoder(out)
	case constants.FormatTable, "":
		writer.format = constants.FormatTable
		writer.table = tablewriter.NewWriter(out)
		writer.table.Header(toAny(cols.headers)...)
	default:
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}

	return writer, nil
}

// Emit implements sf.EmitFunc.
func (w *itemWriter[T]) Emit(item T) error {
	switch w.format {
	case constants.FormatJSON:
		err := w.jsonEnc.Encode(item)
		if err != nil {
			return fmt.Errorf("failed to encode item as JSON: %w", err)
		}
	case constants.FormatYAML:
		err := w.yamlEnc.Encode(item)
		if err != nil {
			return fmt.Errorf("failed to encode item as YAML: %w", err)
		}
	default:
		err := w.table.Append(w.columns.row(&item))
		if err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}

	return nil
}

// Close flushes buffered output. It must run even when the drain failed so
// that items already received are shown.
func (w *itemWriter[T]) Close() error {
	switch w.format {
	case constants.FormatYAML:
		return w.yamlEnc.Close()
	case constants.FormatTable:
		err := w.table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}

	return nil
}

// runList drains a collection through an itemWriter. On failure the items
// already written stay in place and the error reports how many there were.
func runList[T any](
	cmd *cobra.Command,
	collection string,
	cols columns[T],
	drain func(emit sf.EmitFunc[T]) (sf.DrainResult, error),
) error {
	writer, err := newItemWriter(cmd.OutOrStdout(), viper.GetString("output"), cols)
	if err != nil {
		return err
	}

	result, drainErr := drain(writer.Emit)

	closeErr := writer.Close()

	if drainErr != nil {
		return fmt.Errorf("listing %s failed after %d items: %w", collection, result.Count, drainErr)
	}

	if closeErr != nil {
		return closeErr
	}

	printSummary(cmd, collection, result)

	return nil
}

// printSummary writes a one line summary to stderr when it is a terminal.
func printSummary(cmd *cobra.Command, collection string, result sf.DrainResult) {
	if !isTerminal(cmd.ErrOrStderr()) {
		return
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d %s in %d pages\n",
		titleCase(result.Outcome.String()), result.Count, collection, result.Pages)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(file.Fd())) //nolint:gosec // file descriptors fit in int
}

// renderValue prints a single value in the selected format. Table output
// uses rows of property/value pairs.
func renderValue(cmd *cobra.Command, value interface{}, rows [][]string) error {
	out := cmd.OutOrStdout()

	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)

		err := encoder.Encode(value)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close()
	case constants.FormatTable, "":
		table := tablewriter.NewWriter(out)
		table.Header("Property", "Value")

		for _, row := range rows {
			_ = table.Append(row)
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, viper.GetString("output"))
	}
}

// checkOutputFormat rejects formats no writer supports. Empty means table.
func checkOutputFormat(format string) error {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML, "":
		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}
}

func pageOptionsFlags(cmd *cobra.Command, opts *sf.PageOptions) {
	cmd.Flags().Int64Var(&opts.MaxResults, "max-results", 0, "maximum items per page (0 lets the cluster decide)")
	cmd.Flags().IntVar(&opts.Timeout, "server-timeout", constants.DefaultServerTimeout, "server side timeout in seconds")
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// truncate shortens s to StringTruncationLength runes.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= constants.StringTruncationLength {
		return s
	}

	return string(runes[:constants.StringTruncationLength-3]) + "..."
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func orNotAvailable(s string) string {
	if s == "" {
		return constants.NotAvailable
	}

	return s
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}
