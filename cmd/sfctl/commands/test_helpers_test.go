package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// setupViper points the CLI at endpoint with a throwaway config file.
func setupViper(t *testing.T, endpoint, output string) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	configFile := filepath.Join(t.TempDir(), "config.yml")

	viper.Set("config", configFile)
	viper.Set("endpoint", endpoint)
	viper.Set("output", output)

	return configFile
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	// Mirror the production root command, which silences usage and errors.
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if args == nil {
		args = []string{}
	}

	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

// pagedHandler serves pages in order. Continuation tokens are page indexes.
func pagedHandler[T any](t *testing.T, pages [][]T) http.HandlerFunc {
	t.Helper()

	return func(writer http.ResponseWriter, request *http.Request) {
		index := 0

		if token := request.URL.Query().Get("ContinuationToken"); token != "" {
			parsed, err := strconv.Atoi(token)
			if err != nil || parsed >= len(pages) {
				writeFabricError(writer, http.StatusBadRequest, sf.ErrorCodeInvalidArgument, "bad continuation token")

				return
			}

			index = parsed
		}

		page := sf.PagedList[T]{Items: pages[index]}
		if index+1 < len(pages) {
			page.ContinuationToken = sf.NewContinuationToken(strconv.Itoa(index + 1))
		}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(page)
	}
}

func writeFabricError(writer http.ResponseWriter, status int, code, message string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(map[string]interface{}{
		"Error": map[string]string{
			"Code":    code,
			"Message": message,
		},
	})
}
