//go:build integration

package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	Endpoint   string
	ClientCert string
	ClientKey  string
	Thumbprint string
	SfctlPath  string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Endpoint:   os.Getenv("SFCTL_ENDPOINT"),
		ClientCert: os.Getenv("SFCTL_CLIENT_CERT"),
		ClientKey:  os.Getenv("SFCTL_CLIENT_KEY"),
		Thumbprint: os.Getenv("SFCTL_SERVER_THUMBPRINT"),
		SfctlPath:  getSfctlPath(),
		Verbose:    os.Getenv("SFCTL_VERBOSE") == "true",
	}
}

func getSfctlPath() string {
	if path := os.Getenv("SFCTL_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../sfctl", "./sfctl", "../sfctl"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "sfctl"
}

// SkipIfMissingConfig skips the test when no cluster or binary is available.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Endpoint == "" {
		t.Skip("SFCTL_ENDPOINT not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.SfctlPath); err != nil {
		t.Skipf("sfctl binary not found at %s, skipping integration test", config.SfctlPath)
	}
}

// CommandRunner runs the sfctl binary against the configured cluster.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{config: config, t: t}
}

// Run executes sfctl with the cluster flags prepended.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	full := []string{"--endpoint", runner.config.Endpoint}

	if runner.config.ClientCert != "" {
		full = append(full, "--client-cert", runner.config.ClientCert, "--client-key", runner.config.ClientKey)
	}

	if runner.config.Thumbprint != "" {
		full = append(full, "--server-thumbprint", runner.config.Thumbprint)
	}

	full = append(full, args...)

	cmd := exec.Command(runner.config.SfctlPath, full...) //nolint:gosec // test binary path from env

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.SfctlPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// DecodeLines decodes newline delimited JSON output.
func DecodeLines[T any](t *testing.T, out string) []T {
	t.Helper()

	var items []T

	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		var item T

		err := json.Unmarshal(scanner.Bytes(), &item)
		if err != nil {
			t.Fatalf("decoding %q: %v", scanner.Text(), err)
		}

		items = append(items, item)
	}

	return items
}
