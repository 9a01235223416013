package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/sfctl/internal/constants"
	"github.com/fivetwenty-io/sfctl/internal/logging"
	"github.com/fivetwenty-io/sfctl/pkg/sf"
	"github.com/fivetwenty-io/sfctl/pkg/sfclient"
)

// Config is the persisted CLI configuration. Keys match viper keys so the
// file, SFCTL_* environment variables and flags resolve the same settings.
type Config struct {
	Endpoint         string `json:"endpoint,omitempty"          yaml:"endpoint,omitempty"`
	Output           string `json:"output,omitempty"            yaml:"output,omitempty"`
	LogLevel         string `json:"log_level,omitempty"         yaml:"log_level,omitempty"`
	LogFormat        string `json:"log_format,omitempty"        yaml:"log_format,omitempty"`
	ClientCert       string `json:"client_cert,omitempty"       yaml:"client_cert,omitempty"`
	ClientKey        string `json:"client_key,omitempty"        yaml:"client_key,omitempty"`
	CAFile           string `json:"ca_file,omitempty"           yaml:"ca_file,omitempty"`
	ServerThumbprint string `json:"server_thumbprint,omitempty" yaml:"server_thumbprint,omitempty"`
	Token            string `json:"token,omitempty"             yaml:"token,omitempty"`
	TenantID         string `json:"tenant_id,omitempty"         yaml:"tenant_id,omitempty"`
	ClientID         string `json:"client_id,omitempty"         yaml:"client_id,omitempty"`
	ClientSecret     string `json:"client_secret,omitempty"     yaml:"client_secret,omitempty"`
	Resource         string `json:"resource,omitempty"          yaml:"resource,omitempty"`
	Cache            string `json:"cache,omitempty"             yaml:"cache,omitempty"`
	CacheTTL         string `json:"cache_ttl,omitempty"         yaml:"cache_ttl,omitempty"`
	NATSURL          string `json:"nats_url,omitempty"          yaml:"nats_url,omitempty"`
	Debug            bool   `json:"debug,omitempty"             yaml:"debug,omitempty"`
}

type configField struct {
	get    func(*Config) string
	set    func(*Config, string) error
	secret bool
}

func stringField(ptr func(*Config) *string) configField {
	return configField{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error {
			*ptr(c) = v

			return nil
		},
	}
}

func secretField(ptr func(*Config) *string) configField {
	field := stringField(ptr)
	field.secret = true

	return field
}

func fileField(ptr func(*Config) *string) configField {
	return configField{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error {
			if v != "" {
				err := validateFilePath(v)
				if err != nil {
					return err
				}
			}

			*ptr(c) = v

			return nil
		},
	}
}

var configFields = map[string]configField{
	"endpoint": {
		get: func(c *Config) string { return c.Endpoint },
		set: func(c *Config, v string) error {
			c.Endpoint = ""
			if v != "" {
				c.Endpoint = sfclient.NormalizeEndpoint(v)
			}

			return nil
		},
	},
	"output": {
		get: func(c *Config) string { return c.Output },
		set: func(c *Config, v string) error {
			if v == "" {
				return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, v)
			}

			err := checkOutputFormat(v)
			if err != nil {
				return err
			}

			c.Output = v

			return nil
		},
	},
	"log_level":         stringField(func(c *Config) *string { return &c.LogLevel }),
	"log_format":        stringField(func(c *Config) *string { return &c.LogFormat }),
	"client_cert":       fileField(func(c *Config) *string { return &c.ClientCert }),
	"client_key":        fileField(func(c *Config) *string { return &c.ClientKey }),
	"ca_file":           fileField(func(c *Config) *string { return &c.CAFile }),
	"server_thumbprint": stringField(func(c *Config) *string { return &c.ServerThumbprint }),
	"token":             secretField(func(c *Config) *string { return &c.Token }),
	"tenant_id":         stringField(func(c *Config) *string { return &c.TenantID }),
	"client_id":         stringField(func(c *Config) *string { return &c.ClientID }),
	"client_secret":     secretField(func(c *Config) *string { return &c.ClientSecret }),
	"resource":          stringField(func(c *Config) *string { return &c.Resource }),
	"cache":             stringField(func(c *Config) *string { return &c.Cache }),
	"cache_ttl": {
		get: func(c *Config) string { return c.CacheTTL },
		set: func(c *Config, v string) error {
			if v != "" {
				_, err := time.ParseDuration(v)
				if err != nil {
					return fmt.Errorf("invalid cache_ttl: %w", err)
				}
			}

			c.CacheTTL = v

			return nil
		},
	},
	"nats_url": stringField(func(c *Config) *string { return &c.NATSURL }),
	"debug": {
		get: func(c *Config) string { return formatBool(c.Debug) },
		set: func(c *Config, v string) error {
			if v == "" {
				c.Debug = false

				return nil
			}

			b, err := parseBoolValue(v)
			if err != nil {
				return err
			}

			c.Debug = b

			return nil
		},
	},
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the sfctl configuration stored in ~/.sfctl/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the stored configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			masked := maskSecrets(config)
			out := cmd.OutOrStdout()

			switch viper.GetString("output") {
			case constants.FormatJSON:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(masked)
			case constants.FormatYAML:
				return yaml.NewEncoder(out).Encode(masked)
			default:
				table := tablewriter.NewWriter(out)
				table.Header("Key", "Value")

				for _, key := range configKeys() {
					value := configFields[key].get(masked)
					if value == "" {
						continue
					}

					_ = table.Append([]string{key, value})
				}

				return table.Render()
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeys(), ", "),
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			err := updateConfig(key, value)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := updateConfig(args[0], "")
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func updateConfig(key, value string) error {
	field, ok := configFields[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	config, err := loadConfig()
	if err != nil {
		return err
	}

	err = field.set(config, value)
	if err != nil {
		return err
	}

	return saveConfig(config)
}

func configKeys() []string {
	keys := make([]string, 0, len(configFields))
	for key := range configFields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func maskSecrets(config *Config) *Config {
	masked := *config

	for _, field := range configFields {
		if field.secret && field.get(&masked) != "" {
			_ = field.set(&masked, constants.MaskedSecret)
		}
	}

	return &masked
}

// configFilePath returns the file named by --config, the file viper loaded,
// or ~/.sfctl/config.yml.
func configFilePath() (string, error) {
	if path := viper.GetString("config"); path != "" {
		return path, nil
	}

	if path := viper.ConfigFileUsed(); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".sfctl", "config.yml"), nil
}

func loadConfig() (*Config, error) {
	path, err := configFilePath()
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- the path is the user's own config file
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &config, nil
}

func saveConfig(config *Config) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func parseBoolValue(value string) (bool, error) {
	switch strings.ToLower(value) {
	case constants.BooleanTrue:
		return true, nil
	case constants.BooleanFalse:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", constants.ErrInvalidBooleanValue, value)
	}
}

func validateFilePath(path string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("%w: %s", constants.ErrDirectoryTraversalDetected, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", constants.ErrNotRegularFile, path)
	}

	return nil
}

// newLogger builds the sf.Logger for the current command. --verbose forces
// debug level.
func newLogger(cmd *cobra.Command) *logging.Adapter {
	level := viper.GetString("log_level")
	if viper.GetBool("verbose") {
		level = "debug"
	}

	return logging.NewAdapter(logging.New(logging.Config{
		Level:  level,
		Format: viper.GetString("log_format"),
		Output: cmd.ErrOrStderr(),
	}))
}

// buildClientConfig resolves the effective client configuration from flags,
// environment and the config file.
func buildClientConfig(cmd *cobra.Command) (*sf.Config, error) {
	endpoint := viper.GetString("endpoint")
	if endpoint == "" {
		return nil, constants.ErrNoEndpointConfigured
	}

	logger := newLogger(cmd)

	config := &sf.Config{
		Endpoint:             endpoint,
		ClientCertFile:       viper.GetString("client_cert"),
		ClientKeyFile:        viper.GetString("client_key"),
		CAFile:               viper.GetString("ca_file"),
		ServerCertThumbprint: viper.GetString("server_thumbprint"),
		AccessToken:          viper.GetString("token"),
		TenantID:             viper.GetString("tenant_id"),
		ClientID:             viper.GetString("client_id"),
		ClientSecret:         viper.GetString("client_secret"),
		Resource:             viper.GetString("resource"),
		HTTPTimeout:          constants.DefaultHTTPTimeout,
		RetryMax:             constants.DefaultRetryMax,
		Debug:                viper.GetBool("debug") || viper.GetBool("verbose"),
		Logger:               logger.Component("sfctl"),
		UserAgent:            "sfctl/" + Version,
	}

	switch cacheType := sf.CacheType(viper.GetString("cache")); cacheType {
	case "", sf.CacheTypeNone:
	case sf.CacheTypeMemory:
		config.Cache = sf.DefaultCacheConfig()
	case sf.CacheTypeNATS:
		config.Cache = &sf.CacheConfig{
			Type: sf.CacheTypeNATS,
			NATS: &sf.NATSKVConfig{
				URL:     viper.GetString("nats_url"),
				Bucket:  constants.DefaultNATSBucket,
				Timeout: constants.ShortHTTPTimeout,
			},
		}
	default:
		return nil, fmt.Errorf("%w: %s", sf.ErrUnsupportedCacheType, cacheType)
	}

	if ttl := viper.GetString("cache_ttl"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid cache_ttl: %w", err)
		}

		config.CacheTTL = parsed
	}

	return config, nil
}

// createClient builds a client for the configured cluster.
func createClient(ctx context.Context, cmd *cobra.Command) (sf.Client, error) {
	config, err := buildClientConfig(cmd)
	if err != nil {
		return nil, err
	}

	return sfclient.New(ctx, config)
}

// drainLogger returns the logger used for per-page drain diagnostics.
func drainLogger(cmd *cobra.Command) sf.Logger {
	return newLogger(cmd).Component("drain")
}
