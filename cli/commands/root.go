// Package commands implements the CLI command structure using Cobra.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tessera-ai/tessera-go/cli/config"
	"github.com/tessera-ai/tessera-go/cli/keystore"
	"github.com/tessera-ai/tessera-go/core"
)

// apiKeyEnvVar is consulted when no keystore entry matches.
const apiKeyEnvVar = "TESSERA_API_KEY"

// defaultKeyName is the keystore entry used when the config names none.
const defaultKeyName = "default"

var (
	// Global flags
	cfgFile string
	baseURL string
	userID  string
	verbose bool

	// Loaded configuration
	cfg *config.Config
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "tessera",
	Short: "Tessera - AI platform CLI",
	Long: `Tessera is a command-line interface for the Tessera AI platform.

Use it to manage API keys, inspect notebooks and skills, and stream
notebook runs from your terminal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A local .env is a convenience, its absence is not an error.
		_ = godotenv.Load()
		return initConfig()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tessera/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "service endpoint override")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "user ID attributed to requests")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "print request detail and thinking events")
}

// initConfig reads the config file and applies defaults.
func initConfig() error {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	var err error
	cfg, err = config.LoadConfig(path)
	if err != nil {
		return err
	}

	if baseURL == "" && cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if userID == "" && cfg.UserID != "" {
		userID = cfg.UserID
	}

	return nil
}

// resolveAPIKey looks up the API key, keystore first, environment second.
func resolveAPIKey() (string, error) {
	name := cfg.APIKeyRef
	if name == "" {
		name = defaultKeyName
	}

	ks, err := keystore.NewKeystore()
	if err == nil {
		if key, err := ks.Get(name); err == nil {
			return key, nil
		}
	}

	if key := os.Getenv(apiKeyEnvVar); key != "" {
		return key, nil
	}

	return "", fmt.Errorf("no API key found: run 'tessera keys set %s' or set %s", name, apiKeyEnvVar)
}

// newClient builds a core client from the resolved configuration.
func newClient() (*core.Client, error) {
	apiKey, err := resolveAPIKey()
	if err != nil {
		return nil, err
	}

	if baseURL == "" {
		return nil, fmt.Errorf("no base URL configured: pass --base-url or run 'tessera init'")
	}

	opts := []core.Option{}
	if userID != "" {
		opts = append(opts, core.WithUserID(userID))
	}
	if cfg.MaxRetries != nil {
		opts = append(opts, core.WithMaxRetries(*cfg.MaxRetries))
	}

	return core.NewClient(apiKey, baseURL, opts...)
}
