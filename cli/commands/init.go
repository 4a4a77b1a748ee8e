package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessera-ai/tessera-go/cli/config"
)

var (
	initBaseURL string
	initUserID  string
	initKeyRef  string
	initForce   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Write a starter configuration file.

The file is created at ~/.tessera/config.yaml unless --config points
elsewhere. Store an API key afterwards with 'tessera keys set'.

Example:
  tessera init --base-url https://api.tessera.dev/api/v1 --user user-1`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initBaseURL, "base-url", "https://api.tessera.dev/api/v1", "service endpoint")
	initCmd.Flags().StringVar(&initUserID, "user", "", "default user ID for requests")
	initCmd.Flags().StringVar(&initKeyRef, "key-ref", "default", "keystore entry holding the API key")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %q already exists (use --force to overwrite)", path)
		}
	}

	out := &config.Config{
		BaseURL:   initBaseURL,
		UserID:    initUserID,
		APIKeyRef: initKeyRef,
	}

	if err := config.SaveConfig(path, out); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), "Next steps:")
	fmt.Fprintf(cmd.OutOrStdout(), "  tessera keys set %s\n", initKeyRef)
	fmt.Fprintln(cmd.OutOrStdout(), "  tessera notebooks list")

	return nil
}
