package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"perfi.com/internal/infrastructure/config"
)

const (
	Major  = "0"
	Minor  = "3"
	Fix    = "0"
	Verbal = "Shell"
)

const shellConfigDir = "shell"

var rootCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:           "perfi",
	Long:          "perfi - personal crypto ledger desktop shell",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var (
	flagAPIURL    string //nolint:gochecknoglobals
	flagConfigDir string //nolint:gochecknoglobals
)

// Run enters into the cobra command to start the service.
func Run() error {
	// Check if the CONFIG_ENV environment variable is set
	configEnv := os.Getenv("CONFIG_ENV")
	if configEnv == "" {
		_, _ = fmt.Fprintln(os.Stderr, "Warning: CONFIG_ENV is not set. Using 'local' as default.")
	}
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("error executing root command: %w", err)
	}

	return nil
}

var versionCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "version",
	Short: "Describes version.",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Version: %s.%s.%s %s\n", Major, Minor, Fix, Verbal)
	},
}

// loadConfig reads the shell configuration, relative to where the binary
// is run from unless --config-dir says otherwise.
func loadConfig() (*config.Config, error) {
	configDir := flagConfigDir
	if configDir == "" {
		configDir = filepath.Join("cmd", "config", shellConfigDir)
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			configDir = filepath.Join(".", "config", shellConfigDir)
		}
	}
	return config.LoadConfig(configDir)
}

func init() { //nolint:gochecknoinits
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "backend API root (default: from config or the last launched backend)")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "directory holding app-config.yaml")
	rootCmd.AddCommand(versionCmd)
}
