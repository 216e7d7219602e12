package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage runledger configuration",
	Long: `Manage runledger configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (RUNLEDGER_*)
3. Config file (~/.runledger/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if path := viper.ConfigFileUsed(); path != "" {
			fmt.Fprintf(os.Stderr, "configuration file: %s\n\n", path)
		} else {
			fmt.Fprintf(os.Stderr, "no configuration file found (using defaults)\n\n")
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Print(string(data))

		fmt.Println()
		if cfg.Ledger.Token == "" {
			fmt.Println("ledger token: NOT SET (export RUNLEDGER_LEDGER_TOKEN)")
		} else {
			fmt.Println("ledger token: set")
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long:  `Create a default configuration file at ~/.runledger/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}

		configDir := home + "/.runledger"
		configPath := configDir + "/config.yaml"

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s", configPath)
		}
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}

		header := `# runledger configuration
#
# Hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (RUNLEDGER_*)
#   3. This file
#   4. Built-in defaults
#
# Secrets stay in the environment:
#   export RUNLEDGER_LEDGER_TOKEN=pat...
#   export RUNLEDGER_LEDGER_BASE_ID=app...
#   export OPENAI_API_KEY=sk-...
`
		if err := os.WriteFile(configPath, append([]byte(header), data...), 0o600); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		fmt.Printf("created %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
