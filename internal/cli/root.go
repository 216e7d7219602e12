// Package cli implements the runledger command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"runledger/internal/model"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "runledger",
	Short: "Reconcile an episode catalogue against the run ledger",
	Long: `runledger scans a media-episode catalogue for obstacle-course runs,
deduplicates the mentions, and diffs them against the authoritative
leaderboard ledger.

It reports which runs are already recorded, which are missing, and which
need a human look. The ledger is never written during a scan; the import
command writes, and only behind an explicit --write flag.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("runledger v0.3.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.runledger/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig locates the config file and wires RUNLEDGER_* env variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.runledger")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("RUNLEDGER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the effective configuration: defaults, overlaid by
// the config file, overlaid by environment secrets. Flag overrides are
// applied by each command afterward.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Secrets come from the environment only, never the file.
	cfg.Ledger.Token = os.Getenv("RUNLEDGER_LEDGER_TOKEN")
	if cfg.Ledger.Token == "" {
		cfg.Ledger.Token = os.Getenv("AIRTABLE_API_KEY")
	}
	if id := os.Getenv("RUNLEDGER_LEDGER_BASE_ID"); id != "" {
		cfg.Ledger.BaseID = id
	}
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")

	cfg.Output.Verbose = verbose
	return cfg, nil
}

// requireLedger rejects configurations that cannot reach the ledger.
func requireLedger(cfg *model.Config) error {
	if cfg.Ledger.BaseID == "" {
		return fmt.Errorf("ledger base id not set (RUNLEDGER_LEDGER_BASE_ID or config ledger.base_id)")
	}
	if cfg.Ledger.Token == "" {
		return fmt.Errorf("ledger token not set (RUNLEDGER_LEDGER_TOKEN or AIRTABLE_API_KEY)")
	}
	return nil
}
