package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oncodel/codel/internal/cbioportal"
	"github.com/oncodel/codel/internal/opportunity"
)

// initConfig loads .env, the ~/.codel.yaml config file, and CODEL_* env
// overrides, and seeds the tunable defaults.
func initConfig() {
	_ = godotenv.Load()

	viper.SetConfigName(".codel")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("CODEL")
	viper.AutomaticEnv()

	viper.SetDefault("api.base_url", cbioportal.DefaultBaseURL)
	viper.SetDefault("data_dir", defaultDataDir())
	viper.SetDefault("results", filepath.Join(defaultDataDir(), "results.duckdb"))
	viper.SetDefault("fdr_threshold", 0.05)
	viper.SetDefault("min_deletion_frequency", 0.05)

	w := opportunity.DefaultWeights()
	viper.SetDefault("weights.common_essential", w.CommonEssential)
	viper.SetDefault("weights.broad_dependency", w.BroadDependency)
	viper.SetDefault("weights.baseline", w.Baseline)
	viper.SetDefault("weights.dependency_threshold", w.DependencyThreshold)
	viper.SetDefault("weights.context_base", w.ContextBase)
	viper.SetDefault("weights.context_span", w.ContextSpan)
	viper.SetDefault("weights.reference_cell_lines", w.ReferenceCellLines)

	// A missing config file is fine; defaults and env cover everything.
	_ = viper.ReadInConfig()
}

// defaultDataDir is where downloads and the results store live.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codel"
	}
	return filepath.Join(home, ".codel")
}

// configuredWeights reads the scoring weights, falling back to defaults for
// unset keys.
func configuredWeights() opportunity.Weights {
	w := opportunity.DefaultWeights()
	_ = viper.UnmarshalKey("weights", &w)
	return w
}

func runConfig(args []string) int {
	cmd := newConfigCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage codel configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.codel.yaml.",
		Example: `  codel config                               # show all config
  codel config set weights.common_essential 2.5  # tune a scoring weight
  codel config get fdr_threshold                 # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

func runConfigShow() error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Println("# No configuration set. Config file: ~/.codel.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		viper.Set(key, value)
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".codel.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}
