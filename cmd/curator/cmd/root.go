// Package cmd implements the curator CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/townscout/curator/pkg/logging"
)

var (
	configFile  string
	verbose     bool
	databaseURL string
	tableName   string
	catalogFile string
	provider    string

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Catalog field curation CLI",
	Long: `Curator reconciles catalog record field values across their
serialization forms, audits per-field review state, generates prioritized
AI update suggestions, and applies approved changes idempotently.

It speaks to a Postgres record store with a JSONB audit_data side column
and to an external AI research collaborator (Anthropic or Gemini).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context, version, commit, date string) error {
	Version = version
	Commit = commit
	Date = date
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.curator.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db-url", "", "Postgres connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&tableName, "table", "towns", "record table name")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "field catalog override file (YAML)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "anthropic", "research provider (anthropic or google)")

	_ = viper.BindPFlag("db_url", rootCmd.PersistentFlags().Lookup("db-url"))
	_ = viper.BindPFlag("table", rootCmd.PersistentFlags().Lookup("table"))
	_ = viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
}

// initConfig loads .env files and the optional config file, then tunes
// the logger.
func initConfig() {
	// .env files load first so Viper's env binding can see them.
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".curator")
		}
	}
	_ = viper.ReadInConfig()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logging.SetDefault(logging.Default().Level(zerolog.DebugLevel))
	}
}
