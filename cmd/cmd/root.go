package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"curator/cmd/handlers"
	"curator/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Curator turns collected technical content into personalized articles.",
	Long: `Curator scores collected technical content for quality and personal
interest, selects the best sources, and synthesizes a single article
tailored to one reader's profile.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.curator.yaml)")

	rootCmd.AddCommand(handlers.NewGenerateCmd())
	rootCmd.AddCommand(handlers.NewBatchCmd())
	rootCmd.AddCommand(handlers.NewQueriesCmd())
	rootCmd.AddCommand(handlers.NewDiagnoseCmd())
	rootCmd.AddCommand(handlers.NewCacheCmd())
}

// initConfig loads configuration; config.Load handles .env, the yaml
// config file, env vars, and defaults.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
}
