// Command fortunectl runs the fortune pipeline from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/utils"
)

var (
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "fortunectl",
	Short:         "Golf fortune engine tools",
	Long:          `fortunectl classifies birth dates, generates fortunes and manages the record store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if logLevel == "" {
			logLevel = cfg.LogLevel
		}
		return utils.InitLogger(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		utils.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(classifyCmd, generateCmd, batchCmd, showCmd, archiveCmd, migrateCmd, checkCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
