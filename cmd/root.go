package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/groupements-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "groupements",
	Short: "Build the intercommunal groupements dataset",
	Long:  "Downloads the Banatic export one département at a time through a persistent cache, joins member communes to their INSEE codes and writes one JSON document of groupements.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
