package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/locotek/presskit/services/presskit-service/internal/db"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Prepare storage for the press-kit service",
	Long:  "Creates the data and uploads directories and, when database.url is set, the presskit_requests table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		dirs, err := ensureDirs(cfg)
		if err != nil {
			return err
		}
		for _, dir := range dirs {
			fmt.Printf("✓ Directory ready: %s\n", dir)
		}

		if cfg.Database.URL == "" {
			fmt.Println("database.url not set, skipping migrations")
			return nil
		}

		pool, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer pool.Close()

		fmt.Println("Running migrations...")
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}

		fmt.Println("✓ Database setup complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
