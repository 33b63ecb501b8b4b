package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/locotek/presskit/internal/models"
	"github.com/locotek/presskit/services/presskit-service/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Print recorded press-kit requests",
	Long:  "Prints every recorded submission in receipt order as a JSON array",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		stores, closeStores, err := buildStores(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStores()

		return printLeads(ctx, stores, os.Stdout)
	},
}

func printLeads(ctx context.Context, l store.Lister, w io.Writer) error {
	records, err := l.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}
	if records == nil {
		records = []models.Submission{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func init() {
	rootCmd.AddCommand(leadsCmd)
}
