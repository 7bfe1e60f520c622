package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Move the collection aside and start over",
	Long: `Reset is the way out of an unreadable collection. The current slot is
renamed to <slot>.corrupt-<timestamp> (fs) or copied to a backup key (sqlite),
and a fresh collection with a default folder is written.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if !resetForce {
			fatal("Refusing to reset", fmt.Errorf("--force is required"))
		}
		ctx := context.Background()
		backup, err := folio.Reset(ctx, dataDir(), cfg.Options(slog.Default())...)
		if err != nil {
			fatal("Failed to reset collection", err)
		}
		if backup != "" {
			fmt.Printf("Collection reset. Previous data moved to %s\n", backup)
			return
		}
		fmt.Println("Collection reset.")
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Confirm the reset")
}
