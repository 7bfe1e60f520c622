package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a folio collection",
	Long: `Initialize a folio collection in the data directory (./.folio unless a
parent directory already has one). An empty collection starts with a
default folder.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc := openService(ctx)
		defer closeService(ctx, svc)

		v := svc.View()
		fmt.Printf("Initialized folio collection in %s (%d folders)\n", dataDir(), len(v.Containers))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
