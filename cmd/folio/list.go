package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/internal/render"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the folder tree",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc := openService(ctx, withReadOnlyView())
		defer closeService(ctx, svc)

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(svc.Repository().Containers()); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		fmt.Print(render.Tree(svc.View(), render.DefaultTheme()))
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
