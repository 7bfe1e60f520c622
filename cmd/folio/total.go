package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/pkg/kinds"
)

var totalCmd = &cobra.Command{
	Use:   "total [container]",
	Short: "Sum the amounts of a shopping stream",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID("container", args[0])
		ctx := context.Background()
		svc := openService(ctx, withReadOnlyView())
		defer closeService(ctx, svc)

		total, err := svc.Total(id)
		if err != nil {
			fatal("Failed to total container", err)
		}
		fmt.Println(kinds.FormatAmount(total))
	},
}

func init() {
	rootCmd.AddCommand(totalCmd)
}
