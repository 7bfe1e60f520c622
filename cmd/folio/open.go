package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/internal/render"
	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/route"
)

var openCreate bool

var openCmd = &cobra.Command{
	Use:   "open [path]",
	Short: "Open the stream a path routes to (e.g. shopping, todos/today)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		typ, ok := route.Default().Resolve(args[0])
		if !ok {
			fatal("No route", fmt.Errorf("%q does not match any stream", args[0]))
		}

		ctx := context.Background()
		var svc *core.Service
		if openCreate {
			svc = openService(ctx)
		} else {
			svc = openService(ctx, withReadOnlyView())
		}
		defer closeService(ctx, svc)

		c, ok := svc.SelectContainerByType(ctx, typ)
		if !ok {
			if !openCreate {
				fatal("No stream", fmt.Errorf("no %s stream yet (use --create)", typ))
			}
			created, err := svc.OnCreateContainer(ctx, "", typ)
			if err != nil {
				fatal("Failed to create stream", err)
			}
			c, _ = svc.SelectContainerByType(ctx, created.Type)
		}

		v := svc.View()
		for _, vc := range v.Containers {
			if vc.ID == c.ID {
				vc.Expanded = true
				v.Containers = []core.Container{vc}
				break
			}
		}
		fmt.Print(render.Tree(v, render.DefaultTheme()))
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
	openCmd.Flags().BoolVar(&openCreate, "create", false, "Create the stream when it does not exist")
}
