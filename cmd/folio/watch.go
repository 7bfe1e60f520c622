package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/internal/render"
	"github.com/aretw0/folio/pkg/adapters/lifecycle"
	"github.com/aretw0/folio/pkg/core"
)

var (
	watchQuiet  bool
	watchEvents []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow changes other processes make to the collection",
	Long: `Watch reloads and prints the folder tree whenever the collection slot
changes on disk. It never writes, so it can run next to a shell.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc := openService(ctx, withReadOnlyView())
		defer closeService(context.Background(), svc)

		events, err := svc.Watch(ctx)
		if err != nil {
			if errors.Is(err, errors.ErrUnsupported) {
				fatal("Backend cannot be watched", fmt.Errorf("%s: %w", cfg.Backend, err))
			}
			fatal("Failed to watch collection", err)
		}

		keep := make(map[core.EventType]bool, len(watchEvents))
		for _, t := range watchEvents {
			keep[core.EventType(strings.ToUpper(t))] = true
		}
		src := lifecycle.NewSource(events, lifecycle.WithFilter(func(e core.Event) bool {
			return len(keep) == 0 || keep[e.Type]
		}))
		if err := src.Start(ctx); err != nil {
			fatal("Failed to start watcher", err)
		}

		theme := render.DefaultTheme()
		if !watchQuiet {
			fmt.Print(render.Tree(svc.View(), theme))
		}
		for e := range src.Events() {
			fmt.Println(e.String())
			ce, ok := e.(core.Event)
			if ok && ce.Type == core.EventDelete {
				continue
			}
			if err := svc.Reload(ctx); err != nil {
				slog.Warn("reload failed", "error", err)
				continue
			}
			if !watchQuiet {
				fmt.Print(render.Tree(svc.View(), theme))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Print events only")
	watchCmd.Flags().StringSliceVar(&watchEvents, "events", nil, "Event types to follow: create, modify, delete (default all)")
}
