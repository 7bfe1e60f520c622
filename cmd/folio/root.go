package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio"
	"github.com/aretw0/folio/internal/config"
	"github.com/aretw0/folio/pkg/core"
)

var (
	verbose bool
	cfg     config.Config
	vp      = config.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Organize memos, shopping ledgers and todo lists in folders",
	Long: `Folio keeps memos and typed streams (shopping, todo) in folders.
Every change is written as a full snapshot of the collection, and the
editor autosaves a few seconds after you stop typing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(vp, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded

		opts := &slog.HandlerOptions{
			Level: cfg.Level(verbose),
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
		if cfg.File != "" {
			logger.Debug("config loaded", "file", cfg.File)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	pf.String("dir", "", "Data directory (default: nearest .folio)")
	pf.String("backend", "fs", "Storage backend: fs, sqlite or memory")
	pf.String("format", "json", "Slot encoding for the fs backend: json or yaml")
	pf.String("collection", core.DefaultCollection, "Collection slot: folders or streams")
	pf.Duration("autosave", core.DefaultAutosaveDelay, "Editor autosave delay")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.Bool("read-only", false, "Open the collection read-only")
	pf.Duration("lock-timeout", 0, "Wait this long for another process to release the data directory")
}

// dataDir resolves the data directory from config or the working directory.
func dataDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get CWD", err)
	}
	dir, err := cfg.DataDir(cwd)
	if err != nil {
		fatal("Failed to resolve data directory", err)
	}
	return dir
}

// openService opens the configured collection or exits.
func openService(ctx context.Context, extra ...folio.Option) *core.Service {
	opts := append(cfg.Options(slog.Default()), extra...)
	svc, err := folio.New(ctx, dataDir(), opts...)
	if err != nil {
		if errors.Is(err, core.ErrCorruptState) {
			fatal("Collection is unreadable (run 'folio reset --force' to start over)", err)
		}
		fatal("Failed to open collection", err)
	}
	openSvc = svc
	return svc
}

// openSvc is closed by fatal, since os.Exit skips deferred closes.
var openSvc *core.Service

// closeService flushes pending edits and releases the store.
func closeService(ctx context.Context, svc *core.Service) {
	if openSvc == svc {
		openSvc = nil
	}
	if err := svc.Close(ctx); err != nil {
		fatal("Failed to close collection", err)
	}
}
