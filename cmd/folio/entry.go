package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/pkg/core"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Add and update entries of typed streams",
}

var entryAddCmd = &cobra.Command{
	Use:   "add [container] [field=value]...",
	Short: "Quick-add a structured entry",
	Long: `Quick-add validates the fields against the stream's configuration and
prepends the entry. Invalid input is rejected and nothing is written.

  folio entry add 2 label=Milk amount=4.50
  folio entry add 3 task="Call Bob" priority=High dueDate=2025-03-01`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID("container", args[0])
		raw, err := parseFields(args[1:])
		if err != nil {
			fatal("Invalid entry", err)
		}
		ctx := context.Background()
		svc := openService(ctx)
		defer closeService(ctx, svc)

		it, err := svc.QuickAdd(ctx, id, raw)
		if err != nil {
			fatal("Entry rejected", err)
		}
		fmt.Printf("Entry added: #%d %s\n", it.ID, svc.Repository().Preview(it))
	},
}

var entrySetCmd = &cobra.Command{
	Use:   "set [item] [field=value]...",
	Short: "Quick-edit fields of a structured entry",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID("item", args[0])
		raw, err := parseFields(args[1:])
		if err != nil {
			fatal("Invalid entry", err)
		}
		ctx := context.Background()
		svc := openService(ctx)
		defer closeService(ctx, svc)

		it, err := svc.QuickEdit(ctx, id, raw)
		if err != nil {
			fatal("Edit rejected", err)
		}
		fmt.Printf("Entry updated: #%d %s\n", it.ID, svc.Repository().Preview(it))
	},
}

var entryFieldsCmd = &cobra.Command{
	Use:   "fields [container]",
	Short: "List the fields a stream accepts",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID("container", args[0])
		ctx := context.Background()
		svc := openService(ctx, withReadOnlyView())
		defer closeService(ctx, svc)

		c, ok := svc.Repository().Container(id)
		if !ok {
			fatal("Failed to read container", fmt.Errorf("container %d: %w", id, core.ErrNotFound))
		}
		if c.Config.IsZero() {
			fmt.Printf("#%d %s is free-form; use 'folio memo new --folder %d'\n", c.ID, c.Name, c.ID)
			return
		}
		for _, f := range c.Config.Fields {
			fmt.Println(describeField(f))
		}
	},
}

func describeField(f core.FieldSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %s", f.Name, f.Kind)
	if f.Required {
		b.WriteString(" required")
	}
	if f.NonNegative {
		b.WriteString(" >=0")
	}
	if len(f.Options) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(f.Options, "|"))
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd, entrySetCmd, entryFieldsCmd)
}
