package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/pkg/core"
)

var (
	memoFolder  int
	memoTitle   string
	memoContent string
	memoJSON    bool
)

var memoCmd = &cobra.Command{
	Use:     "memo",
	Aliases: []string{"memos"},
	Short:   "Create, edit and delete memos",
}

var memoNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a memo at the top of a folder",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc := openService(ctx)
		defer closeService(ctx, svc)

		it, err := svc.OnCreateItem(ctx, memoFolder)
		if err != nil {
			fatal("Failed to create memo", err)
		}
		if cmd.Flags().Changed("title") || cmd.Flags().Changed("content") {
			it = editActive(ctx, cmd, svc)
		}
		fmt.Printf("Memo created: #%d %s\n", it.ID, it.Title)
	},
}

var memoEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change the title or content of a memo",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID("memo", args[0])
		if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("content") {
			fatal("Nothing to edit", fmt.Errorf("--title or --content is required"))
		}
		ctx := context.Background()
		svc := openService(ctx)
		defer closeService(ctx, svc)

		if err := svc.OnSelectItem(ctx, id); err != nil {
			fatal("Failed to open memo", err)
		}
		it := editActive(ctx, cmd, svc)
		fmt.Printf("Memo saved: #%d %s\n", it.ID, it.Title)
	},
}

// editActive applies the --title/--content flags to the active item and saves it.
func editActive(ctx context.Context, cmd *cobra.Command, svc *core.Service) core.Item {
	if cmd.Flags().Changed("title") {
		svc.EditTitle(memoTitle)
	}
	if cmd.Flags().Changed("content") {
		svc.EditContent(memoContent)
	}
	it, _, err := svc.Save(ctx)
	if err != nil {
		fatal("Failed to save memo", err)
	}
	return it
}

var memoDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a memo",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID("memo", args[0])
		ctx := context.Background()
		svc := openService(ctx)
		defer closeService(ctx, svc)

		if err := svc.OnDeleteItem(ctx, id); err != nil {
			fatal("Failed to delete memo", err)
		}
		fmt.Printf("Memo deleted: #%d\n", id)
	},
}

var memoShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a memo",
	Long:  `Print a memo. Outputs the content by default, or the full item as JSON with --json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID("memo", args[0])
		ctx := context.Background()
		svc := openService(ctx, withReadOnlyView())
		defer closeService(ctx, svc)

		it, ok := svc.Repository().Item(id)
		if !ok {
			fatal("Failed to read memo", fmt.Errorf("item %d: %w", id, core.ErrNotFound))
		}

		if memoJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(it); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		fmt.Printf("# %s\n\n", it.Title)
		if it.Content != "" {
			fmt.Println(it.Content)
		} else {
			fmt.Println(svc.Repository().Preview(it))
		}
	},
}

func init() {
	rootCmd.AddCommand(memoCmd)
	memoCmd.AddCommand(memoNewCmd, memoEditCmd, memoDeleteCmd, memoShowCmd)

	memoNewCmd.Flags().IntVarP(&memoFolder, "folder", "f", 0, "Folder id (default: first folder)")
	for _, c := range []*cobra.Command{memoNewCmd, memoEditCmd} {
		c.Flags().StringVar(&memoTitle, "title", "", "Memo title")
		c.Flags().StringVar(&memoContent, "content", "", "Memo content")
	}
	memoShowCmd.Flags().BoolVar(&memoJSON, "json", false, "Output in JSON format")
}
