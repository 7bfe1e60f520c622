package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/pkg/core"
)

var folderType string

var folderCmd = &cobra.Command{
	Use:     "folder",
	Aliases: []string{"folders"},
	Short:   "Manage folders and streams",
}

var folderNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a folder (or a typed stream with --type)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		ctx := context.Background()
		svc := openService(ctx)
		defer closeService(ctx, svc)

		c, err := svc.OnCreateContainer(ctx, name, core.ContainerType(folderType))
		if err != nil {
			fatal("Failed to create folder", err)
		}
		fmt.Printf("Folder created: #%d %s\n", c.ID, c.Name)
	},
}

var folderRenameCmd = &cobra.Command{
	Use:   "rename [id] [name]",
	Short: "Rename a folder",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID("folder", args[0])
		ctx := context.Background()
		svc := openService(ctx)
		defer closeService(ctx, svc)

		if err := svc.OnRenameContainer(ctx, id, args[1]); err != nil {
			fatal("Failed to rename folder", err)
		}
		fmt.Printf("Folder renamed: #%d %s\n", id, args[1])
	},
}

var folderDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a folder and everything in it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID("folder", args[0])
		ctx := context.Background()
		svc := openService(ctx)
		defer closeService(ctx, svc)

		if err := svc.OnDeleteContainer(ctx, id); err != nil {
			fatal("Failed to delete folder", err)
		}
		fmt.Printf("Folder deleted: #%d\n", id)
	},
}

var folderToggleCmd = &cobra.Command{
	Use:   "toggle [id]",
	Short: "Expand or collapse a folder",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID("folder", args[0])
		ctx := context.Background()
		svc := openService(ctx)
		defer closeService(ctx, svc)

		if err := svc.OnToggleExpand(ctx, id); err != nil {
			fatal("Failed to toggle folder", err)
		}
		c, _ := svc.Repository().Container(id)
		state := "collapsed"
		if c.Expanded {
			state = "expanded"
		}
		fmt.Printf("Folder #%d %s\n", id, state)
	},
}

func init() {
	rootCmd.AddCommand(folderCmd)
	folderCmd.AddCommand(folderNewCmd, folderRenameCmd, folderDeleteCmd, folderToggleCmd)
	folderNewCmd.Flags().StringVarP(&folderType, "type", "t", "", "Stream type (shopping, todo, memo); empty for a plain folder")
}
