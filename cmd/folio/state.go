package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/folio/pkg/adapters/fs"
	"github.com/aretw0/folio/pkg/core"
)

var stateDiagram bool

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the internal state of the service, repository and store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc := openService(ctx, withReadOnlyView())
		defer closeService(ctx, svc)

		components := []any{svc, svc.Repository(), svc.Repository().Store()}

		if stateDiagram {
			config := introspection.DefaultDiagramConfig()
			config.SecondaryID = "folio"
			config.SecondaryLabel = "Folio Topology"
			fmt.Println(introspection.TreeDiagram(buildStateTree(svc), config))
			return
		}

		out := make(map[string]any, len(components))
		for _, c := range components {
			intro, ok := c.(introspection.Introspectable)
			if !ok {
				continue
			}
			name := fmt.Sprintf("%T", c)
			if comp, ok := c.(introspection.Component); ok {
				name = comp.ComponentType()
			}
			out[name] = intro.State()
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			fatal("Failed to encode JSON", err)
		}
	},
}

type stateNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []stateNode
}

// buildStateTree maps component states onto the status classes of introspection.DefaultStyles().
func buildStateTree(svc *core.Service) stateNode {
	ss, _ := svc.State().(core.ServiceState)
	rs, _ := svc.Repository().State().(core.RepositoryState)

	editor := "suspended"
	if ss.AutosavePending {
		editor = "pending"
	} else if ss.Selection == core.StateEditing.String() {
		editor = "running"
	}

	store := stateNode{
		Name:     "Store",
		Status:   "running",
		Metadata: map[string]string{"type": rs.StoreType},
	}
	if fst, ok := svc.Repository().Store().(*fs.Store); ok {
		st, _ := fst.State().(fs.StoreState)
		store.Metadata["path"] = st.Path
		store.Metadata["format"] = st.Format
		if st.ReadOnly {
			store.Status = "suspended"
		}
		watcher := "stopped"
		if st.WatcherActive {
			watcher = "running"
		}
		store.Children = []stateNode{{
			Name:     "Watcher",
			Status:   watcher,
			Metadata: map[string]string{"type": "goroutine"},
		}}
	}

	return stateNode{
		Name:   "Service",
		Status: "running",
		Metadata: map[string]string{
			"type":      "process",
			"selection": ss.Selection,
		},
		Children: []stateNode{
			{
				Name:   "Editor",
				Status: editor,
				Metadata: map[string]string{
					"type":   "container",
					"status": string(ss.EditorStatus),
				},
			},
			{
				Name:   "Repository",
				Status: "running",
				Metadata: map[string]string{
					"type":       "container",
					"containers": fmt.Sprintf("%d", rs.Containers),
					"items":      fmt.Sprintf("%d", rs.Items),
				},
				Children: []stateNode{store},
			},
		},
	}
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.Flags().BoolVar(&stateDiagram, "diagram", false, "Print a Mermaid topology diagram instead of JSON")
}
