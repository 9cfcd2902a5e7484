package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/store"
)

func newLibraryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage reusable elements",
	}
	cmd.AddCommand(newLibraryListCmd(app))
	cmd.AddCommand(newLibraryAddCmd(app))
	cmd.AddCommand(newLibraryGetCmd(app))
	return cmd
}

func newLibraryListCmd(app *App) *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(st *store.Store) error {
				items, err := st.LibraryItems(cmd.Context(), tag)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{it.ID, it.Name, strings.Join(it.Tags, ",")})
				}
				table(cmd.OutOrStdout(), []string{"ID", "NAME", "TAGS"}, rows)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Only items with this tag")
	return cmd
}

func newLibraryAddCmd(app *App) *cobra.Command {
	var (
		name string
		tags []string
	)
	cmd := &cobra.Command{
		Use:   "add <snapshot.json>",
		Short: "Store a snapshot as a reusable element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if _, err := document.Deserialize(data); err != nil {
				return err
			}
			return app.withStore(cmd, func(st *store.Store) error {
				item, err := st.AddLibraryItem(cmd.Context(), name, tags, data)
				if err != nil {
					return err
				}
				status(cmd.OutOrStdout(), true, item.ID, fmt.Sprintf("%s [%s]", item.Name, strings.Join(item.Tags, ",")))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Item name")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLibraryGetCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Write a library item's snapshot to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(st *store.Store) error {
				item, err := st.LibraryItem(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if out == "" {
					_, err := cmd.OutOrStdout().Write(item.Payload)
					return err
				}
				if err := os.WriteFile(out, item.Payload, 0o644); err != nil {
					return err
				}
				status(cmd.OutOrStdout(), true, out, humanBytes(len(item.Payload)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
