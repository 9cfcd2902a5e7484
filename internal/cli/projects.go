package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/export"
	"github.com/gogpu/studio/store"
)

func (app *App) openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := app.config()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, cfg.Store.Path)
}

// withStore opens the store for the duration of fn.
func (app *App) withStore(cmd *cobra.Command, fn func(*store.Store) error) error {
	st, err := app.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage saved projects",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsImportCmd(app))
	cmd.AddCommand(newProjectsExportCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(st *store.Store) error {
				ps, err := st.Projects(cmd.Context(), query)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(ps))
				for _, p := range ps {
					rows = append(rows, []string{
						p.ID,
						p.Name,
						fmt.Sprintf("%gx%g", p.Width, p.Height),
						p.UpdatedAt.Local().Format(time.DateTime),
					})
				}
				table(cmd.OutOrStdout(), []string{"ID", "NAME", "SIZE", "UPDATED"}, rows)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive name filter")
	return cmd
}

func newProjectsImportCmd(app *App) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Save a snapshot file as a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return err
			}
			ed, err := app.openEditor(args[0])
			if err != nil {
				return err
			}
			data, err := ed.Save()
			if err != nil {
				return err
			}
			thumb, err := ed.Thumbnail(cmd.Context(), cfg.Export.Thumbnail)
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			width, height := ed.Scene().Size()
			return app.withStore(cmd, func(st *store.Store) error {
				p, err := st.CreateProject(cmd.Context(), store.ProjectData{
					Name:      name,
					Width:     width,
					Height:    height,
					Document:  data,
					Thumbnail: thumb,
				})
				if err != nil {
					return err
				}
				status(cmd.OutOrStdout(), true, p.ID, p.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Project name (default: file name)")
	return cmd
}

func newProjectsExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a project's snapshot to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(st *store.Store) error {
				p, err := st.Project(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if _, err := document.Deserialize(p.Document); err != nil {
					return err
				}
				if out == "" {
					out = export.SanitizeName(p.Name) + ".json"
				}
				if err := os.WriteFile(out, p.Document, 0o644); err != nil {
					return err
				}
				status(cmd.OutOrStdout(), true, out, humanBytes(len(p.Document)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default: project name with .json)")
	return cmd
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(st *store.Store) error {
				if err := st.DeleteProject(cmd.Context(), args[0]); err != nil {
					return err
				}
				status(cmd.OutOrStdout(), true, args[0], "deleted")
				return nil
			})
		},
	}
}
