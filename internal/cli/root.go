// Package cli implements the ggstudio command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/internal/config"
	"github.com/gogpu/studio/render"
)

// App carries global flags and lazily loaded state shared by commands.
type App struct {
	ConfigPath string
	Verbose    bool

	cfg      *config.Config
	renderer *render.Renderer
}

// NewRootCmd builds the ggstudio command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "ggstudio",
		Short:        "Design documents: render, export, batch-export and serve",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Render a snapshot to PNG at twice the canvas size
  ggstudio render poster.json -o poster.png --scale 2

  # Export every configured preset into one archive
  ggstudio batch poster.json -o poster.zip

  # Serve the project API
  ggstudio serve --addr :8080
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.Verbose {
			studio.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("GGSTUDIO_CONFIG", ""), "Path to YAML config (default: ./"+config.DefaultPath+" if present)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(newRenderCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newBatchCmd(app))
	cmd.AddCommand(newFormatsCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newLibraryCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (app *App) config() (*config.Config, error) {
	if app.cfg != nil {
		return app.cfg, nil
	}
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return nil, err
	}
	app.cfg = cfg
	return cfg, nil
}

func (app *App) render() (*render.Renderer, error) {
	if app.renderer != nil {
		return app.renderer, nil
	}
	cfg, err := app.config()
	if err != nil {
		return nil, err
	}
	r, err := cfg.Renderer()
	if err != nil {
		return nil, err
	}
	app.renderer = r
	return r, nil
}

// openEditor loads a snapshot file into an editor using the configured
// renderer and history capacity.
func (app *App) openEditor(path string) (*studio.Editor, error) {
	cfg, err := app.config()
	if err != nil {
		return nil, err
	}
	r, err := app.render()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return studio.Open(data, studio.WithRenderer(r), studio.WithHistoryCapacity(cfg.History.Capacity))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "ggstudio", studio.Version)
			return err
		},
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
