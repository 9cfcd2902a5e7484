package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/export"
	"github.com/gogpu/studio/render"
)

type exportFlags struct {
	out         string
	format      string
	scale       float64
	quality     float64
	transparent bool
	region      string
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "output", "o", "", "Output file (default: input name with the format's extension)")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "Output scale relative to the canvas (default from config)")
	cmd.Flags().BoolVar(&f.transparent, "transparent", false, "Leave the background unpainted")
	cmd.Flags().StringVar(&f.region, "region", "", "Render only x,y,w,h of the canvas")
}

func (f *exportFlags) options(app *App) (export.Options, error) {
	cfg, err := app.config()
	if err != nil {
		return export.Options{}, err
	}
	r, err := app.render()
	if err != nil {
		return export.Options{}, err
	}
	o := export.Options{
		Scale:       cfg.Export.Scale,
		Quality:     cfg.Export.Quality,
		Transparent: f.transparent,
		Renderer:    r,
	}
	if f.scale != 0 {
		o.Scale = f.scale
	}
	if f.quality != 0 {
		o.Quality = f.quality
	}
	if f.region != "" {
		rect, err := parseRegion(f.region)
		if err != nil {
			return export.Options{}, err
		}
		o.Region = &rect
	}
	return o, nil
}

func newRenderCmd(app *App) *cobra.Command {
	f := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "render <snapshot.json>",
		Short: "Render a snapshot to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.format = "png"
			return runExport(cmd, app, args[0], f)
		},
	}
	f.register(cmd)
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	f := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "export <snapshot.json>",
		Short: "Export a snapshot in any registered format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.format == "" {
				cfg, err := app.config()
				if err != nil {
					return err
				}
				f.format = cfg.Export.Format
			}
			return runExport(cmd, app, args[0], f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format (see 'ggstudio formats')")
	cmd.Flags().Float64Var(&f.quality, "quality", 0, "Lossy encoder quality in [0,1]")
	return cmd
}

func runExport(cmd *cobra.Command, app *App, input string, f *exportFlags) error {
	format, err := export.Lookup(f.format)
	if err != nil {
		return err
	}
	o, err := f.options(app)
	if err != nil {
		return err
	}
	ed, err := app.openEditor(input)
	if err != nil {
		return err
	}
	data, err := ed.Export(cmd.Context(), format.Name, o)
	if err != nil {
		return err
	}
	out := f.out
	if out == "" {
		stem := strings.TrimSuffix(input, filepath.Ext(input))
		out = stem + "." + format.Extension
		if out == input {
			out = stem + "-export." + format.Extension
		}
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	detail := humanBytes(len(data))
	if format.Raster {
		w, h, err := render.Size(ed.Scene(), render.Options{Scale: o.Scale, Region: o.Region})
		if err == nil {
			detail = fmt.Sprintf("%dx%d, %s", w, h, detail)
		}
	}
	status(cmd.OutOrStdout(), true, out, detail)
	return nil
}

func newFormatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List export formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, name := range export.Formats() {
				f, err := export.Lookup(name)
				if err != nil {
					return err
				}
				kind := "vector"
				if f.Raster {
					kind = "raster"
				}
				rows = append(rows, []string{f.Name, f.Extension, f.MediaType, kind})
			}
			table(cmd.OutOrStdout(), []string{"NAME", "EXT", "MEDIA TYPE", "KIND"}, rows)
			return nil
		},
	}
}

// parseRegion parses "x,y,w,h" in document units.
func parseRegion(s string) (document.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return document.Rect{}, fmt.Errorf("region %q: want x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return document.Rect{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return document.Rect{}, fmt.Errorf("region %q: width and height must be positive", s)
	}
	return document.NewRect(v[0], v[1], v[2], v[3]), nil
}
