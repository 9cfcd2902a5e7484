package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/studio/export"
	"github.com/gogpu/studio/internal/config"
)

func newBatchCmd(app *App) *cobra.Command {
	var (
		out         string
		format      string
		presets     []string
		ratioSpecs  []string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "batch <snapshot.json>",
		Short: "Export a snapshot fitted to several aspect ratios into one zip",
		Long: strings.TrimSpace(`
Each target ratio gets its own copy of the design, resized with the
content-fit transform (uniform scale, centered, no cropping). Ratios that
fail are reported and skipped; the archive holds the rest.

Targets come from --preset (names from the config) and --ratio
(name=WIDTHxHEIGHT). With neither, every configured preset is used.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return err
			}
			ratios, err := batchRatios(cfg, presets, ratioSpecs)
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = cfg.Export.Concurrency
			}
			ed, err := app.openEditor(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			job := ed.ExportMany(cmd.Context(), ratios,
				export.WithFormat(format),
				export.WithConcurrency(concurrency))
			for p := range job.Progress() {
				detail := fmt.Sprintf("[%d/%d]", p.Done, p.Total)
				if p.Err != nil {
					detail += " " + p.Err.Error()
				}
				status(w, p.Err == nil, p.Name, detail)
			}
			res, err := job.Wait()
			if err != nil {
				return err
			}

			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".zip"
			}
			if err := os.WriteFile(out, res.Archive, 0o644); err != nil {
				return err
			}
			status(w, len(res.Failed) == 0, out,
				fmt.Sprintf("%d of %d renditions, %s", len(res.Renditions), len(ratios), humanBytes(len(res.Archive))))
			if len(res.Failed) > 0 {
				return fmt.Errorf("%d ratio(s) failed: %s", len(res.Failed), strings.Join(res.Failed, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output archive (default: input name with .zip)")
	cmd.Flags().StringVarP(&format, "format", "f", "png", "Format of each rendition")
	cmd.Flags().StringSliceVar(&presets, "preset", nil, "Configured preset name (repeatable)")
	cmd.Flags().StringArrayVar(&ratioSpecs, "ratio", nil, "Ad-hoc target name=WIDTHxHEIGHT (repeatable)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Renditions rendered in parallel (default from config)")
	return cmd
}

func batchRatios(cfg *config.Config, presets, specs []string) ([]export.Ratio, error) {
	if len(presets) == 0 && len(specs) == 0 {
		return cfg.Export.Presets, nil
	}
	var out []export.Ratio
	for _, name := range presets {
		r, ok := cfg.Preset(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", name)
		}
		out = append(out, r)
	}
	for _, s := range specs {
		r, err := parseRatio(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// parseRatio parses "name=WIDTHxHEIGHT".
func parseRatio(s string) (export.Ratio, error) {
	name, size, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return export.Ratio{}, fmt.Errorf("ratio %q: want name=WIDTHxHEIGHT", s)
	}
	ws, hs, ok := strings.Cut(strings.ToLower(size), "x")
	if !ok {
		return export.Ratio{}, fmt.Errorf("ratio %q: want name=WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return export.Ratio{}, fmt.Errorf("ratio %q: %w", s, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return export.Ratio{}, fmt.Errorf("ratio %q: %w", s, err)
	}
	return export.Ratio{Name: strings.TrimSpace(name), Width: w, Height: h}, nil
}
