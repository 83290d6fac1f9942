package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Glycocalex/glycowork-ab/pkg/pipeline"
	"github.com/Glycocalex/glycowork-ab/pkg/store"
)

// drawCommand creates the "draw" command for SNFG diagram rendering.
func (c *CLI) drawCommand() *cobra.Command {
	var (
		dataset      string
		input        string
		formats      string
		outDir       string
		labels       bool
		hideLinkages bool
		interactive  bool
		noCache      bool
		refresh      bool
	)

	cmd := &cobra.Command{
		Use:   "draw [sequences...]",
		Short: "Render SNFG diagrams",
		Example: `  glycoworks draw "Neu5Ac(a2-3)Gal(b1-4)GlcNAc" --format svg,png
  glycoworks draw --dataset n_glycan_cores --interactive --out diagrams/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if interactive {
				if dataset == "" {
					return fmt.Errorf("--interactive requires --dataset")
				}
				seq, err := c.pickGlycan(ctx, dataset)
				if err != nil {
					return err
				}
				if seq == "" {
					printInfo("Nothing selected")
					return nil
				}
				args = []string{seq}
				dataset = ""
			}

			seqs, err := c.readGlycans(ctx, args, dataset, input)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			glycans, err := runner.ParseAll(seqs)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, "Rendering diagrams...")
			spinner.Start()
			artifacts, hit, err := runner.RenderWithCacheInfo(ctx, glycans, pipeline.Options{
				Glycans:      seqs,
				Formats:      parseFormats(formats),
				Labels:       labels,
				HideLinkages: hideLinkages,
				Refresh:      refresh,
				Logger:       c.Logger,
			})
			if err != nil {
				spinner.StopWithError(err.Error())
				return err
			}
			spinner.Stop()

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			written := 0
			for i, g := range glycans {
				name := fmt.Sprintf("glycan_%03d", i+1)
				for format, data := range artifacts[g.Canonical()] {
					path := filepath.Join(outDir, name+"."+format)
					if err := os.WriteFile(path, data, 0o644); err != nil {
						return err
					}
					printFile(path)
					written++
				}
			}
			printSuccess("Wrote %d files", written)
			printStats(len(glycans), 0, hit)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "read glycans from a named dataset")
	cmd.Flags().StringVar(&input, "input", "", "read glycans from a file, one per line")
	cmd.Flags().StringVar(&formats, "format", "svg", "comma-separated output formats (svg, png, dot, json)")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().BoolVar(&labels, "labels", false, "label nodes with residue names")
	cmd.Flags().BoolVar(&hideLinkages, "hide-linkages", false, "omit linkage edge labels")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "pick one glycan from the dataset")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-render even if cached")
	return cmd
}

// pickGlycan runs the interactive dataset picker and returns the chosen
// sequence, or "" when the user quit without selecting.
func (c *CLI) pickGlycan(ctx context.Context, dataset string) (string, error) {
	st, err := c.newStore(ctx)
	if err != nil {
		return "", err
	}
	defer st.Close(ctx)
	d, err := store.Resolve(ctx, st, dataset)
	if err != nil {
		return "", err
	}

	entries := make([]GlycanEntry, len(d.Glycans))
	for i, seq := range d.Glycans {
		entries[i] = GlycanEntry{Sequence: seq, Label: d.Labels[seq]}
	}

	final, err := tea.NewProgram(NewGlycanListModel(entries), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", err
	}
	model, ok := final.(GlycanListModel)
	if !ok || model.Selected == nil {
		return "", nil
	}
	return model.Selected.Sequence, nil
}
