package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Glycocalex/glycowork-ab/pkg/glycan"
	"github.com/Glycocalex/glycowork-ab/pkg/pipeline"
)

// parseCommand creates the "parse" command.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		dataset  string
		input    string
		asJSON   bool
		showComp bool
	)

	cmd := &cobra.Command{
		Use:   "parse [sequences...]",
		Short: "Validate IUPAC-condensed sequences and print structure summaries",
		Example: `  glycoworks parse "Gal(b1-4)GlcNAc"
  glycoworks parse --dataset milk_oligosaccharides
  glycoworks parse --input glycans.txt --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			seqs, err := c.readGlycans(ctx, args, dataset, input)
			if err != nil {
				return err
			}

			type summary struct {
				Sequence    string         `json:"sequence"`
				Canonical   string         `json:"canonical"`
				Residues    int            `json:"residues"`
				Depth       int            `json:"depth"`
				Composition map[string]int `json:"composition"`
			}

			summaries := make([]summary, 0, len(seqs))
			for _, seq := range seqs {
				g, err := glycan.Parse(seq)
				if err != nil {
					printError("%s", err)
					return err
				}
				summaries = append(summaries, summary{
					Sequence:    seq,
					Canonical:   g.Canonical(),
					Residues:    g.NodeCount(),
					Depth:       g.Depth(),
					Composition: g.Composition(),
				})
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(summaries)
			}

			for _, s := range summaries {
				printSuccess("%s", s.Canonical)
				printDetail("%d residues, depth %d", s.Residues, s.Depth)
				if showComp {
					keys := make([]string, 0, len(s.Composition))
					for k := range s.Composition {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					for _, k := range keys {
						printDetail("%s ×%d", k, s.Composition[k])
					}
				}
			}
			printInfo("%d valid sequences", len(summaries))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "read glycans from a named dataset")
	cmd.Flags().StringVar(&input, "input", "", "read glycans from a file, one per line")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of styled output")
	cmd.Flags().BoolVar(&showComp, "composition", false, "print monosaccharide composition")
	return cmd
}

// motifsCommand creates the "motifs" command.
func (c *CLI) motifsCommand() *cobra.Command {
	var (
		dataset string
		input   string
		asJSON  bool
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "motifs [sequences...]",
		Short: "Count library motifs across glycans",
		Example: `  glycoworks motifs "Fuc(a1-2)Gal(b1-4)GlcNAc"
  glycoworks motifs --dataset milk_oligosaccharides --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			seqs, err := c.readGlycans(ctx, args, dataset, input)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			p := newProgress(c.Logger)
			m, hit, err := runner.QuantifyWithCacheInfo(ctx, pipeline.Options{
				Glycans: seqs,
				Refresh: refresh,
			})
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Quantified %d glycans", len(m.Glycans)))

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(m)
			}

			for i, seq := range m.Glycans {
				printSuccess("%s", seq)
				for j, name := range m.Motifs {
					if n := m.Data[i][j]; n > 0 {
						printDetail("%s ×%.0f", name, n)
					}
				}
			}
			printStats(len(m.Glycans), len(m.Motifs), hit)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "read glycans from a named dataset")
	cmd.Flags().StringVar(&input, "input", "", "read glycans from a file, one per line")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the full count matrix as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	return cmd
}
