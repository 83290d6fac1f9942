package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Glycocalex/glycowork-ab/pkg/pipeline"
	"github.com/Glycocalex/glycowork-ab/pkg/stats"
)

// diffCommand creates the "diff" command for differential abundance
// analysis.
func (c *CLI) diffCommand() *cobra.Command {
	var (
		abundancePath string
		groupA        string
		groupB        string
		mode          string
		alpha         float64
		paired        bool
		nonparametric bool
		asJSON        bool
		noCache       bool
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Differential abundance between two sample groups",
		Long: `Diff reads a CSV abundance table (first column: IUPAC-condensed
sequences, remaining columns: samples), compares two sample groups, and
reports effect sizes with multiplicity-corrected p-values. Motif mode
collapses the table to motif level first.`,
		Example: `  glycoworks diff --abundance data.csv --group-a s1,s2,s3 --group-b s4,s5,s6
  glycoworks diff --abundance data.csv --group-a s1,s2,s3 --group-b s4,s5,s6 --mode glycan --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			table, err := readAbundance(abundancePath)
			if err != nil {
				return err
			}
			if groupA == "" || groupB == "" {
				return fmt.Errorf("--group-a and --group-b are required")
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := pipeline.Options{
				Glycans:       table.Features,
				Mode:          mode,
				Abundance:     table,
				GroupA:        strings.Split(groupA, ","),
				GroupB:        strings.Split(groupB, ","),
				Alpha:         alpha,
				Paired:        paired,
				Nonparametric: nonparametric,
				Formats:       []string{pipeline.FormatDOT},
				Logger:        c.Logger,
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			p := newProgress(c.Logger)
			m, err := runner.Quantify(ctx, opts)
			if err != nil {
				return err
			}
			results, usedAlpha, err := runner.Analyze(m, opts)
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Tested %d features", len(results)))

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(struct {
					Alpha   float64               `json:"alpha"`
					Results []pipeline.DiffResult `json:"results"`
				}{usedAlpha, results})
			}

			significant := 0
			for _, r := range results {
				if !r.Significant {
					continue
				}
				significant++
				line := fmt.Sprintf("%-40s d=%+.2f  p.adj=%.2e", r.Feature, r.EffectSize, r.AdjPValue)
				fmt.Println("  " + styleSignificant.Render(line))
			}
			if significant == 0 {
				printInfo("No significant features at alpha %.3g", usedAlpha)
			} else {
				printSuccess("%d of %d features significant at alpha %.3g", significant, len(results), usedAlpha)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&abundancePath, "abundance", "", "CSV abundance table (required)")
	cmd.Flags().StringVar(&groupA, "group-a", "", "comma-separated sample names of group A")
	cmd.Flags().StringVar(&groupB, "group-b", "", "comma-separated sample names of group B")
	cmd.Flags().StringVar(&mode, "mode", pipeline.ModeMotif, "analysis level: motif or glycan")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "significance threshold (0 scales with sample size)")
	cmd.Flags().BoolVar(&paired, "paired", false, "samples are paired between groups")
	cmd.Flags().BoolVar(&nonparametric, "nonparametric", false, "use rank tests")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of styled output")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	_ = cmd.MarkFlagRequired("abundance")
	return cmd
}

// readAbundance parses a CSV abundance table. The header row names the
// samples; every following row is a sequence and its abundances.
func readAbundance(path string) (*stats.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, fmt.Errorf("%s: need a header row and at least one feature row", path)
	}

	samples := records[0][1:]
	features := make([]string, 0, len(records)-1)
	table := stats.NewTable(nil, samples)
	for _, record := range records[1:] {
		if len(record) != len(samples)+1 {
			return nil, fmt.Errorf("%s: row %q has %d columns, want %d", path, record[0], len(record), len(samples)+1)
		}
		row := make([]float64, len(samples))
		for j, field := range record[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %q: %w", path, record[0], err)
			}
			row[j] = v
		}
		features = append(features, record[0])
		table.Values = append(table.Values, row)
	}
	table.Features = features
	return table, nil
}
