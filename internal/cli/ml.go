package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Glycocalex/glycowork-ab/pkg/ml"
)

// loadModel loads the glycan model from --model or the configured path.
func (c *CLI) loadModel(flagPath string) (*ml.Model, error) {
	path := flagPath
	if path == "" {
		path = c.Config.ML.ModelPath
	}
	if path == "" {
		return nil, fmt.Errorf("no model given: pass --model or set ml.model_path in the config")
	}
	return ml.LoadModelFile(path)
}

// loadLectinModel loads the lectin binding model from --lectin-model or
// the configured path.
func (c *CLI) loadLectinModel(flagPath string) (*ml.LectinModel, error) {
	path := flagPath
	if path == "" {
		path = c.Config.ML.LectinPath
	}
	if path == "" {
		return nil, fmt.Errorf("no lectin model given: pass --lectin-model or set ml.lectin_path in the config")
	}
	return ml.LoadLectinModelFile(path)
}

// embedCommand creates the "embed" command.
func (c *CLI) embedCommand() *cobra.Command {
	var (
		modelPath string
		dataset   string
		input     string
		dbPath    string
		query     string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "embed [sequences...]",
		Short: "Compute glycan embeddings, or search an embedding database",
		Long: `Embed runs glycans through the configured model and prints their
representation vectors as JSON. With --db the embeddings are stored in an
embedding database file instead; with --query the database is searched for
the nearest neighbors of one glycan.`,
		Example: `  glycoworks embed "Gal(b1-4)GlcNAc" --model sweetnet.json
  glycoworks embed --dataset milk_oligosaccharides --db milk.edb
  glycoworks embed --query "Gal(b1-4)Glc" --db milk.edb --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			model, err := c.loadModel(modelPath)
			if err != nil {
				return err
			}

			if query != "" {
				if dbPath == "" {
					return fmt.Errorf("--query requires --db")
				}
				db, err := ml.OpenEmbedDB(dbPath)
				if err != nil {
					return err
				}
				vecs, err := model.EmbedAll([]string{query})
				if err != nil {
					return err
				}
				opts := ml.SearchDefault
				if limit > 0 {
					opts.Limit = limit
				}
				for _, r := range db.Search(vecs[0], opts) {
					printDetail("%-50s cosine=%.4f euclid=%.4f", r.Name, r.Cosine, r.Euclid)
				}
				return nil
			}

			seqs, err := c.readGlycans(ctx, args, dataset, input)
			if err != nil {
				return err
			}
			vecs, err := model.EmbedAll(seqs)
			if err != nil {
				return err
			}

			if dbPath != "" {
				db := &ml.EmbedDB{}
				for i, seq := range seqs {
					db.Add(seq, vecs[i])
				}
				if err := db.Save(dbPath); err != nil {
					return err
				}
				printSuccess("Stored %d embeddings", len(seqs))
				printFile(dbPath)
				return nil
			}

			out := make(map[string][]float64, len(seqs))
			for i, seq := range seqs {
				out[seq] = vecs[i]
			}
			return json.NewEncoder(os.Stdout).Encode(out)
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "model weight file")
	cmd.Flags().StringVar(&dataset, "dataset", "", "read glycans from a named dataset")
	cmd.Flags().StringVar(&input, "input", "", "read glycans from a file, one per line")
	cmd.Flags().StringVar(&dbPath, "db", "", "embedding database file")
	cmd.Flags().StringVar(&query, "query", "", "search the database for neighbors of this glycan")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum search results")
	return cmd
}

// predictCommand creates the "predict" command.
func (c *CLI) predictCommand() *cobra.Command {
	var (
		modelPath  string
		dataset    string
		input      string
		asJSON     bool
		lectin     string
		lectinPath string
	)

	cmd := &cobra.Command{
		Use:   "predict [sequences...]",
		Short: "Classify glycans, or score lectin binding, with the configured models",
		Long: `Predict classifies glycans with the configured model. With --lectin the
glycans are instead scored for binding against the named lectin (bundled
names like ConA or WGA, or any protein stored in the lectin model),
weakest binder first.`,
		Example: `  glycoworks predict "Neu5Ac(a2-6)Gal(b1-4)GlcNAc" --model sweetnet.json
  glycoworks predict --dataset milk_oligosaccharides --lectin ConA --lectin-model lectinoracle.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			seqs, err := c.readGlycans(ctx, args, dataset, input)
			if err != nil {
				return err
			}

			if lectin != "" {
				lm, err := c.loadLectinModel(lectinPath)
				if err != nil {
					return err
				}
				scores, err := lm.Predict(lectin, seqs, ml.LectinOptions{Sort: true})
				if err != nil {
					return err
				}
				if asJSON {
					return json.NewEncoder(os.Stdout).Encode(scores)
				}
				printSuccess("%s binding, weakest first", lectin)
				for _, s := range scores {
					printDetail("%-50s %.4f", s.Glycan, s.Score)
				}
				return nil
			}

			model, err := c.loadModel(modelPath)
			if err != nil {
				return err
			}
			predictions, err := model.Predict(seqs)
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(predictions)
			}
			for _, p := range predictions {
				printSuccess("%s", p.Glycan)
				printDetail("%s (%.1f%%)", p.Class, p.Probability*100)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "model weight file")
	cmd.Flags().StringVar(&dataset, "dataset", "", "read glycans from a named dataset")
	cmd.Flags().StringVar(&input, "input", "", "read glycans from a file, one per line")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of styled output")
	cmd.Flags().StringVar(&lectin, "lectin", "", "score binding against this lectin instead of classifying")
	cmd.Flags().StringVar(&lectinPath, "lectin-model", "", "lectin model weight file")
	return cmd
}
