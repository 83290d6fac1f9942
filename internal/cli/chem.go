package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Glycocalex/glycowork-ab/pkg/cache"
	"github.com/Glycocalex/glycowork-ab/pkg/chem/glytoucan"
	"github.com/Glycocalex/glycowork-ab/pkg/chem/pubchem"
)

// chemCommand creates the "chem" command group for external chemistry
// database lookups.
func (c *CLI) chemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chem",
		Short: "Look up compounds in external chemistry databases",
	}

	cmd.AddCommand(c.chemLookupCommand())
	cmd.AddCommand(c.chemGlytoucanCommand())

	return cmd
}

// chemBackend builds the response cache shared by the chemistry clients.
func (c *CLI) chemBackend(ctx context.Context, noCache bool) cache.Cache {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return cache.NewNullCache()
	}
	return backend
}

// chemLookupCommand creates the "chem lookup" subcommand (PubChem).
func (c *CLI) chemLookupCommand() *cobra.Command {
	var (
		asJSON   bool
		refresh  bool
		noCache  bool
		synonyms bool
	)

	cmd := &cobra.Command{
		Use:   "lookup <name>",
		Short: "Look up a compound by name in PubChem",
		Example: `  glycoworks chem lookup "N-acetyllactosamine"
  glycoworks chem lookup sialyllactose --synonyms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := pubchem.NewClient(c.chemBackend(ctx, noCache), c.Config.HTTP.ClientTTL.Duration, c.Config.HTTP.RetryCount)

			spinner := newSpinnerWithContext(ctx, "Querying PubChem...")
			spinner.Start()
			compound, err := client.CompoundByName(ctx, args[0], refresh)
			if err != nil {
				spinner.StopWithError(err.Error())
				return err
			}
			spinner.Stop()

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(compound)
			}

			printSuccess("CID %d", compound.CID)
			printKeyValue("Formula", compound.MolecularFormula)
			printKeyValue("Weight", fmt.Sprintf("%.2f g/mol", compound.MolecularWeight))
			printKeyValue("SMILES", compound.CanonicalSMILES)
			printKeyValue("InChIKey", compound.InChIKey)
			if compound.IUPACName != "" {
				printKeyValue("IUPAC", compound.IUPACName)
			}

			if synonyms {
				names, err := client.Synonyms(ctx, compound.CID, refresh)
				if err != nil {
					return err
				}
				limit := len(names)
				if limit > 10 {
					limit = 10
				}
				for _, name := range names[:limit] {
					printDetail("%s", name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of styled output")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().BoolVar(&synonyms, "synonyms", false, "also list compound synonyms")
	return cmd
}

// chemGlytoucanCommand creates the "chem glytoucan" subcommand.
func (c *CLI) chemGlytoucanCommand() *cobra.Command {
	var (
		asJSON  bool
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:     "glytoucan <accession>",
		Short:   "Look up a glycan accession in GlyTouCan",
		Example: `  glycoworks chem glytoucan G00026MO`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := glytoucan.NewClient(c.chemBackend(ctx, noCache), c.Config.HTTP.ClientTTL.Duration, c.Config.HTTP.RetryCount)

			spinner := newSpinnerWithContext(ctx, "Querying GlyTouCan...")
			spinner.Start()
			entry, err := client.ByAccession(ctx, args[0], refresh)
			if err != nil {
				spinner.StopWithError(err.Error())
				return err
			}
			spinner.Stop()

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(entry)
			}

			printSuccess("%s", entry.Accession)
			printKeyValue("WURCS", entry.WURCS)
			if entry.Mass > 0 {
				printKeyValue("Mass", fmt.Sprintf("%.4f Da", entry.Mass))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of styled output")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	return cmd
}
