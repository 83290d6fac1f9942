package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/Glycocalex/glycowork-ab/pkg/store"
)

// datasetsCommand creates the "datasets" command group.
func (c *CLI) datasetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Manage named glycan collections",
	}

	cmd.AddCommand(c.datasetsListCommand())
	cmd.AddCommand(c.datasetsShowCommand())
	cmd.AddCommand(c.datasetsAddCommand())
	cmd.AddCommand(c.datasetsRemoveCommand())

	return cmd
}

func (c *CLI) datasetsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			for _, name := range store.EmbeddedNames() {
				printDetail("%s (built-in)", name)
			}
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)
			names, err := st.List(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				printDetail("%s", name)
			}
			return nil
		},
	}
}

func (c *CLI) datasetsShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			d, err := store.Resolve(ctx, st, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(d)
			}
			printSuccess("%s", d.Name)
			if d.Description != "" {
				printDetail("%s", d.Description)
			}
			for _, seq := range d.Glycans {
				if label := d.Labels[seq]; label != "" {
					printDetail("%-55s %s", seq, label)
				} else {
					printDetail("%s", seq)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of styled output")
	return cmd
}

func (c *CLI) datasetsAddCommand() *cobra.Command {
	var (
		description string
		input       string
	)

	cmd := &cobra.Command{
		Use:   "add <name> [sequences...]",
		Short: "Store a dataset",
		Example: `  glycoworks datasets add my-panel "Gal(b1-4)GlcNAc" "Fuc(a1-2)Gal(b1-4)Glc"
  glycoworks datasets add my-panel --input glycans.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			seqs, err := c.readGlycans(ctx, args[1:], "", input)
			if err != nil {
				return err
			}

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			d := &store.Dataset{
				Name:        args[0],
				Description: description,
				Glycans:     seqs,
			}
			if err := st.Put(ctx, d); err != nil {
				return err
			}
			printSuccess("Stored %s with %d glycans", d.Name, len(d.Glycans))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "dataset description")
	cmd.Flags().StringVar(&input, "input", "", "read glycans from a file, one per line")
	return cmd
}

func (c *CLI) datasetsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a stored dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Removed %s", args[0])
			return nil
		},
	}
}
