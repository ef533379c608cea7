package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/popdex/popdex"
	"github.com/popdex/popdex/pkg/identity"
)

// NewSearchCommand creates the search command.
func (a *App) NewSearchCommand() *cobra.Command {
	var includeAutographed bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Resolve a query into ranked identities",
		Long: `Search resolves a query against the catalog snapshot.

A query of digits (optionally prefixed with '#') matches catalog numbers
exactly. Anything else matches name, series and slug by substring.
Autographed rows are excluded unless --autographed is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.Engine()
			if err != nil {
				return err
			}

			var opts []popdex.SearchOption
			if includeAutographed {
				opts = append(opts, popdex.WithAutographed())
			}

			ids, err := engine.Search(cmd.Context(), strings.Join(args, " "), opts...)
			if err != nil {
				return err
			}
			return a.printIdentities(cmd, ids)
		},
	}

	cmd.Flags().BoolVar(&includeAutographed, "autographed", false, "include autographed rows in results")
	return cmd
}

// NewBarcodeCommand creates the barcode command.
func (a *App) NewBarcodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "barcode <code>",
		Short: "Resolve a barcode by exact equality",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.Engine()
			if err != nil {
				return err
			}

			ids, err := engine.LookupByBarcode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printIdentities(cmd, ids)
		},
	}
}

// NewReloadCommand creates the reload command.
func (a *App) NewReloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Fetch and swap in a fresh catalog snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.Engine()
			if err != nil {
				return err
			}

			if err := engine.ForceReload(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Catalog reloaded")
			return nil
		},
	}
}

// NewCheckCommand creates the update-check command.
func (a *App) NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check whether the remote catalog is newer than the local snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.Engine()
			if err != nil {
				return err
			}

			updated, err := engine.CheckForUpdate(cmd.Context())
			if err != nil {
				return err
			}
			if updated {
				cmd.Println("Update available")
			} else {
				cmd.Println("Catalog is up to date")
			}
			return nil
		},
	}
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("popdex %s (commit %s, built %s)\n", a.version, a.commit, a.date)
		},
	}
}

// printIdentities renders the identity list in the configured format.
func (a *App) printIdentities(cmd *cobra.Command, ids []identity.PopIdentity) error {
	if a.config.Format == "json" {
		data, err := json.MarshalIndent(ids, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(ids) == 0 {
		cmd.Println("No results")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tNAME\tSERIES\tSOURCES\tPRICE")
	for _, id := range ids {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			id.Number, id.BaseName, id.Series, len(id.Listings), bestPrice(&id))
	}
	return w.Flush()
}

// bestPrice returns the lowest listed price signal, or a dash.
func bestPrice(id *identity.PopIdentity) string {
	var best string
	var bestAmount float64
	for _, listing := range id.Listings {
		if listing.Price == nil {
			continue
		}
		if best == "" || listing.Price.Amount < bestAmount {
			bestAmount = listing.Price.Amount
			best = fmt.Sprintf("%.2f %s", listing.Price.Amount, listing.Price.Currency)
		}
	}
	if best == "" {
		return "-"
	}
	return best
}
