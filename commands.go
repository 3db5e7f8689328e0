package main

import (
	"fmt"

	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/medicamentsparser"
	"github.com/giygas/pharmacie-api/seed"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API with recovery and daily report jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the demo users, catalog, prescriptions, pharmacies and patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			written, err := seed.Run(cmd.Context(), a.repos, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "collections written: %v\n", written)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "overwrite collections that already hold data")
	return cmd
}

func recoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Replay the conversion journal once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.workflow.Recover(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "entries replayed: %d, prescriptions deleted: %v, entries without order: %d\n",
				report.EntriesReplayed, report.OrdonnancesDeleted, report.EntriesWithoutOrder)
			return nil
		},
	}
}

func importCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-catalog [file|url]",
		Short: "Add BDPM specialties missing from the catalog with a stock of zero",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := medicamentsparser.DefaultSpecialitesURL
			if len(args) == 1 {
				source = args[0]
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			result, err := medicamentsparser.NewImporter(a.repos, a.validator).Import(cmd.Context(), source)
			if err != nil {
				logging.Error("Catalog import failed", "source", source, "error", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "parsed %d, added %d, already in catalog %d, not commercialised %d, invalid %d\n",
				result.Parsed, result.Added, result.AlreadyInCatalog, result.NotCommercialised, result.Invalid)
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Log the low stock, order and data quality report",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			rep, err := a.reporter.Build(cmd.Context())
			if err != nil {
				return err
			}
			rep.Log()
			return nil
		},
	}
}
