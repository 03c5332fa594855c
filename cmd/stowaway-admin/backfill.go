package main

import (
	"github.com/spf13/cobra"

	"github.com/vbonduro/stowaway/internal/maintenance"
	"github.com/vbonduro/stowaway/internal/store"
)

func newBackfillCmd(flags *globalFlags) *cobra.Command {
	var opts maintenance.BackfillOptions

	cmd := &cobra.Command{
		Use:   "backfill-place-ids",
		Short: "Copy each item's container place id onto items that lack one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.validateFormat(); err != nil {
				return err
			}
			database, err := flags.openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.Close()
			}()

			report, err := maintenance.BackfillPlaceIDs(cmd.Context(),
				store.NewItemStore(database), store.NewContainerStore(database), opts, flags.logger(cmd))
			if err != nil {
				return err
			}
			return outputReport(cmd, flags.format, report)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", maintenance.DefaultBatchSize, "Items read per page")
	return cmd
}
