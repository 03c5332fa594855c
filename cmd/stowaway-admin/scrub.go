package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbonduro/stowaway/internal/maintenance"
	"github.com/vbonduro/stowaway/internal/store"
)

func newScrubCmd(flags *globalFlags) *cobra.Command {
	var (
		opts   maintenance.ScrubOptions
		before string
	)

	cmd := &cobra.Command{
		Use:   "scrub-activity",
		Short: "Blank actor email, name and IP address in the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.validateFormat(); err != nil {
				return err
			}
			if before != "" {
				t, err := time.Parse(time.RFC3339, before)
				if err != nil {
					return fmt.Errorf("invalid --before %q: %w", before, err)
				}
				opts.Before = t
			}
			database, err := flags.openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.Close()
			}()

			report, err := maintenance.ScrubActivity(cmd.Context(), store.NewActivityStore(database), opts, flags.logger(cmd))
			if err != nil {
				return err
			}
			return outputReport(cmd, flags.format, report)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", maintenance.DefaultBatchSize, "Rows read per page")
	cmd.Flags().StringVar(&before, "before", "", "Only scrub rows created before this RFC3339 time")
	return cmd
}
