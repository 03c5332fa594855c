package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vbonduro/stowaway/internal/maintenance"
	s3store "github.com/vbonduro/stowaway/internal/photostore/s3"
)

func newCacheControlCmd(flags *globalFlags) *cobra.Command {
	var (
		opts  maintenance.CacheControlOptions
		s3cfg s3store.Config
	)

	cmd := &cobra.Command{
		Use:   "set-cache-control",
		Short: "Rewrite the Cache-Control header of every photo in the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.validateFormat(); err != nil {
				return err
			}
			if opts.Bucket == "" {
				return maintenance.ErrMissingBucket
			}
			s3cfg.Bucket = opts.Bucket
			client, err := s3store.NewClient(cmd.Context(), s3cfg)
			if err != nil {
				return err
			}

			report, err := maintenance.SetCacheControl(cmd.Context(), client, opts, flags.logger(cmd))
			if err != nil {
				return err
			}
			return outputReport(cmd, flags.format, report)
		},
	}

	pathStyle, _ := strconv.ParseBool(os.Getenv("S3_PATH_STYLE"))
	cmd.Flags().StringVar(&opts.Bucket, "bucket", os.Getenv("S3_BUCKET"), "Bucket holding the photos")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "Only update keys with this prefix")
	cmd.Flags().StringVar(&opts.Value, "value", maintenance.DefaultCacheControl, "Cache-Control value to set")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().StringVar(&s3cfg.Region, "region", os.Getenv("S3_REGION"), "Bucket region")
	cmd.Flags().StringVar(&s3cfg.Endpoint, "endpoint", os.Getenv("S3_ENDPOINT"), "Endpoint of an S3-compatible service")
	cmd.Flags().BoolVar(&s3cfg.PathStyle, "path-style", pathStyle, "Use path-style addressing")
	return cmd
}
