package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/stowaway/internal/domain"
)

const JobScrubActivity = "scrub-activity"

// activityRepository is the subset of store.ActivityStore that ScrubActivity requires.
type activityRepository interface {
	ListPage(ctx context.Context, afterID int64, before time.Time, limit int) ([]*domain.ActivityLog, error)
	Scrub(ctx context.Context, id int64) error
}

// ScrubOptions selects the rows to scrub. A zero Before selects every row.
type ScrubOptions struct {
	DryRun    bool
	BatchSize int
	Before    time.Time
}

// ScrubActivity blanks the actor email, name and IP address of activity log
// rows. Rows that are already blank are skipped.
func ScrubActivity(ctx context.Context, activity activityRepository, opts ScrubOptions, logger *slog.Logger) (Report, error) {
	report := Report{Job: JobScrubActivity, DryRun: opts.DryRun}
	limit := batchSize(opts.BatchSize)

	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		page, err := activity.ListPage(ctx, afterID, opts.Before, limit)
		if err != nil {
			return report, fmt.Errorf("failed to list activity: %w", err)
		}

		for _, entry := range page {
			switch {
			case scrubbed(entry):
				report.record(outcomeSkipped)
			case opts.DryRun:
				report.record(outcomeChanged)
			default:
				if err := activity.Scrub(ctx, entry.ID); err != nil {
					logger.Error("scrub failed", "activity_id", entry.ID, "error", err)
					report.record(outcomeErrored)
					continue
				}
				report.record(outcomeChanged)
			}
		}

		if len(page) < limit {
			break
		}
		afterID = page[len(page)-1].ID
	}

	logger.Info("scrub finished", "dry_run", opts.DryRun, "processed", report.Processed,
		"changed", report.Changed, "skipped", report.Skipped, "errored", report.Errored)
	return report, nil
}

func scrubbed(e *domain.ActivityLog) bool {
	return e.ActorEmail == "" && e.ActorName == "" && e.IPAddress == ""
}
