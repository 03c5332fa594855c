package maintenance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/stowaway/internal/domain"
)

const JobBackfillPlaceIDs = "backfill-place-ids"

// itemRepository is the subset of store.ItemStore that BackfillPlaceIDs requires.
type itemRepository interface {
	ListMissingPlace(ctx context.Context, afterID string, limit int) ([]*domain.Item, error)
	SetPlaceID(ctx context.Context, id, placeID string) error
}

// containerRepository is the subset of store.ContainerStore that BackfillPlaceIDs requires.
type containerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Container, error)
}

type BackfillOptions struct {
	DryRun    bool
	BatchSize int
}

// BackfillPlaceIDs copies each container's place id onto items that lack
// one. Items whose container no longer exists are skipped.
func BackfillPlaceIDs(ctx context.Context, items itemRepository, containers containerRepository, opts BackfillOptions, logger *slog.Logger) (Report, error) {
	report := Report{Job: JobBackfillPlaceIDs, DryRun: opts.DryRun}
	limit := batchSize(opts.BatchSize)
	placeOf := make(map[string]string)

	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		page, err := items.ListMissingPlace(ctx, afterID, limit)
		if err != nil {
			return report, fmt.Errorf("failed to list items without place: %w", err)
		}

		for _, item := range page {
			placeID, ok := placeOf[item.ContainerID]
			if !ok {
				c, err := containers.GetByID(ctx, item.ContainerID)
				if err != nil {
					logger.Error("container lookup failed", "item_id", item.ID, "container_id", item.ContainerID, "error", err)
					report.record(outcomeErrored)
					continue
				}
				if c != nil {
					placeID = c.PlaceID
				}
				placeOf[item.ContainerID] = placeID
			}

			if placeID == "" {
				logger.Warn("item container missing", "item_id", item.ID, "container_id", item.ContainerID)
				report.record(outcomeSkipped)
				continue
			}
			if opts.DryRun {
				report.record(outcomeChanged)
				continue
			}
			if err := items.SetPlaceID(ctx, item.ID, placeID); err != nil {
				logger.Error("set place id failed", "item_id", item.ID, "error", err)
				report.record(outcomeErrored)
				continue
			}
			report.record(outcomeChanged)
		}

		if len(page) < limit {
			break
		}
		afterID = page[len(page)-1].ID
	}

	logger.Info("backfill finished", "dry_run", opts.DryRun, "processed", report.Processed,
		"changed", report.Changed, "skipped", report.Skipped, "errored", report.Errored)
	return report, nil
}
