// Package maintenance holds the one-off data repair jobs run by
// stowaway-admin. Every job walks its records in pages, reports what it did
// and keeps going when a single record fails.
package maintenance

import (
	"errors"

	"github.com/vbonduro/stowaway/internal/metrics"
)

const DefaultBatchSize = 100

// ErrMissingBucket is returned when the cache-control job has no bucket.
var ErrMissingBucket = errors.New("maintenance: bucket is required")

// Report summarizes a job run. In a dry run Changed counts the records that
// would have been changed.
type Report struct {
	Job       string `json:"job"`
	DryRun    bool   `json:"dryRun"`
	Processed int    `json:"processed"`
	Changed   int    `json:"changed"`
	Skipped   int    `json:"skipped"`
	Errored   int    `json:"errored"`
}

type outcome string

const (
	outcomeChanged outcome = "changed"
	outcomeSkipped outcome = "skipped"
	outcomeErrored outcome = "errored"
)

// record counts one visited record.
func (r *Report) record(o outcome) {
	r.Processed++
	switch o {
	case outcomeChanged:
		r.Changed++
	case outcomeSkipped:
		r.Skipped++
	case outcomeErrored:
		r.Errored++
	}
	metrics.MaintenanceObjectsTotal.WithLabelValues(r.Job, string(o)).Inc()
}

func batchSize(n int) int {
	if n <= 0 {
		return DefaultBatchSize
	}
	return n
}
