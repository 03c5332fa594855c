package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/stowaway/internal/db"
	"github.com/vbonduro/stowaway/internal/domain"
	"github.com/vbonduro/stowaway/internal/maintenance"
	"github.com/vbonduro/stowaway/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stowaway.db")
	d, err := db.Open(path)
	require.NoError(t, err)
	defer func() { _ = d.Close() }()

	_, err = store.NewActivityStore(d).Record(context.Background(), &domain.ActivityLog{
		UserID: "u1", Action: "item.create", ActorEmail: "ann@example.com", IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)
	return path
}

func TestScrubActivityCommandJSON(t *testing.T) {
	path := newDatabase(t)

	out, err := run(t, "scrub-activity", "--db", path, "--format", "json")
	require.NoError(t, err)

	var report maintenance.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, maintenance.Report{Job: maintenance.JobScrubActivity, Processed: 1, Changed: 1}, report)
}

func TestBackfillCommandTable(t *testing.T) {
	path := newDatabase(t)

	out, err := run(t, "backfill-place-ids", "--db", path, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "backfill-place-ids")
	assert.Contains(t, out, "PROCESSED")
	assert.Contains(t, out, "DRY RUN")
}

func TestCommandsFailOnSetupErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.db")

	_, err := run(t, "scrub-activity", "--db", missing)
	assert.Error(t, err)

	_, err = run(t, "backfill-place-ids", "--db", "")
	assert.ErrorIs(t, err, errMissingDB)

	_, err = run(t, "set-cache-control", "--bucket", "")
	assert.ErrorIs(t, err, maintenance.ErrMissingBucket)

	_, err = run(t, "scrub-activity", "--db", newDatabase(t), "--before", "yesterday")
	assert.Error(t, err)

	_, err = run(t, "scrub-activity", "--db", newDatabase(t), "--format", "xml")
	assert.Error(t, err)
}
