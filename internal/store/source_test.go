package store

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/stowaway/internal/domain"
	"github.com/vbonduro/stowaway/internal/loader"
	"github.com/vbonduro/stowaway/internal/state"
)

var _ loader.Source = (*Source)(nil)

func TestSourceFeedsLoader(t *testing.T) {
	steppedClock(t)
	ctx := context.Background()
	f := seed(t, openTestDB(t))

	_, err := f.source.Items.Create(ctx, NewItem{UserID: "u1", ContainerID: f.boxes[0].ID, Name: "Drill"})
	require.NoError(t, err)
	_, err = f.source.Items.Create(ctx, NewItem{UserID: "u1", ContainerID: f.boxes[1].ID, Name: "Whisk"})
	require.NoError(t, err)
	_, err = f.source.Groups.Create(ctx, "u1", "Tools", domain.GroupItem, nil)
	require.NoError(t, err)

	st := state.NewStore()
	require.NoError(t, loader.New(f.source, st, loader.Options{}, slog.Default()).Load(ctx, "u1"))

	snap := st.Snapshot()
	assert.Len(t, snap.Places, 2)
	assert.Len(t, snap.Containers, 2)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "Drill", snap.Items[0].Name)
	assert.Equal(t, "Whisk", snap.Items[1].Name)
	assert.Len(t, snap.Groups, 1)
}
