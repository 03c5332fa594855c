package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/stowaway/internal/domain"
)

func TestGroupStoreCreateAndList(t *testing.T) {
	steppedClock(t)
	ctx := context.Background()
	s := NewGroupStore(openTestDB(t))

	parent, err := s.Create(ctx, "u1", "Tools", domain.GroupItem, nil)
	require.NoError(t, err)
	child, err := s.Create(ctx, "u1", "Power tools", domain.GroupItem, &parent.ID)
	require.NoError(t, err)
	_, err = s.Create(ctx, "u2", "Other", domain.GroupPlace, nil)
	require.NoError(t, err)

	groups, err := s.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, parent.ID, groups[0].ID)
	assert.Nil(t, groups[0].ParentID)
	assert.Equal(t, child.ID, groups[1].ID)
	require.NotNil(t, groups[1].ParentID)
	assert.Equal(t, parent.ID, *groups[1].ParentID)
	assert.Equal(t, domain.GroupItem, groups[1].Type)
}
