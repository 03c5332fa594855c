package store

import (
	"context"
	"database/sql"

	"github.com/vbonduro/stowaway/internal/domain"
)

// Source serves the loader from the repositories.
type Source struct {
	Places     *PlaceStore
	Containers *ContainerStore
	Items      *ItemStore
	Groups     *GroupStore
}

func NewSource(db *sql.DB) *Source {
	return &Source{
		Places:     NewPlaceStore(db),
		Containers: NewContainerStore(db),
		Items:      NewItemStore(db),
		Groups:     NewGroupStore(db),
	}
}

func (s *Source) FetchPlaces(ctx context.Context, userID string) ([]*domain.Place, error) {
	return s.Places.ListForUser(ctx, userID)
}

func (s *Source) FetchContainersByPlace(ctx context.Context, placeID string) ([]*domain.Container, error) {
	return s.Containers.ListByPlace(ctx, placeID)
}

func (s *Source) FetchItemsByContainer(ctx context.Context, containerID string) ([]*domain.Item, error) {
	return s.Items.ListByContainer(ctx, containerID)
}

func (s *Source) FetchGroups(ctx context.Context, userID string) ([]*domain.Group, error) {
	return s.Groups.ListForUser(ctx, userID)
}
