// Package state holds the normalized in-memory inventory for a session.
//
// Every write publishes a new immutable Snapshot, so readers always observe
// a consistent set of places, containers, items and groups. Setters replace
// whole collections; nothing is merged or deduplicated here.
package state

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbonduro/stowaway/internal/domain"
)

// Snapshot is a point-in-time view of the store. Callers must not modify the
// slices it holds.
type Snapshot struct {
	Version             uint64
	Places              []*domain.Place
	Containers          []*domain.Container
	Items               []*domain.Item
	Groups              []*domain.Group
	SelectedPlaceID     string
	SelectedContainerID string
	Loading             bool
	// Loaded is set by Replace and cleared by Reset.
	Loaded              bool
}

// Place returns the place with the given id, or nil.
func (s *Snapshot) Place(id string) *domain.Place {
	for _, p := range s.Places {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Container returns the container with the given id, or nil.
func (s *Snapshot) Container(id string) *domain.Container {
	for _, c := range s.Containers {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Item returns the item with the given id, or nil.
func (s *Snapshot) Item(id string) *domain.Item {
	for _, i := range s.Items {
		if i.ID == id {
			return i
		}
	}
	return nil
}

// ContainerByQRCode returns the container carrying the given QR code id, or nil.
func (s *Snapshot) ContainerByQRCode(code string) *domain.Container {
	for _, c := range s.Containers {
		if c.QRCodeID != nil && *c.QRCodeID == code {
			return c
		}
	}
	return nil
}

// ItemPlace resolves an item's place, preferring the denormalized place id
// and falling back to the item's container. Either result may be nil.
func (s *Snapshot) ItemPlace(item *domain.Item) (*domain.Container, *domain.Place) {
	container := s.Container(item.ContainerID)
	if item.PlaceID != nil && *item.PlaceID != "" {
		if p := s.Place(*item.PlaceID); p != nil {
			return container, p
		}
	}
	if container == nil {
		return nil, nil
	}
	return container, s.Place(container.PlaceID)
}

// SelectedPlace returns the currently selected place, or nil.
func (s *Snapshot) SelectedPlace() *domain.Place {
	if s.SelectedPlaceID == "" {
		return nil
	}
	return s.Place(s.SelectedPlaceID)
}

// SelectedContainer returns the currently selected container, or nil.
func (s *Snapshot) SelectedContainer() *domain.Container {
	if s.SelectedContainerID == "" {
		return nil
	}
	return s.Container(s.SelectedContainerID)
}

func (s *Snapshot) empty() bool {
	return len(s.Places) == 0 && len(s.Containers) == 0 && len(s.Items) == 0 && len(s.Groups) == 0
}

// Store is safe for concurrent use. Writers are serialized; readers never
// block.
type Store struct {
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	s := &Store{}
	s.snap.Store(&Snapshot{})
	return s
}

// Snapshot returns the latest published snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Version returns the version of the latest snapshot.
func (s *Store) Version() uint64 {
	return s.snap.Load().Version
}

// Empty reports whether the store holds no entities.
func (s *Store) Empty() bool {
	return s.snap.Load().empty()
}

func (s *Store) Loading() bool {
	return s.snap.Load().Loading
}

// Loaded reports whether a load has completed since construction or the
// last Reset. An empty inventory can be loaded.
func (s *Store) Loaded() bool {
	return s.snap.Load().Loaded
}

// update copies the current snapshot, applies fn and publishes the result.
func (s *Store) update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := *s.snap.Load()
	fn(&next)
	next.Version++
	s.snap.Store(&next)
}

// Replace swaps all four collections in a single transition.
func (s *Store) Replace(places []*domain.Place, containers []*domain.Container, items []*domain.Item, groups []*domain.Group) {
	s.update(func(n *Snapshot) {
		n.Places = places
		n.Containers = containers
		n.Items = items
		n.Groups = groups
		n.Loaded = true
	})
}

func (s *Store) SetPlaces(places []*domain.Place) {
	s.update(func(n *Snapshot) { n.Places = places })
}

func (s *Store) SetContainers(containers []*domain.Container) {
	s.update(func(n *Snapshot) { n.Containers = containers })
}

func (s *Store) SetItems(items []*domain.Item) {
	s.update(func(n *Snapshot) { n.Items = items })
}

func (s *Store) SetGroups(groups []*domain.Group) {
	s.update(func(n *Snapshot) { n.Groups = groups })
}

// SelectPlace sets the selected place id. An empty id clears the selection.
func (s *Store) SelectPlace(id string) {
	s.update(func(n *Snapshot) { n.SelectedPlaceID = id })
}

// SelectContainer sets the selected container id. An empty id clears the selection.
func (s *Store) SelectContainer(id string) {
	s.update(func(n *Snapshot) { n.SelectedContainerID = id })
}

// Select sets both selections in a single transition.
func (s *Store) Select(placeID, containerID string) {
	s.update(func(n *Snapshot) {
		n.SelectedPlaceID = placeID
		n.SelectedContainerID = containerID
	})
}

// TouchContainer records an access of container id at the given time. The
// container is copied; the previous snapshot is left as it was.
func (s *Store) TouchContainer(id string, at time.Time) {
	s.update(func(n *Snapshot) {
		containers := make([]*domain.Container, len(n.Containers))
		for i, c := range n.Containers {
			if c.ID == id {
				touched := *c
				touched.LastAccessed = &at
				c = &touched
			}
			containers[i] = c
		}
		n.Containers = containers
	})
}

func (s *Store) SetLoading(loading bool) {
	s.update(func(n *Snapshot) { n.Loading = loading })
}

// Reset clears all collections and selections, e.g. on sign-out.
func (s *Store) Reset() {
	s.update(func(n *Snapshot) {
		*n = Snapshot{Version: n.Version}
	})
}
