// Package service exposes the inventory operations used by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/stowaway/internal/domain"
	"github.com/vbonduro/stowaway/internal/filter"
	"github.com/vbonduro/stowaway/internal/loader"
	"github.com/vbonduro/stowaway/internal/photostore"
	"github.com/vbonduro/stowaway/internal/search"
	"github.com/vbonduro/stowaway/internal/sorting"
	"github.com/vbonduro/stowaway/internal/state"
	"github.com/vbonduro/stowaway/internal/store"
)

// ErrNotFound is returned when an operation targets an entity the user
// cannot see.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput is returned for requests that fail validation.
var ErrInvalidInput = errors.New("invalid input")

// ErrForbidden is returned when the user can see an entity but may not
// perform the operation on it.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a create would duplicate a unique value.
var ErrConflict = errors.New("conflict")

// placeRepository is the subset of store.PlaceStore that InventoryService requires.
type placeRepository interface {
	Create(ctx context.Context, userID, name string, placeType domain.PlaceType, groupID *string) (*domain.Place, error)
	AddMember(ctx context.Context, placeID, userID string, role domain.Role) error
	Delete(ctx context.Context, id string) error
}

// containerRepository is the subset of store.ContainerStore that InventoryService requires.
type containerRepository interface {
	Create(ctx context.Context, userID, placeID, name string, qrCodeID, groupID *string) (*domain.Container, error)
	GetByQRCode(ctx context.Context, code string) (*domain.Container, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// itemRepository is the subset of store.ItemStore that InventoryService requires.
type itemRepository interface {
	Create(ctx context.Context, in store.NewItem) (*domain.Item, error)
	Delete(ctx context.Context, id string) error
}

// groupRepository is the subset of store.GroupStore that InventoryService requires.
type groupRepository interface {
	Create(ctx context.Context, userID, name string, groupType domain.GroupType, parentID *string) (*domain.Group, error)
}

// photoRepository is the subset of store.PhotoStore that InventoryService requires.
type photoRepository interface {
	Attach(ctx context.Context, kind store.PhotoKind, entityID, key string) error
}

// activityRecorder is the subset of store.ActivityStore that InventoryService requires.
type activityRecorder interface {
	Record(ctx context.Context, entry *domain.ActivityLog) (int64, error)
}

type Options struct {
	SearchCacheSize      int
	LoaderMaxConcurrency int
	MaxSessions          int
}

// Repositories bundles the persistence dependencies of InventoryService.
type Repositories struct {
	Source     loader.Source
	Places     placeRepository
	Containers containerRepository
	Items      itemRepository
	Groups     groupRepository
	Photos     photoRepository
	Activity   activityRecorder
}

// Actor identifies who performs a mutation, for the activity log.
type Actor struct {
	UserID string
	Email  string
	Name   string
	IP     string
}

type InventoryService struct {
	repos    Repositories
	photoStg photostore.PhotoStore
	sessions *sessions
	logger   *slog.Logger
}

func NewInventoryService(repos Repositories, photoStg photostore.PhotoStore, opts Options, logger *slog.Logger) (*InventoryService, error) {
	sess, err := newSessions(repos.Source, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &InventoryService{repos: repos, photoStg: photoStg, sessions: sess, logger: logger}, nil
}

// Session returns the in-memory session of userID, creating an empty one if
// needed.
func (s *InventoryService) Session(userID string) *Session {
	return s.sessions.get(userID)
}

// Load refreshes the user's session from the data service.
func (s *InventoryService) Load(ctx context.Context, userID string) error {
	if userID == "" {
		return loader.ErrMissingUser
	}
	return s.Session(userID).Loader.Reload(ctx, userID)
}

// ensureLoaded loads the session on first use.
func (s *InventoryService) ensureLoaded(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, loader.ErrMissingUser
	}
	sess := s.Session(userID)
	if !sess.Store.Loaded() {
		if err := sess.Loader.Load(ctx, userID); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

type PlaceQuery struct {
	Text    string
	Sort    sorting.Strategy
	GroupID string
}

func (s *InventoryService) Places(ctx context.Context, userID string, q PlaceQuery) ([]*domain.Place, error) {
	sess, err := s.ensureLoaded(ctx, userID)
	if err != nil {
		return nil, err
	}
	places := sess.Store.Snapshot().Places
	if q.GroupID != "" {
		places = filter.Where(places, filter.PlaceInGroup(q.GroupID))
	}
	places = filter.Filter(places, q.Text, filter.Select(filter.PlaceFields, "name", "type"), nil)
	return sorting.Sort(places, q.Sort), nil
}

type ContainerQuery struct {
	Text    string
	Sort    sorting.Strategy
	PlaceID string
	GroupID string
}

func (s *InventoryService) Containers(ctx context.Context, userID string, q ContainerQuery) ([]*domain.Container, error) {
	sess, err := s.ensureLoaded(ctx, userID)
	if err != nil {
		return nil, err
	}
	containers := sess.Store.Snapshot().Containers
	var scope []func(*domain.Container) bool
	if q.PlaceID != "" {
		scope = append(scope, filter.ContainerInPlace(q.PlaceID))
	}
	if q.GroupID != "" {
		scope = append(scope, filter.ContainerInGroup(q.GroupID))
	}
	containers = filter.Where(containers, filter.All(scope...))
	containers = filter.Filter(containers, q.Text, filter.Select(filter.ContainerFields, "name", "qrCodeId"), nil)
	return sorting.Sort(containers, q.Sort), nil
}

type ItemQuery struct {
	Text string
	// Fields selects the searchable fields; empty means name, description
	// and tags.
	Fields      []string
	Sort        sorting.Strategy
	ContainerID string
	PlaceID     string
	Tag         string
	GroupID     string
}

var defaultItemFields = []string{"name", "description", "tags"}

// ItemView is an item with its resolved location.
type ItemView struct {
	*domain.Item
	Location string `json:"location"`
}

func (s *InventoryService) Items(ctx context.Context, userID string, q ItemQuery) ([]ItemView, error) {
	sess, err := s.ensureLoaded(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap := sess.Store.Snapshot()

	var scope []func(*domain.Item) bool
	if q.ContainerID != "" {
		scope = append(scope, filter.ItemInContainer(q.ContainerID))
	}
	if q.PlaceID != "" {
		scope = append(scope, filter.ItemInPlace(snap, q.PlaceID))
	}
	if q.Tag != "" {
		scope = append(scope, filter.ItemHasTag(q.Tag))
	}
	if q.GroupID != "" {
		scope = append(scope, filter.ItemInGroup(q.GroupID))
	}

	keys := q.Fields
	if len(keys) == 0 {
		keys = defaultItemFields
	}
	items := filter.Where(snap.Items, filter.All(scope...))
	items = filter.Filter(items, q.Text, filter.Select(filter.ItemFields, keys...), nil)
	return itemViews(snap, sorting.Sort(items, q.Sort)), nil
}

func (s *InventoryService) Groups(ctx context.Context, userID string, groupType domain.GroupType) ([]*domain.Group, error) {
	sess, err := s.ensureLoaded(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups := sess.Store.Snapshot().Groups
	if groupType != "" {
		groups = filter.Where(groups, filter.GroupOfType(groupType))
	}
	return groups, nil
}

// SearchHit is a search result flattened for rendering.
type SearchHit struct {
	Item      *domain.Item      `json:"item"`
	Container *domain.Container `json:"container,omitempty"`
	Place     *domain.Place     `json:"place,omitempty"`
	Location  string            `json:"location"`
}

func (s *InventoryService) Search(ctx context.Context, userID, query string, opts search.Options) ([]SearchHit, error) {
	sess, err := s.ensureLoaded(ctx, userID)
	if err != nil {
		return nil, err
	}
	results := sess.Search.SearchResults(query, opts)
	hits := make([]SearchHit, len(results))
	for i, r := range results {
		hits[i] = SearchHit{Item: r.Item, Container: r.Container, Place: r.Place, Location: location(r.Container, r.Place)}
	}
	return hits, nil
}

// ContainerByQRCode resolves a scanned QR code, selects the container and
// its place in the session and records the access. It returns nil when no
// container carries the code.
func (s *InventoryService) ContainerByQRCode(ctx context.Context, userID, code string) (*domain.Container, error) {
	sess, err := s.ensureLoaded(ctx, userID)
	if err != nil {
		return nil, err
	}
	c := sess.Store.Snapshot().ContainerByQRCode(code)
	if c == nil {
		return nil, nil
	}
	sess.Store.Select(c.PlaceID, c.ID)
	at := time.Now().UTC()
	if err := s.repos.Containers.Touch(ctx, c.ID, at); err != nil {
		s.logger.Warn("failed to record container access", "container_id", c.ID, "error", err)
		return c, nil
	}
	sess.Store.TouchContainer(c.ID, at)
	if touched := sess.Store.Snapshot().Container(c.ID); touched != nil {
		return touched, nil
	}
	return c, nil
}

type NewPlace struct {
	Name    string
	Type    domain.PlaceType
	GroupID *string
}

func (s *InventoryService) CreatePlace(ctx context.Context, actor Actor, in NewPlace) (*domain.Place, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("place name is required: %w", ErrInvalidInput)
	}
	p, err := s.repos.Places.Create(ctx, actor.UserID, strings.TrimSpace(in.Name), in.Type, in.GroupID)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, actor, "place.create", p.ID)
	return p, nil
}

type NewContainer struct {
	PlaceID  string
	Name     string
	QRCodeID *string
	GroupID  *string
}

func (s *InventoryService) CreateContainer(ctx context.Context, actor Actor, in NewContainer) (*domain.Container, error) {
	if strings.TrimSpace(in.Name) == "" || in.PlaceID == "" {
		return nil, fmt.Errorf("container name and place are required: %w", ErrInvalidInput)
	}
	sess, err := s.ensureLoaded(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if sess.Store.Snapshot().Place(in.PlaceID) == nil {
		return nil, fmt.Errorf("place %s: %w", in.PlaceID, ErrNotFound)
	}
	if in.QRCodeID != nil {
		existing, err := s.repos.Containers.GetByQRCode(ctx, *in.QRCodeID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("qr code %s is already assigned: %w", *in.QRCodeID, ErrConflict)
		}
	}
	c, err := s.repos.Containers.Create(ctx, actor.UserID, in.PlaceID, strings.TrimSpace(in.Name), in.QRCodeID, in.GroupID)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, actor, "container.create", c.ID)
	return c, nil
}

type NewItem struct {
	ContainerID string
	Name        string
	Description string
	Tags        []string
	GroupID     *string
}

func (s *InventoryService) CreateItem(ctx context.Context, actor Actor, in NewItem) (*domain.Item, error) {
	if strings.TrimSpace(in.Name) == "" || in.ContainerID == "" {
		return nil, fmt.Errorf("item name and container are required: %w", ErrInvalidInput)
	}
	sess, err := s.ensureLoaded(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if sess.Store.Snapshot().Container(in.ContainerID) == nil {
		return nil, fmt.Errorf("container %s: %w", in.ContainerID, ErrNotFound)
	}
	item, err := s.repos.Items.Create(ctx, store.NewItem{
		UserID:      actor.UserID,
		ContainerID: in.ContainerID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Tags:        in.Tags,
		GroupID:     in.GroupID,
	})
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, actor, "item.create", item.ID)
	return item, nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, actor Actor, itemID string) error {
	sess, err := s.ensureLoaded(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if sess.Store.Snapshot().Item(itemID) == nil {
		return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	if err := s.repos.Items.Delete(ctx, itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		return err
	}
	s.afterMutation(ctx, actor, "item.delete", itemID)
	return nil
}

// DeletePlace removes a place the user owns, together with its containers
// and items. Members lose access to it.
func (s *InventoryService) DeletePlace(ctx context.Context, actor Actor, placeID string) error {
	sess, err := s.ensureLoaded(ctx, actor.UserID)
	if err != nil {
		return err
	}
	p := sess.Store.Snapshot().Place(placeID)
	if p == nil {
		return fmt.Errorf("place %s: %w", placeID, ErrNotFound)
	}
	if p.UserID != actor.UserID {
		return fmt.Errorf("only the owner can delete place %s: %w", placeID, ErrForbidden)
	}
	if err := s.repos.Places.Delete(ctx, placeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("place %s: %w", placeID, ErrNotFound)
		}
		return err
	}
	if p.Sharing != nil {
		for _, member := range p.Sharing.MemberIDs {
			s.sessions.drop(member)
		}
	}
	s.afterMutation(ctx, actor, "place.delete", placeID)
	return nil
}

// DeleteContainer removes a container and the items stored in it.
func (s *InventoryService) DeleteContainer(ctx context.Context, actor Actor, containerID string) error {
	sess, err := s.ensureLoaded(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if sess.Store.Snapshot().Container(containerID) == nil {
		return fmt.Errorf("container %s: %w", containerID, ErrNotFound)
	}
	if err := s.repos.Containers.Delete(ctx, containerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("container %s: %w", containerID, ErrNotFound)
		}
		return err
	}
	s.afterMutation(ctx, actor, "container.delete", containerID)
	return nil
}

// SharePlace grants memberID access to a place the actor owns. Sharing again
// replaces the member's role.
func (s *InventoryService) SharePlace(ctx context.Context, actor Actor, placeID, memberID string, role domain.Role) error {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" || memberID == actor.UserID {
		return fmt.Errorf("a member other than the owner is required: %w", ErrInvalidInput)
	}
	if role != domain.RoleEditor && role != domain.RoleViewer {
		return fmt.Errorf("role %q: %w", role, ErrInvalidInput)
	}
	sess, err := s.ensureLoaded(ctx, actor.UserID)
	if err != nil {
		return err
	}
	p := sess.Store.Snapshot().Place(placeID)
	if p == nil {
		return fmt.Errorf("place %s: %w", placeID, ErrNotFound)
	}
	if p.UserID != actor.UserID {
		return fmt.Errorf("only the owner can share place %s: %w", placeID, ErrForbidden)
	}
	if err := s.repos.Places.AddMember(ctx, placeID, memberID, role); err != nil {
		return err
	}
	s.sessions.drop(memberID)
	s.afterMutation(ctx, actor, "place.share", placeID)
	return nil
}

type NewGroup struct {
	Name     string
	Type     domain.GroupType
	ParentID *string
}

// CreateGroup adds a group. A parent must be one of the user's groups of
// the same type.
func (s *InventoryService) CreateGroup(ctx context.Context, actor Actor, in NewGroup) (*domain.Group, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("group name is required: %w", ErrInvalidInput)
	}
	switch in.Type {
	case domain.GroupPlace, domain.GroupContainer, domain.GroupItem:
	default:
		return nil, fmt.Errorf("group type %q: %w", in.Type, ErrInvalidInput)
	}
	sess, err := s.ensureLoaded(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent := groupByID(sess.Store.Snapshot().Groups, *in.ParentID)
		if parent == nil {
			return nil, fmt.Errorf("group %s: %w", *in.ParentID, ErrNotFound)
		}
		if parent.Type != in.Type {
			return nil, fmt.Errorf("parent group has type %s: %w", parent.Type, ErrInvalidInput)
		}
	}
	g, err := s.repos.Groups.Create(ctx, actor.UserID, strings.TrimSpace(in.Name), in.Type, in.ParentID)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, actor, "group.create", g.ID)
	return g, nil
}

func groupByID(groups []*domain.Group, id string) *domain.Group {
	for _, g := range groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// AttachPhoto stores a photo and links it to a place, container or item the
// user can see.
func (s *InventoryService) AttachPhoto(ctx context.Context, actor Actor, kind store.PhotoKind, entityID, mimeType string, r io.Reader) (string, error) {
	sess, err := s.ensureLoaded(ctx, actor.UserID)
	if err != nil {
		return "", err
	}
	if err := visible(sess.Store.Snapshot(), kind, entityID); err != nil {
		return "", err
	}

	key, err := s.photoStg.Save(ctx, string(kind)+"/"+entityID, mimeType, r)
	if err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}
	if err := s.repos.Photos.Attach(ctx, kind, entityID, key); err != nil {
		if derr := s.photoStg.Delete(ctx, key); derr != nil {
			s.logger.Error("failed to remove orphaned photo", "storage_key", key, "error", derr)
		}
		return "", err
	}
	s.afterMutation(ctx, actor, "photo.attach", entityID)
	return key, nil
}

// Photo opens a stored photo. Keys are laid out as kind/entityID/name and
// only photos of entities in the user's inventory are served.
func (s *InventoryService) Photo(ctx context.Context, userID, key string) (io.ReadCloser, string, error) {
	sess, err := s.ensureLoaded(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	parts := strings.SplitN(key, "/", 3)
	if len(parts) != 3 {
		return nil, "", fmt.Errorf("photo %s: %w", key, ErrNotFound)
	}
	if err := visible(sess.Store.Snapshot(), store.PhotoKind(parts[0]), parts[1]); err != nil {
		return nil, "", fmt.Errorf("photo %s: %w", key, ErrNotFound)
	}
	return s.photoStg.Get(ctx, key)
}

func visible(snap *state.Snapshot, kind store.PhotoKind, entityID string) error {
	var ok bool
	switch kind {
	case store.PhotoPlace:
		ok = snap.Place(entityID) != nil
	case store.PhotoContainer:
		ok = snap.Container(entityID) != nil
	case store.PhotoItem:
		ok = snap.Item(entityID) != nil
	default:
		return fmt.Errorf("photo target %q: %w", kind, ErrInvalidInput)
	}
	if !ok {
		return fmt.Errorf("%s %s: %w", kind, entityID, ErrNotFound)
	}
	return nil
}

// afterMutation records the action and reloads the session. Both are best
// effort: the mutation itself has already succeeded.
func (s *InventoryService) afterMutation(ctx context.Context, actor Actor, action, entityID string) {
	if s.repos.Activity != nil {
		_, err := s.repos.Activity.Record(ctx, &domain.ActivityLog{
			UserID:     actor.UserID,
			Action:     action,
			EntityID:   entityID,
			ActorEmail: actor.Email,
			ActorName:  actor.Name,
			IPAddress:  actor.IP,
		})
		if err != nil {
			s.logger.Warn("failed to record activity", "action", action, "entity_id", entityID, "error", err)
		}
	}
	if err := s.Session(actor.UserID).Loader.Reload(ctx, actor.UserID); err != nil {
		s.logger.Error("failed to reload inventory after mutation", "action", action, "error", err)
	}
}

func itemViews(snap *state.Snapshot, items []*domain.Item) []ItemView {
	views := make([]ItemView, len(items))
	for i, item := range items {
		views[i] = ItemView{Item: item, Location: ItemLocation(snap, item)}
	}
	return views
}

// ItemLocation renders "Place / Container" for item, omitting parts that
// cannot be resolved.
func ItemLocation(snap *state.Snapshot, item *domain.Item) string {
	c, p := snap.ItemPlace(item)
	return location(c, p)
}

func location(c *domain.Container, p *domain.Place) string {
	parts := make([]string, 0, 2)
	if p != nil && p.Name != "" {
		parts = append(parts, p.Name)
	}
	if c != nil && c.Name != "" {
		parts = append(parts, c.Name)
	}
	return strings.Join(parts, " / ")
}
