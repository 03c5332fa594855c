package domain

import "time"

type PlaceType string

const (
	PlaceHome    PlaceType = "home"
	PlaceOffice  PlaceType = "office"
	PlaceStorage PlaceType = "storage"
	PlaceOther   PlaceType = "other"
)

// ParsePlaceType maps unknown values to PlaceOther.
func ParsePlaceType(s string) PlaceType {
	switch PlaceType(s) {
	case PlaceHome, PlaceOffice, PlaceStorage:
		return PlaceType(s)
	default:
		return PlaceOther
	}
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

type GroupType string

const (
	GroupPlace     GroupType = "place"
	GroupContainer GroupType = "container"
	GroupItem      GroupType = "item"
)

// Sharing describes the collaborators of a shared place. Roles is keyed by
// member user id.
type Sharing struct {
	OwnerID   string          `json:"ownerId"`
	MemberIDs []string        `json:"memberIds"`
	Roles     map[string]Role `json:"roles,omitempty"`
}

type Place struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      PlaceType `json:"type"`
	Photos    []string  `json:"photos,omitempty"`
	GroupID   *string   `json:"groupId,omitempty"`
	Sharing   *Sharing  `json:"sharing,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Container struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	PlaceID      string     `json:"placeId"`
	Name         string     `json:"name"`
	Photos       []string   `json:"photos,omitempty"`
	QRCodeID     *string    `json:"qrCodeId,omitempty"`
	GroupID      *string    `json:"groupId,omitempty"`
	LastAccessed *time.Time `json:"lastAccessed,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Item is an individual stored object. PlaceID is a denormalized copy of the
// container's place id; legacy items do not carry it.
type Item struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ContainerID string    `json:"containerId"`
	PlaceID     *string   `json:"placeId,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Photos      []string  `json:"photos,omitempty"`
	VoiceNote   *string   `json:"voiceNote,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	GroupID     *string   `json:"groupId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Group is a same-type categorization label. A nil ParentID marks a
// top-level group.
type Group struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ParentID  *string   `json:"parentId,omitempty"`
	Name      string    `json:"name"`
	Type      GroupType `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SearchResult joins an item with its container and that container's place.
// Container and Place are nil when the relation cannot be resolved.
type SearchResult struct {
	Item      *Item
	Container *Container
	Place     *Place
}

// ActivityLog is a historical record of a user action.
type ActivityLog struct {
	ID         int64
	UserID     string
	Action     string
	EntityID   string
	ActorEmail string
	ActorName  string
	IPAddress  string
	CreatedAt  time.Time
}
