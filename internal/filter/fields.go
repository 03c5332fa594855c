package filter

import (
	"github.com/vbonduro/stowaway/internal/domain"
	"github.com/vbonduro/stowaway/internal/state"
)

// Registry is the set of filterable fields of one entity type, by key.
type Registry[T any] map[string]Field[T]

// Select resolves keys against r in the given order. Unknown keys are
// skipped.
func Select[T any](r Registry[T], keys ...string) []Field[T] {
	fields := make([]Field[T], 0, len(keys))
	for _, k := range keys {
		if f, ok := r[k]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}

var PlaceFields = Registry[*domain.Place]{
	"name": {Key: "name", Text: func(p *domain.Place) string { return p.Name }},
	"type": {Key: "type", Text: func(p *domain.Place) string { return string(p.Type) }},
}

var ContainerFields = Registry[*domain.Container]{
	"name": {Key: "name", Text: func(c *domain.Container) string { return c.Name }},
	"qrCodeId": {Key: "qrCodeId", Text: func(c *domain.Container) string {
		if c.QRCodeID == nil {
			return ""
		}
		return *c.QRCodeID
	}},
}

var ItemFields = Registry[*domain.Item]{
	"name":        {Key: "name", Text: func(i *domain.Item) string { return i.Name }},
	"description": {Key: "description", Text: func(i *domain.Item) string { return i.Description }},
	"tags":        {Key: "tags", List: func(i *domain.Item) []string { return i.Tags }},
}

var GroupFields = Registry[*domain.Group]{
	"name": {Key: "name", Text: func(g *domain.Group) string { return g.Name }},
	"type": {Key: "type", Text: func(g *domain.Group) string { return string(g.Type) }},
}

func equalPtr(p *string, v string) bool {
	return p != nil && *p == v
}

func PlaceInGroup(groupID string) func(*domain.Place) bool {
	return func(p *domain.Place) bool { return equalPtr(p.GroupID, groupID) }
}

func ContainerInGroup(groupID string) func(*domain.Container) bool {
	return func(c *domain.Container) bool { return equalPtr(c.GroupID, groupID) }
}

func ItemInGroup(groupID string) func(*domain.Item) bool {
	return func(i *domain.Item) bool { return equalPtr(i.GroupID, groupID) }
}

func ContainerInPlace(placeID string) func(*domain.Container) bool {
	return func(c *domain.Container) bool { return c.PlaceID == placeID }
}

func ItemInContainer(containerID string) func(*domain.Item) bool {
	return func(i *domain.Item) bool { return i.ContainerID == containerID }
}

// ItemInPlace matches items in placeID. Items without the denormalized place
// id are resolved through their container in snap.
func ItemInPlace(snap *state.Snapshot, placeID string) func(*domain.Item) bool {
	return func(i *domain.Item) bool {
		if i.PlaceID != nil && *i.PlaceID != "" {
			return *i.PlaceID == placeID
		}
		_, p := snap.ItemPlace(i)
		return p != nil && p.ID == placeID
	}
}

// ItemHasTag matches items carrying tag, compared exactly.
func ItemHasTag(tag string) func(*domain.Item) bool {
	return func(i *domain.Item) bool {
		for _, t := range i.Tags {
			if t == tag {
				return true
			}
		}
		return false
	}
}

func GroupOfType(t domain.GroupType) func(*domain.Group) bool {
	return func(g *domain.Group) bool { return g.Type == t }
}
