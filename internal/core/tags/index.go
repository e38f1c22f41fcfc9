package tags

import (
	"slices"
	"strings"
)

// Lookup resolves a component id to the tag value it declares. Components
// that are not Tag-typed report false.
type Lookup func(componentID string) (tag string, ok bool)

// Index maps tag values to entity ids in registration order. It is append-only
// between Clear calls and not safe for concurrent use.
type Index struct {
	byTag map[string][]string
	order []string
}

func New() *Index {
	return &Index{byTag: make(map[string][]string)}
}

// Index scans componentIDs in order and appends entityID under every tag they
// declare. Blank ids and blank tag values are ignored.
func (x *Index) Index(entityID string, componentIDs []string, lookup Lookup) int {
	if strings.TrimSpace(entityID) == "" || lookup == nil {
		return 0
	}
	added := 0
	for _, cid := range componentIDs {
		if strings.TrimSpace(cid) == "" {
			continue
		}
		tag, ok := lookup(cid)
		if !ok || strings.TrimSpace(tag) == "" {
			continue
		}
		if _, seen := x.byTag[tag]; !seen {
			x.order = append(x.order, tag)
		}
		x.byTag[tag] = append(x.byTag[tag], entityID)
		added++
	}
	return added
}

// First returns the earliest entity id registered under tag.
func (x *Index) First(tag string) (string, bool) {
	ids := x.byTag[tag]
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// All returns a copy of the ids registered under tag.
func (x *Index) All(tag string) []string {
	return slices.Clone(x.byTag[tag])
}

// Tags returns every known tag in discovery order.
func (x *Index) Tags() []string {
	return slices.Clone(x.order)
}

func (x *Index) Len() int { return len(x.order) }

func (x *Index) Clear() {
	clear(x.byTag)
	x.order = x.order[:0]
}
