package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSpaceNotFound is returned when a space name does not match the board.
var ErrSpaceNotFound = errors.New("space not found")

// Registry owns the space records of a single game.
type Registry struct {
	spaces []*Space
	byName map[string]*Space
}

// NewRegistry builds fresh, bank-owned spaces from a validated layout.
func NewRegistry(layout []Definition) (*Registry, error) {
	if err := ValidateLayout(layout); err != nil {
		return nil, err
	}

	r := &Registry{
		spaces: make([]*Space, len(layout)),
		byName: make(map[string]*Space, len(layout)),
	}
	for i, def := range layout {
		space := newSpace(def)
		r.spaces[i] = space
		key := nameKey(def.Name)
		if _, exists := r.byName[key]; !exists {
			r.byName[key] = space
		}
	}
	return r, nil
}

// Wrap maps any position onto the board, including negative offsets.
func Wrap(position int) int {
	return ((position % Size) + Size) % Size
}

// SpaceAt returns the space at index. Callers wrap positions first; an index
// off the board means the caller is broken.
func (r *Registry) SpaceAt(index int) *Space {
	if index < 0 || index >= len(r.spaces) {
		panic(fmt.Sprintf("board: space index %d out of range", index))
	}
	return r.spaces[index]
}

// FindSpace looks a space up by display name. Names are matched without
// regard to case or surrounding whitespace; repeated names such as "Chance"
// resolve to their first occurrence.
func (r *Registry) FindSpace(name string) (*Space, error) {
	if space, ok := r.byName[nameKey(name)]; ok {
		return space, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrSpaceNotFound, name)
}

// Spaces returns every space in board order.
func (r *Registry) Spaces() []*Space {
	return r.spaces
}

// Indexes returns the indexes of all spaces of the given kind in board order.
func (r *Registry) Indexes(kind Kind) []int {
	var indexes []int
	for _, space := range r.spaces {
		if space.Kind == kind {
			indexes = append(indexes, space.Index)
		}
	}
	return indexes
}

// NextOfKind finds the first space of kind strictly ahead of from. When none
// is ahead it wraps to the first such space and reports wrapped.
func (r *Registry) NextOfKind(from int, kind Kind) (index int, wrapped bool) {
	targets := r.Indexes(kind)
	if len(targets) == 0 {
		panic(fmt.Sprintf("board: no %s spaces on the board", kind))
	}
	for _, target := range targets {
		if target > from {
			return target, false
		}
	}
	return targets[0], true
}

// JailIndex returns the index of the jail space.
func (r *Registry) JailIndex() int {
	indexes := r.Indexes(KindJail)
	if len(indexes) == 0 {
		panic("board: layout has no jail")
	}
	return indexes[0]
}

// OwnedBy returns the spaces the named player owns, in board order.
func (r *Registry) OwnedBy(name string) []*Space {
	var owned []*Space
	for _, space := range r.spaces {
		if space.OwnedBy(name) {
			owned = append(owned, space)
		}
	}
	return owned
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
