package material

import (
	"errors"
	"fmt"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/texture"
)

// ErrUnknownMaterial is returned when a MaterialID does not name a stored material
var ErrUnknownMaterial = errors.New("unknown material")

// MaterialID indexes a material stored in a Table
type MaterialID int32

// Table owns the materials of a scene. Mix materials refer to their children
// by ID, and a child must be added before any mix that uses it, so a table
// can never contain a cycle. A Table is read-only once rendering starts.
type Table struct {
	materials []Material
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{}
}

// Add stores m and returns its ID. Mixes must reference materials already in the table.
func (t *Table) Add(m Material) MaterialID {
	if mix, ok := m.(*Mix); ok {
		for _, id := range mix.Materials {
			core.CheckFatal(t.Has(id), "mix references material %d before it was added", id)
		}
	}
	t.materials = append(t.materials, m)
	return MaterialID(len(t.materials) - 1)
}

// AddMix stores a mix of two existing materials
func (t *Table) AddMix(amount texture.FloatTexture, m0, m1 MaterialID) (MaterialID, error) {
	for _, id := range []MaterialID{m0, m1} {
		if !t.Has(id) {
			return 0, fmt.Errorf("mix child %d: %w", id, ErrUnknownMaterial)
		}
	}
	return t.Add(NewMix(amount, m0, m1)), nil
}

// Has reports whether id names a stored material
func (t *Table) Has(id MaterialID) bool {
	return id >= 0 && int(id) < len(t.materials)
}

// Get returns the material with the given ID
func (t *Table) Get(id MaterialID) Material {
	core.CheckFatal(t.Has(id), "material %d: %v", id, ErrUnknownMaterial)
	return t.materials[id]
}

// Lookup is Get for callers holding an ID from outside the table
func (t *Table) Lookup(id MaterialID) (Material, error) {
	if !t.Has(id) {
		return nil, fmt.Errorf("material %d: %w", id, ErrUnknownMaterial)
	}
	return t.materials[id], nil
}

// Len returns the number of stored materials
func (t *Table) Len() int {
	return len(t.materials)
}
