package world

import "sort"

// PositionIndex is a cell occupancy map for O(1) lookups of the units
// standing on a coordinate. Several units may share a cell and a unit may
// span several cells. Not safe for concurrent use; Registry guards it.
type PositionIndex struct {
	cells map[Coord]map[int]struct{}
}

func newPositionIndex() *PositionIndex {
	return &PositionIndex{cells: make(map[Coord]map[int]struct{})}
}

// Occupy marks a unit as standing on c.
func (g *PositionIndex) Occupy(c Coord, id int) {
	cell := g.cells[c]
	if cell == nil {
		cell = make(map[int]struct{}, 1)
		g.cells[c] = cell
	}
	cell[id] = struct{}{}
}

// Vacate removes a unit from c.
func (g *PositionIndex) Vacate(c Coord, id int) {
	cell := g.cells[c]
	if cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, c)
		}
	}
}

// OccupyAll indexes every position of u.
func (g *PositionIndex) OccupyAll(u Unit) {
	for _, c := range u.Positions() {
		g.Occupy(c, u.ID())
	}
}

// VacateAll removes id from the given cells.
func (g *PositionIndex) VacateAll(id int, at []Coord) {
	for _, c := range at {
		g.Vacate(c, id)
	}
}

// Forget removes id from every cell. O(cells); used when the previous
// positions of a unit are unknown.
func (g *PositionIndex) Forget(id int) {
	for c, cell := range g.cells {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, c)
		}
	}
}

// Shift applies a position change as a delta: stale cells are vacated and
// new cells occupied, cells present in both are left untouched.
func (g *PositionIndex) Shift(id int, from, to []Coord) {
	keep := make(map[Coord]struct{}, len(to))
	for _, c := range to {
		keep[c] = struct{}{}
	}
	for _, c := range from {
		if _, ok := keep[c]; !ok {
			g.Vacate(c, id)
		}
	}
	for _, c := range to {
		g.Occupy(c, id)
	}
}

// Occupants returns the ids at c in ascending order.
func (g *PositionIndex) Occupants(c Coord) []int {
	cell := g.cells[c]
	if len(cell) == 0 {
		return nil
	}
	ids := make([]int, 0, len(cell))
	for id := range cell {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// IsOccupied returns true if any unit other than excludeID stands on c.
func (g *PositionIndex) IsOccupied(c Coord, excludeID int) bool {
	for id := range g.cells[c] {
		if id != excludeID {
			return true
		}
	}
	return false
}

// Len returns the number of occupied cells.
func (g *PositionIndex) Len() int {
	return len(g.cells)
}

// Clear empties the index.
func (g *PositionIndex) Clear() {
	clear(g.cells)
}
