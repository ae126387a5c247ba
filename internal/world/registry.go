package world

import (
	"iter"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Observer receives registry mutations. Calls happen after the registry
// lock is released, on the goroutine that made the change. Observers may read
// the registry but must not mutate it.
type Observer interface {
	UnitAdded(u Unit)
	UnitChanged(u, old Unit)
	UnitRemoved(u Unit, why Removal)
	UnitsReplaced(units []Unit)
}

// Registry owns the live units of a game: the id map, the ordered unit
// collection and the position index. Every mutation that touches more than
// one of them runs under a single lock, so no caller ever sees them disagree.
// Readers iterate a copy-on-write snapshot of the collection.
type Registry struct {
	mu        sync.RWMutex
	byID      map[int]Unit
	index     *PositionIndex
	outOfPlay []Unit
	lastID    int

	snap atomic.Pointer[[]Unit]

	observer Observer
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	r := &Registry{
		byID:  make(map[int]Unit, 64),
		index: newPositionIndex(),
		log:   log,
	}
	r.publish(nil)
	return r
}

// SetObserver installs the mutation observer. Nil disables notifications.
func (r *Registry) SetObserver(o Observer) {
	r.mu.Lock()
	r.observer = o
	r.mu.Unlock()
}

func (r *Registry) publish(units []Unit) {
	r.snap.Store(&units)
}

// Snapshot returns the live units in insertion order. The slice is shared
// and must be treated as read-only; later mutations publish a new slice.
func (r *Registry) Snapshot() []Unit {
	return *r.snap.Load()
}

// Len returns the number of live units.
func (r *Registry) Len() int {
	return len(r.Snapshot())
}

// LastID returns the highest id ever allocated.
func (r *Registry) LastID() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastID
}

// Add registers u. If u's id is already taken (or negative) the unit is
// given lastID+1 instead; callers must read the id back from u.
func (r *Registry) Add(u Unit) {
	r.mu.Lock()
	r.addLocked(u)
	r.publish(append(slices.Clone(r.Snapshot()), u))
	obs := r.observer
	r.mu.Unlock()

	if obs != nil {
		obs.UnitAdded(u)
	}
}

func (r *Registry) addLocked(u Unit) {
	id := u.ID()
	if _, taken := r.byID[id]; taken || id < 0 {
		newID := r.lastID + 1
		r.log.Debug("unit id reallocated", zap.Int("requested", id), zap.Int("assigned", newID))
		id = newID
		u.SetID(id)
	}
	if id > r.lastID {
		r.lastID = id
	}
	r.byID[id] = u
	r.index.OccupyAll(u)
}

// Replace swaps the unit stored at id for u, keeping its slot in the
// collection. The position index is updated by delta. An unknown id adds u
// under that id.
func (r *Registry) Replace(id int, u Unit) {
	r.mu.Lock()
	old, ok := r.byID[id]
	if !ok {
		u.SetID(id)
		r.addLocked(u)
		r.publish(append(slices.Clone(r.Snapshot()), u))
		obs := r.observer
		r.mu.Unlock()
		if obs != nil {
			obs.UnitAdded(u)
		}
		return
	}

	u.SetID(id)
	r.byID[id] = u
	if old == u {
		// Same value mutated in place: the old cells are gone, reindex fully.
		r.index.Forget(id)
		r.index.OccupyAll(u)
	} else {
		r.index.Shift(id, old.Positions(), u.Positions())
	}
	units := slices.Clone(r.Snapshot())
	for i, cur := range units {
		if cur.ID() == id {
			units[i] = u
			break
		}
	}
	r.publish(units)
	obs := r.observer
	r.mu.Unlock()

	if obs != nil {
		obs.UnitChanged(u, old)
	}
}

// Moved re-indexes a unit whose positions changed in place; from is where it
// stood before the move.
func (r *Registry) Moved(id int, from []Coord) {
	r.mu.Lock()
	u, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		r.log.Debug("move of unknown unit ignored", zap.Int("unit", id))
		return
	}
	r.index.Shift(id, from, u.Positions())
	obs := r.observer
	r.mu.Unlock()

	if obs != nil {
		obs.UnitChanged(u, nil)
	}
}

// Remove takes a unit out of play. Unknown ids are logged and ignored. The
// unit is tagged with why and kept in the out-of-play list unless it never
// joined the game.
func (r *Registry) Remove(id int, why Removal) bool {
	r.mu.Lock()
	u, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		r.log.Info("remove of unknown unit ignored", zap.Int("unit", id))
		return false
	}
	delete(r.byID, id)
	r.index.VacateAll(id, u.Positions())
	units := slices.DeleteFunc(slices.Clone(r.Snapshot()), func(cur Unit) bool {
		return cur.ID() == id
	})
	r.publish(units)
	u.SetRemoval(why)
	if why != RemovalNeverJoined {
		r.outOfPlay = append(r.outOfPlay, u)
	}
	obs := r.observer
	r.mu.Unlock()

	if obs != nil {
		obs.UnitRemoved(u, why)
	}
	return true
}

// Get returns the live unit with id, or nil.
func (r *Registry) Get(id int) Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// IDs returns the ids of all live units in collection order.
func (r *Registry) IDs() []int {
	units := r.Snapshot()
	ids := make([]int, len(units))
	for i, u := range units {
		ids[i] = u.ID()
	}
	return ids
}

// UnitsAt returns the ids of the live units standing on c. An empty index
// with live units present is rebuilt first; ids of units that are gone or no
// longer cover c are pruned as they are found.
func (r *Registry) UnitsAt(c Coord) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index.Len() == 0 && len(r.byID) > 0 {
		r.rebuildLocked()
	}

	ids := r.index.Occupants(c)
	live := ids[:0]
	for _, id := range ids {
		u, ok := r.byID[id]
		if !ok || !slices.Contains(u.Positions(), c) {
			r.index.Vacate(c, id)
			continue
		}
		live = append(live, id)
	}
	return live
}

// IsOccupied returns true if a live unit other than excludeID stands on c.
func (r *Registry) IsOccupied(c Coord, excludeID int) bool {
	for _, id := range r.UnitsAt(c) {
		if id != excludeID {
			return true
		}
	}
	return false
}

func (r *Registry) rebuildLocked() {
	r.index.Clear()
	for _, u := range r.byID {
		r.index.OccupyAll(u)
	}
	r.log.Debug("position index rebuilt", zap.Int("units", len(r.byID)))
}

// Select returns the live units matching pred. The sequence is evaluated
// lazily against a snapshot taken when iteration starts, so it can be ranged
// over repeatedly and never observes a half-applied mutation.
func (r *Registry) Select(pred func(Unit) bool) iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		for _, u := range r.Snapshot() {
			if pred != nil && !pred(u) {
				continue
			}
			if !yield(u) {
				return
			}
		}
	}
}

// SetAll replaces every live unit at once, rebuilding the id map and the
// index in one pass. Observers get a single UnitsReplaced call.
func (r *Registry) SetAll(units []Unit) {
	r.mu.Lock()
	clear(r.byID)
	r.index.Clear()
	for _, u := range units {
		r.addLocked(u)
	}
	units = slices.Clone(units)
	r.publish(units)
	obs := r.observer
	r.mu.Unlock()

	if obs != nil {
		obs.UnitsReplaced(units)
	}
}

// OutOfPlay returns the units removed from play, oldest first.
func (r *Registry) OutOfPlay() []Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.outOfPlay)
}

// ClearOutOfPlay forgets removed units. The id counter is kept.
func (r *Registry) ClearOutOfPlay() {
	r.mu.Lock()
	r.outOfPlay = nil
	r.mu.Unlock()
}

// Stranded returns the units loaded aboard an immobile carrier that have
// not yet acted.
func (r *Registry) Stranded() []Unit {
	var out []Unit
	for _, u := range r.Snapshot() {
		if u.TransportID() == NoUnit || u.Done() {
			continue
		}
		carrier := r.Get(u.TransportID())
		if carrier != nil && carrier.Has(CapImmobile) {
			out = append(out, u)
		}
	}
	return out
}
