package turn

import (
	"math/rand"
	"slices"

	"go.uber.org/zap"

	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/world"
)

// Units is the unit source the scheduler scans.
type Units interface {
	Snapshot() []world.Unit
	Get(id int) world.Unit
	Stranded() []world.Unit
}

// Grouping holds the movement grouping rules. A per-turn size of 1 or less
// disables grouping for that kind.
type Grouping struct {
	IndividualInitiative bool
	InfantryMoveLater    bool
	InfantryPerTurn      int
	ProtosPerTurn        int
	VehiclesPerTurn      int
	MeksPerTurn          int
	// RemoveRemainder decides when a grouped turn is dropped for a unit that
	// became invalid: count the owner's remaining units of that kind still
	// waiting to act, including the lost one; the turn goes only if that count
	// modulo the group size equals RemoveRemainder. 1 drops a turn exactly
	// when the number of groups shrinks.
	RemoveRemainder int
}

// Size is how many units of kind k move together in one turn.
func (g Grouping) Size(k world.Kind) int {
	switch k {
	case world.KindInfantry:
		return g.InfantryPerTurn
	case world.KindProtomek:
		return g.ProtosPerTurn
	case world.KindVehicle:
		return g.VehiclesPerTurn
	case world.KindMek:
		return g.MeksPerTurn
	}
	return 1
}

// Scheduler owns the ordered turn list of the current phase and the cursor
// into it. The cursor is -1 before the first turn and len(turns) once every
// turn is used. Accessed only from the game loop goroutine.
type Scheduler struct {
	rng      *rand.Rand
	units    Units
	grouping Grouping
	phase    phase.Phase
	turns    []Turn
	index    int
	unitInit map[int]*Initiative
	log      *zap.Logger
}

func NewScheduler(units Units, seed int64, log *zap.Logger) *Scheduler {
	return &Scheduler{
		rng:      rand.New(rand.NewSource(seed)),
		units:    units,
		index:    -1,
		unitInit: make(map[int]*Initiative),
		log:      log,
	}
}

// SetGrouping replaces the grouping rules used by the next Build.
func (s *Scheduler) SetGrouping(g Grouping) { s.grouping = g }

// Grouping returns the active grouping rules.
func (s *Scheduler) Grouping() Grouping { return s.grouping }

// Roll2d6 rolls two six-sided dice from the scheduler's seeded source.
func (s *Scheduler) Roll2d6() int {
	return s.rng.Intn(6) + s.rng.Intn(6) + 2
}

func (s *Scheduler) Phase() phase.Phase    { return s.phase }
func (s *Scheduler) Get(id int) world.Unit { return s.units.Get(id) }

// Reset drops every turn and per-unit initiative.
func (s *Scheduler) Reset() {
	s.turns = nil
	s.index = -1
	clear(s.unitInit)
}

// SetTurns installs an explicit turn list for phase p and rewinds the cursor.
func (s *Scheduler) SetTurns(p phase.Phase, turns []Turn) {
	s.phase = p
	s.turns = slices.Clone(turns)
	s.index = -1
}

// Turns returns a copy of the turn list.
func (s *Scheduler) Turns() []Turn { return slices.Clone(s.turns) }

func (s *Scheduler) Len() int   { return len(s.turns) }
func (s *Scheduler) Index() int { return s.index }

// Current returns the turn under the cursor, or nil outside the list.
func (s *Scheduler) Current() Turn {
	if s.index < 0 || s.index >= len(s.turns) {
		return nil
	}
	return s.turns[s.index]
}

// HasMore reports whether a turn remains after the cursor.
func (s *Scheduler) HasMore() bool {
	return s.index+1 < len(s.turns)
}

// Advance moves the cursor forward and returns the new current turn, nil
// once the list is exhausted.
func (s *Scheduler) Advance() Turn {
	if s.index < len(s.turns) {
		s.index++
	}
	return s.Current()
}

// unitOrderable rolls initiative for a single unit.
type unitOrderable struct {
	unit  int
	owner int
	init  *Initiative
}

func (u unitOrderable) OrderID() int      { return u.unit }
func (u unitOrderable) Init() *Initiative { return u.init }
func (u unitOrderable) Players() []int    { return []int{u.owner} }

// UnitOrderables wraps units for individual initiative. Initiative state is
// kept per unit id across rounds so streaks and rerolls carry over.
func (s *Scheduler) UnitOrderables(units []world.Unit) []Orderable {
	out := make([]Orderable, 0, len(units))
	for _, u := range units {
		in := s.unitInit[u.ID()]
		if in == nil {
			in = &Initiative{}
			s.unitInit[u.ID()] = in
		}
		out = append(out, unitOrderable{unit: u.ID(), owner: u.OwnerID(), init: in})
	}
	return out
}

// Build expands the initiative order (winner first) into the turn list for
// phase p and rewinds the cursor. The lowest initiative acts first. Teams
// with more units take proportionally more turns. In movement the grouping
// rules apply and a stranded-unit turn leads the list when needed.
func (s *Scheduler) Build(p phase.Phase, order []Orderable) []Turn {
	s.phase = p
	s.turns = s.turns[:0]
	s.index = -1

	if p == phase.Movement && len(s.units.Stranded()) > 0 {
		s.turns = append(s.turns, StrandedTurn{})
	}

	loserFirst := slices.Clone(order)
	slices.Reverse(loserFirst)

	var early, late [][]Turn
	for _, o := range loserFirst {
		if uo, ok := o.(unitOrderable); ok {
			if u := s.units.Get(uo.unit); u != nil && selectable(u, s) {
				early = append(early, []Turn{UnitTurn{Player: uo.owner, Unit: uo.unit}})
			}
			continue
		}
		e, l := s.teamTurns(p, o.Players())
		early = append(early, e)
		late = append(late, l)
	}

	s.turns = append(s.turns, interleave(early)...)
	s.turns = append(s.turns, interleave(late)...)
	s.log.Debug("turns built",
		zap.String("phase", p.String()),
		zap.Int("turns", len(s.turns)),
	)
	return slices.Clone(s.turns)
}

// teamTurns returns the turns one team takes in phase p: early turns and
// turns that wait until every team has taken its early turns.
func (s *Scheduler) teamTurns(p phase.Phase, players []int) (early, late []Turn) {
	grouped := p == phase.Movement
	perPlayer := make([][]Turn, 0, len(players))
	latePerPlayer := make([][]Turn, 0, len(players))

	for _, pid := range players {
		counts := make(map[world.Kind]int)
		for _, u := range s.units.Snapshot() {
			if u.OwnerID() == pid && selectable(u, s) {
				counts[u.Kind()]++
			}
		}

		var mine, batches, later []Turn
		normalMask := AllKinds
		normal := 0
		for kind := world.KindOther; kind <= world.KindAerospace; kind++ {
			n := counts[kind]
			if n == 0 {
				continue
			}
			size := s.grouping.Size(kind)
			moveLater := kind == world.KindInfantry && s.grouping.InfantryMoveLater
			if !grouped || (size <= 1 && !moveLater) {
				normal += n
				continue
			}
			normalMask &^= MaskOf(kind)
			turns := n
			if size > 1 {
				turns = (n + size - 1) / size
			}
			for i := 0; i < turns; i++ {
				ct := ClassTurn{Player: pid, Kinds: MaskOf(kind)}
				if moveLater {
					later = append(later, ct)
				} else {
					batches = append(batches, ct)
				}
			}
		}
		for i := 0; i < normal; i++ {
			if normalMask == AllKinds {
				mine = append(mine, PlayerTurn{Player: pid})
			} else {
				mine = append(mine, ClassTurn{Player: pid, Kinds: normalMask})
			}
		}
		mine = append(mine, batches...)
		perPlayer = append(perPlayer, mine)
		latePerPlayer = append(latePerPlayer, later)
	}
	return roundRobin(perPlayer), roundRobin(latePerPlayer)
}

// roundRobin merges per-player turn lists one turn at a time.
func roundRobin(lists [][]Turn) []Turn {
	var out []Turn
	for i := 0; ; i++ {
		took := false
		for _, l := range lists {
			if i < len(l) {
				out = append(out, l[i])
				took = true
			}
		}
		if !took {
			return out
		}
	}
}

// interleave merges the queues in order; each pass a queue gives up
// len/shortest turns so larger forces move proportionally more often.
func interleave(queues [][]Turn) []Turn {
	queues = slices.Clone(queues)
	var out []Turn
	for {
		shortest := 0
		for _, q := range queues {
			if len(q) > 0 && (shortest == 0 || len(q) < shortest) {
				shortest = len(q)
			}
		}
		if shortest == 0 {
			return out
		}
		for i, q := range queues {
			if len(q) == 0 {
				continue
			}
			take := len(q) / shortest
			out = append(out, q[:take]...)
			queues[i] = q[take:]
		}
	}
}

// Next returns the first unit after afterID, scanning the live units in
// collection order and wrapping once, that the current turn accepts.
// NoUnit when there is no turn or no candidate.
func (s *Scheduler) Next(afterID int) int {
	return s.scan(afterID, 1)
}

// Previous is Next scanning backwards.
func (s *Scheduler) Previous(afterID int) int {
	return s.scan(afterID, -1)
}

func (s *Scheduler) scan(afterID, step int) int {
	t := s.Current()
	units := s.units.Snapshot()
	n := len(units)
	if t == nil || n == 0 {
		return world.NoUnit
	}
	start := slices.IndexFunc(units, func(u world.Unit) bool { return u.ID() == afterID })
	if start < 0 && step < 0 {
		start = n
	}
	for k := 1; k <= n; k++ {
		u := units[((start+step*k)%n+n)%n]
		if t.ValidUnit(u, s) {
			return u.ID()
		}
	}
	return world.NoUnit
}

// RemoveFirst removes the first upcoming turn matching pred.
func (s *Scheduler) RemoveFirst(pred func(Turn) bool) bool {
	for i := s.index + 1; i < len(s.turns); i++ {
		if pred(s.turns[i]) {
			s.turns = slices.Delete(s.turns, i, i+1)
			return true
		}
	}
	return false
}

// RemoveFor drops the upcoming turn that u, now unable to act, would have
// used. Under movement grouping several units share a turn, so a turn is
// only dropped when the group count shrinks; otherwise the very next turn is
// dropped if it is a turn for u's kind alone, or nothing is removed. A unit
// that already acted this phase has no turn left and removes nothing.
func (s *Scheduler) RemoveFor(u world.Unit) bool {
	if len(s.turns) == 0 || u == nil || u.Done() {
		return false
	}

	if size := s.grouping.Size(u.Kind()); s.phase == phase.Movement && size > 1 {
		remaining := 1
		for _, other := range s.units.Snapshot() {
			if other.ID() != u.ID() && other.OwnerID() == u.OwnerID() &&
				other.Kind() == u.Kind() && selectable(other, s) {
				remaining++
			}
		}
		if remaining%size != s.grouping.RemoveRemainder%size {
			next := s.index + 1
			if next < len(s.turns) {
				if ct, ok := s.turns[next].(ClassTurn); ok && ct.Player == u.OwnerID() && ct.Kinds.Only(u.Kind()) {
					s.turns = slices.Delete(s.turns, next, next+1)
					return true
				}
			}
			return false
		}
	}

	for i := len(s.turns) - 1; i > s.index; i-- {
		if s.turns[i].Claims(u) {
			s.turns = slices.Delete(s.turns, i, i+1)
			return true
		}
	}
	return false
}
