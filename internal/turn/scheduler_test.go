package turn

import (
	"slices"
	"testing"

	"go.uber.org/zap"

	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/world"
)

type testTeam struct {
	id      int
	init    Initiative
	players []int
}

func (t *testTeam) OrderID() int      { return t.id }
func (t *testTeam) Init() *Initiative { return &t.init }
func (t *testTeam) Players() []int    { return t.players }

func newTeams(n int) []*testTeam {
	teams := make([]*testTeam, n)
	for i := range teams {
		teams[i] = &testTeam{id: i + 1, players: []int{i + 1}}
	}
	return teams
}

func orderables(teams []*testTeam) []Orderable {
	out := make([]Orderable, len(teams))
	for i, t := range teams {
		out[i] = t
	}
	return out
}

func newTestScheduler(seed int64) (*Scheduler, *world.Registry) {
	reg := world.NewRegistry(zap.NewNop())
	return NewScheduler(reg, seed, zap.NewNop()), reg
}

func TestRollInitiativeIsDeterministic(t *testing.T) {
	run := func() ([]int, [][]int) {
		s, _ := newTestScheduler(99)
		teams := newTeams(5)
		order := s.RollInitiative(orderables(teams), nil, false)
		ids := make([]int, len(order))
		for i, o := range order {
			ids[i] = o.OrderID()
		}
		rolls := make([][]int, len(teams))
		for i, tm := range teams {
			rolls[i] = slices.Clone(tm.init.Rolls)
		}
		return ids, rolls
	}

	ids1, rolls1 := run()
	ids2, rolls2 := run()
	if !slices.Equal(ids1, ids2) {
		t.Fatalf("order differs between runs: %v vs %v", ids1, ids2)
	}
	for i := range rolls1 {
		if !slices.Equal(rolls1[i], rolls2[i]) {
			t.Errorf("team %d rolls differ: %v vs %v", i+1, rolls1[i], rolls2[i])
		}
	}
}

func TestRollInitiativeBreaksAllTies(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		s, _ := newTestScheduler(seed)
		teams := newTeams(8)
		order := s.RollInitiative(orderables(teams), nil, false)
		for i := 1; i < len(order); i++ {
			if order[i-1].Init().Compare(order[i].Init()) <= 0 {
				t.Fatalf("seed %d: order not strictly descending at %d: %v then %v",
					seed, i, order[i-1].Init(), order[i].Init())
			}
		}
	}
}

func TestRerollOnlyTouchesRequester(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		s, _ := newTestScheduler(seed)
		teams := newTeams(2)
		teams[0].init.Rolls = []int{7}
		teams[1].init.Rolls = []int{7}

		order := s.RollInitiative(orderables(teams), []int{1}, false)

		t2 := teams[1].init.Rolls
		if t2[0] != 7 {
			t.Fatalf("seed %d: T2 first roll changed to %d", seed, t2[0])
		}
		t1 := teams[0].init.Rolls
		if t1[0] != 7 && len(t2) != 1 {
			t.Fatalf("seed %d: T2 rolled again although the tie was broken: %v", seed, t2)
		}
		if order[0].Init().Compare(order[1].Init()) <= 0 {
			t.Fatalf("seed %d: tie not resolved: %v vs %v", seed, t1, t2)
		}
		winner := 1
		if teams[1].init.Compare(&teams[0].init) > 0 {
			winner = 2
		}
		if order[0].OrderID() != winner {
			t.Fatalf("seed %d: winner %d, order starts with %d", seed, winner, order[0].OrderID())
		}
	}
}

func TestBonusAppliesToRoll(t *testing.T) {
	s, _ := newTestScheduler(3)
	teams := newTeams(1)
	teams[0].init.Bonus = 20
	s.RollInitiative(orderables(teams), nil, false)
	if r := teams[0].init.Rolls[0]; r < 22 || r > 32 {
		t.Errorf("roll with +20 bonus = %d", r)
	}
}

func TestApplyCompensation(t *testing.T) {
	a := &testTeam{id: 1}
	b := &testTeam{id: 2}

	ApplyCompensation([]Orderable{a, b})
	if b.init.CompBonus != 0 || b.init.Losses() != 1 {
		t.Errorf("after first loss: bonus=%d losses=%d", b.init.CompBonus, b.init.Losses())
	}
	ApplyCompensation([]Orderable{a, b})
	ApplyCompensation([]Orderable{a, b})
	if b.init.CompBonus != 2 {
		t.Errorf("after three losses bonus = %d, want 2", b.init.CompBonus)
	}
	ApplyCompensation([]Orderable{b, a})
	if b.init.CompBonus != 0 || b.init.Losses() != 0 {
		t.Error("winning did not reset the streak")
	}
	if a.init.CompBonus != 0 || a.init.Losses() != 1 {
		t.Errorf("a: bonus=%d losses=%d", a.init.CompBonus, a.init.Losses())
	}

	s, _ := newTestScheduler(5)
	b.init.CompBonus = 30
	s.RollInitiative([]Orderable{b}, nil, false)
	if b.init.Rolls[0] > 12 {
		t.Error("compensation applied while disabled")
	}
	s.RollInitiative([]Orderable{b}, nil, true)
	if b.init.Rolls[0] < 32 {
		t.Error("compensation not applied while enabled")
	}
}

func addUnits(reg *world.Registry, owner int, kind world.Kind, n int) []*world.Piece {
	var out []*world.Piece
	for i := 0; i < n; i++ {
		p := world.NewPiece(reg.LastID()+1, owner, kind, world.Coord{X: reg.LastID() + 1})
		reg.Add(p)
		out = append(out, p)
	}
	return out
}

func players(turns []Turn) []int {
	out := make([]int, len(turns))
	for i, t := range turns {
		out[i] = t.PlayerID()
	}
	return out
}

func TestBuildLoserFirstProportional(t *testing.T) {
	s, reg := newTestScheduler(1)
	addUnits(reg, 1, world.KindMek, 4)
	addUnits(reg, 2, world.KindMek, 2)
	teams := newTeams(2)

	turns := s.Build(phase.Firing, []Orderable{teams[0], teams[1]})

	want := []int{2, 1, 1, 2, 1, 1}
	if got := players(turns); !slices.Equal(got, want) {
		t.Errorf("turn players = %v, want %v", got, want)
	}
	if s.Index() != -1 || s.Current() != nil {
		t.Error("cursor not rewound")
	}
}

func TestBuildVehicleLance(t *testing.T) {
	s, reg := newTestScheduler(1)
	addUnits(reg, 1, world.KindMek, 1)
	addUnits(reg, 1, world.KindVehicle, 3)
	s.SetGrouping(Grouping{VehiclesPerTurn: 2, RemoveRemainder: 1})

	turns := s.Build(phase.Movement, orderables(newTeams(1)))
	if len(turns) != 3 {
		t.Fatalf("got %d turns (%v), want 3", len(turns), turns)
	}
	vehicleTurns := 0
	for _, tr := range turns {
		if ct, ok := tr.(ClassTurn); ok && ct.Kinds.Only(world.KindVehicle) {
			vehicleTurns++
		}
	}
	if vehicleTurns != 2 {
		t.Errorf("vehicle turns = %d, want 2", vehicleTurns)
	}

	// Grouping is movement only.
	if got := s.Build(phase.Firing, orderables(newTeams(1))); len(got) != 4 {
		t.Errorf("firing turns = %d, want 4", len(got))
	}
}

func TestBuildInfantryMoveLater(t *testing.T) {
	s, reg := newTestScheduler(1)
	addUnits(reg, 1, world.KindMek, 1)
	addUnits(reg, 1, world.KindInfantry, 1)
	addUnits(reg, 2, world.KindMek, 1)
	s.SetGrouping(Grouping{InfantryMoveLater: true, RemoveRemainder: 1})

	teams := newTeams(2)
	turns := s.Build(phase.Movement, []Orderable{teams[0], teams[1]})
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	last, ok := turns[2].(ClassTurn)
	if !ok || !last.Kinds.Only(world.KindInfantry) || last.Player != 1 {
		t.Errorf("last turn = %v, want player 1 infantry", turns[2])
	}
	for _, tr := range turns[:2] {
		if ct, ok := tr.(ClassTurn); ok && ct.Kinds.Has(world.KindInfantry) {
			t.Errorf("early turn %v accepts infantry", tr)
		}
	}
}

func TestBuildIndividualInitiative(t *testing.T) {
	s, reg := newTestScheduler(4)
	addUnits(reg, 1, world.KindMek, 2)
	addUnits(reg, 2, world.KindMek, 1)

	order := s.RollInitiative(s.UnitOrderables(reg.Snapshot()), nil, false)
	turns := s.Build(phase.Movement, order)
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	first, ok := turns[0].(UnitTurn)
	if !ok || first.Unit != order[len(order)-1].OrderID() {
		t.Errorf("first turn %v should belong to the lowest roller %d", turns[0], order[len(order)-1].OrderID())
	}
}

func TestBuildInjectsStrandedTurn(t *testing.T) {
	s, reg := newTestScheduler(1)
	carrier := addUnits(reg, 1, world.KindVehicle, 1)[0]
	carrier.Caps = world.CapImmobile
	cargo := world.NewPiece(10, 1, world.KindInfantry)
	cargo.IsDeployed = true
	cargo.Transport = carrier.ID()
	reg.Add(cargo)

	turns := s.Build(phase.Movement, orderables(newTeams(1)))
	if _, ok := turns[0].(StrandedTurn); !ok {
		t.Fatalf("first turn = %v, want stranded", turns[0])
	}
	s.Advance()
	if got := s.Next(world.NoUnit); got != cargo.ID() {
		t.Errorf("Next on stranded turn = %d, want %d", got, cargo.ID())
	}

	if turns := s.Build(phase.Firing, orderables(newTeams(1))); len(turns) > 0 {
		if _, ok := turns[0].(StrandedTurn); ok {
			t.Error("stranded turn outside movement")
		}
	}
}

func TestCursorBounds(t *testing.T) {
	s, _ := newTestScheduler(1)
	if s.Current() != nil || s.Advance() != nil || s.HasMore() {
		t.Error("empty list should yield nil turns")
	}
	if s.Next(1) != world.NoUnit || s.Previous(1) != world.NoUnit {
		t.Error("empty list should yield NoUnit")
	}
	if s.RemoveFor(world.NewPiece(1, 1, world.KindMek)) {
		t.Error("RemoveFor on empty list reported a removal")
	}

	s.SetTurns(phase.Movement, []Turn{PlayerTurn{Player: 1}, PlayerTurn{Player: 2}})
	if s.Advance() == nil || s.Advance() == nil {
		t.Fatal("expected two turns")
	}
	if s.Advance() != nil || s.Index() != 2 {
		t.Errorf("exhausted cursor = %d, want 2", s.Index())
	}
	s.Advance()
	if s.Index() != 2 {
		t.Errorf("cursor ran past len: %d", s.Index())
	}
}

func TestNextPreviousWrap(t *testing.T) {
	s, reg := newTestScheduler(1)
	mine := addUnits(reg, 1, world.KindMek, 3)
	addUnits(reg, 2, world.KindMek, 2)
	mine = append(mine, addUnits(reg, 1, world.KindMek, 1)...)

	s.SetTurns(phase.Movement, []Turn{PlayerTurn{Player: 1}})
	s.Advance()

	ids := []int{mine[0].ID(), mine[1].ID(), mine[2].ID(), mine[3].ID()}
	if got := s.Next(world.NoUnit); got != ids[0] {
		t.Errorf("Next(none) = %d, want %d", got, ids[0])
	}
	if got := s.Next(ids[2]); got != ids[3] {
		t.Errorf("Next skipped into other player: %d", got)
	}
	if got := s.Next(ids[3]); got != ids[0] {
		t.Errorf("Next did not wrap: %d", got)
	}
	if got := s.Previous(ids[0]); got != ids[3] {
		t.Errorf("Previous did not wrap: %d", got)
	}
	for _, id := range ids {
		if back := s.Previous(s.Next(id)); back != id {
			t.Errorf("Previous(Next(%d)) = %d", id, back)
		}
		if fwd := s.Next(s.Previous(id)); fwd != id {
			t.Errorf("Next(Previous(%d)) = %d", id, fwd)
		}
	}

	mine[1].IsDone = true
	if got := s.Next(ids[0]); got != ids[2] {
		t.Errorf("Next returned a unit that already acted: %d", got)
	}
}

func TestNextAfterSoleUnitRemoved(t *testing.T) {
	s, reg := newTestScheduler(1)
	u := addUnits(reg, 1, world.KindMek, 1)[0]
	addUnits(reg, 2, world.KindMek, 2)

	s.SetTurns(phase.Movement, []Turn{PlayerTurn{Player: 1}})
	s.Advance()
	if got := s.Next(u.ID()); got != u.ID() {
		t.Fatalf("Next = %d, want the sole unit %d", got, u.ID())
	}

	reg.Remove(u.ID(), world.RemovalDevastated)
	if got := s.Next(u.ID()); got != world.NoUnit {
		t.Errorf("Next after removal = %d, want NoUnit", got)
	}
	if got := s.Previous(u.ID()); got != world.NoUnit {
		t.Errorf("Previous after removal = %d, want NoUnit", got)
	}
}

func TestRemoveFirst(t *testing.T) {
	s, _ := newTestScheduler(1)
	s.SetTurns(phase.Firing, []Turn{PlayerTurn{Player: 1}, PlayerTurn{Player: 2}, PlayerTurn{Player: 2}})
	s.Advance()

	if !s.RemoveFirst(func(t Turn) bool { return t.PlayerID() == 2 }) {
		t.Fatal("RemoveFirst found nothing")
	}
	if got := players(s.Turns()); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("turns = %v", got)
	}
	if s.RemoveFirst(func(t Turn) bool { return t.PlayerID() == 1 }) {
		t.Error("RemoveFirst removed the current turn")
	}
}

func TestRemoveForUngrouped(t *testing.T) {
	s, reg := newTestScheduler(1)
	units := addUnits(reg, 1, world.KindMek, 2)
	addUnits(reg, 2, world.KindMek, 2)
	teams := newTeams(2)
	s.Build(phase.Firing, []Orderable{teams[0], teams[1]})

	units[0].IsDestroyed = true
	if !s.RemoveFor(units[0]) {
		t.Fatal("RemoveFor removed nothing")
	}
	count := 0
	for _, tr := range s.Turns() {
		if tr.PlayerID() == 1 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("player 1 has %d turns left, want 1", count)
	}
}

func TestRemoveForUnitThatAlreadyActed(t *testing.T) {
	s, reg := newTestScheduler(1)
	meks := addUnits(reg, 1, world.KindMek, 2)
	s.Build(phase.Firing, []Orderable{newTeams(1)[0]})
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}

	s.Advance()
	meks[0].IsDone = true
	meks[0].IsDestroyed = true
	if s.RemoveFor(meks[0]) {
		t.Error("turn removed for a unit that already acted")
	}
	next := s.Advance()
	if next == nil || !next.ValidUnit(meks[1], s) {
		t.Errorf("second mek lost its turn: %v", next)
	}
}

func TestRemoveForGroupedUnitThatAlreadyMoved(t *testing.T) {
	s, reg := newTestScheduler(1)
	inf := addUnits(reg, 1, world.KindInfantry, 3)
	s.SetGrouping(Grouping{InfantryPerTurn: 2, RemoveRemainder: 1})
	s.Build(phase.Movement, []Orderable{newTeams(1)[0]})
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}

	s.Advance()
	inf[0].IsDone = true
	if s.RemoveFor(inf[0]) {
		t.Error("grouped turn removed for infantry that already moved")
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}

func TestRemoveForGroupedInfantry(t *testing.T) {
	s, reg := newTestScheduler(1)
	addUnits(reg, 2, world.KindMek, 1)
	inf := addUnits(reg, 1, world.KindInfantry, 4)
	s.SetGrouping(Grouping{InfantryPerTurn: 2, RemoveRemainder: 1})

	teams := newTeams(2)
	// Team 1 wins, so team 2's mek moves first: [mek, inf, inf].
	turns := s.Build(phase.Movement, []Orderable{teams[0], teams[1]})
	if got := players(turns); !slices.Equal(got, []int{2, 1, 1}) {
		t.Fatalf("turns = %v", got)
	}

	// 4 -> 3 infantry still needs two turns.
	inf[0].IsDestroyed = true
	if s.RemoveFor(inf[0]) {
		t.Error("turn removed although 3 infantry still need 2 turns")
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}

	// 3 -> 2 infantry fits in one turn.
	inf[1].IsDestroyed = true
	if !s.RemoveFor(inf[1]) {
		t.Error("turn kept although 2 infantry fit in one turn")
	}
	if got := players(s.Turns()); !slices.Equal(got, []int{2, 1}) {
		t.Errorf("turns = %v, want [2 1]", got)
	}
}

func TestRemoveForGroupedDropsNextClassTurn(t *testing.T) {
	s, reg := newTestScheduler(1)
	inf := addUnits(reg, 1, world.KindInfantry, 4)
	s.SetGrouping(Grouping{InfantryPerTurn: 2, RemoveRemainder: 1})
	s.Build(phase.Movement, orderables(newTeams(1)))
	s.Advance()

	// The remainder says keep, but the very next turn is an infantry-only
	// turn of the same player, so it goes.
	inf[0].IsDestroyed = true
	if !s.RemoveFor(inf[0]) {
		t.Fatal("next infantry turn not removed")
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}

func TestRemoveForRemainderPolicy(t *testing.T) {
	s, reg := newTestScheduler(1)
	addUnits(reg, 2, world.KindMek, 1)
	veh := addUnits(reg, 1, world.KindVehicle, 4)
	// Remainder 0: drop a turn when the count including the lost unit is a
	// whole number of groups.
	s.SetGrouping(Grouping{VehiclesPerTurn: 2, RemoveRemainder: 0})
	teams := newTeams(2)
	s.Build(phase.Movement, []Orderable{teams[0], teams[1]})

	veh[0].IsDestroyed = true
	if !s.RemoveFor(veh[0]) {
		t.Error("remainder 0 policy should remove at 4 remaining")
	}
}
