package victory

import "testing"

type player struct {
	id, team int
	observer bool
	defeated bool
}

func (p *player) PlayerID() int          { return p.id }
func (p *player) TeamID() int            { return p.team }
func (p *player) IsObserver() bool       { return p.observer }
func (p *player) AdmitsDefeat() bool     { return p.defeated }
func (p *player) SetAdmitsDefeat(v bool) { p.defeated = v }

func TestForcedVictory(t *testing.T) {
	winner := &player{id: 1, team: 1}
	mate := &player{id: 2, team: 1}
	loser := &player{id: 3, team: 2, defeated: true}
	watcher := &player{id: 4, observer: true}
	ps := []Participant{winner, mate, loser, watcher}

	tr := NewTracker()
	if tr.IsForcedVictoryReady(ps, true) {
		t.Fatal("ready without a declaration")
	}

	tr.DeclareForced(1, 1, ps)
	if loser.defeated {
		t.Fatal("declaration did not clear admissions")
	}
	if tr.IsForcedVictoryReady(ps, true) {
		t.Error("ready before the loser admitted defeat")
	}

	loser.SetAdmitsDefeat(true)
	if !tr.IsForcedVictoryReady(ps, true) {
		t.Error("not ready after every opponent admitted defeat")
	}
	if tr.IsForcedVictoryReady(ps, false) {
		t.Error("ready with early termination disabled")
	}

	tr.Cancel()
	if tr.Forced() || tr.Player() != None || tr.Team() != None {
		t.Error("Cancel left state behind")
	}
}

func TestForcedVictoryWithoutTeam(t *testing.T) {
	a := &player{id: 1}
	b := &player{id: 2}
	tr := NewTracker()
	tr.DeclareForced(1, None, []Participant{a, b})
	if tr.IsWinningSide(b) {
		t.Error("teamless opponent counted as winner")
	}
	b.SetAdmitsDefeat(true)
	if !tr.IsForcedVictoryReady([]Participant{a, b}, true) {
		t.Error("not ready")
	}
}

func TestLastStanding(t *testing.T) {
	tests := []struct {
		name   string
		forces []Standing
		player int
		team   int
		ok     bool
	}{
		{"none", nil, None, None, false},
		{"two teams", []Standing{{1, 1, true}, {2, 2, true}}, None, None, false},
		{"one team left", []Standing{{1, 1, true}, {2, 1, true}, {3, 2, false}}, 1, 1, true},
		{"teamless survivor", []Standing{{1, 0, false}, {2, 0, true}}, 2, None, true},
		{"two teamless", []Standing{{1, 0, true}, {2, 0, true}}, None, None, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, tm, ok := LastStanding(tt.forces)
			if p != tt.player || tm != tt.team || ok != tt.ok {
				t.Errorf("LastStanding = (%d, %d, %v), want (%d, %d, %v)", p, tm, ok, tt.player, tt.team, tt.ok)
			}
		})
	}
}
