// Package victory tracks forced victory and decides when a game is over.
package victory

// None marks no winning player or team.
const None = -1

// Participant is a player as the tracker sees it.
type Participant interface {
	PlayerID() int
	TeamID() int
	IsObserver() bool
	AdmitsDefeat() bool
	SetAdmitsDefeat(bool)
}

// Tracker holds the forced-victory declaration.
type Tracker struct {
	forced bool
	player int
	team   int
}

func NewTracker() *Tracker {
	return &Tracker{player: None, team: None}
}

// DeclareForced records that player (and team, or None) claims victory and
// clears every participant's admission of defeat so each must admit again.
func (t *Tracker) DeclareForced(player, team int, ps []Participant) {
	t.forced = true
	t.player = player
	t.team = team
	for _, p := range ps {
		p.SetAdmitsDefeat(false)
	}
}

// Cancel withdraws a forced-victory declaration.
func (t *Tracker) Cancel() {
	t.forced = false
	t.player = None
	t.team = None
}

// Reset is Cancel for a fresh game.
func (t *Tracker) Reset() { t.Cancel() }

func (t *Tracker) Forced() bool { return t.forced }
func (t *Tracker) Player() int  { return t.player }
func (t *Tracker) Team() int    { return t.team }

// IsWinningSide reports whether p is the declared winner or on its team.
func (t *Tracker) IsWinningSide(p Participant) bool {
	if p.PlayerID() == t.player {
		return true
	}
	return t.team != None && p.TeamID() == t.team
}

// IsForcedVictoryReady reports whether a declared forced victory may end the
// game: early termination must be allowed and every non-observer outside the
// winning side must have admitted defeat.
func (t *Tracker) IsForcedVictoryReady(ps []Participant, allowEarly bool) bool {
	if !t.forced || !allowEarly {
		return false
	}
	for _, p := range ps {
		if p.IsObserver() || t.IsWinningSide(p) {
			continue
		}
		if !p.AdmitsDefeat() {
			return false
		}
	}
	return true
}

// Standing is a live force: its player, team, and whether it still fields
// units.
type Standing struct {
	Player   int
	Team     int
	HasUnits bool
}

// LastStanding returns the winner when exactly one side still fields units.
// Players without a team (team <= 0) are sides of their own. ok is false
// while two or more sides remain or when nobody does.
func LastStanding(forces []Standing) (player, team int, ok bool) {
	player, team = None, None
	sides := make(map[int]bool)
	for _, f := range forces {
		if !f.HasUnits {
			continue
		}
		key := f.Team
		if key <= 0 {
			key = -1 - f.Player
		}
		if len(sides) == 0 {
			player = f.Player
			if f.Team > 0 {
				team = f.Team
			}
		}
		sides[key] = true
	}
	if len(sides) != 1 {
		return None, None, false
	}
	return player, team, true
}
