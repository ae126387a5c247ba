package game

import (
	"slices"

	"github.com/hexline/server/internal/turn"
)

const (
	// TeamUnassigned is a player who has not picked a team yet.
	TeamUnassigned = -1
	// TeamNone is a player who fights alone.
	TeamNone = 0

	// soloTeamBase offsets the ids of single-player teams so they never
	// collide with configured team ids.
	soloTeamBase = 1000
)

// Player is a participant as the engine tracks it.
type Player struct {
	ID       int
	Name     string
	Team     int
	Ready    bool
	Done     bool
	Observer bool
	// Ghost is a disconnected player with nobody playing for them.
	Ghost bool
	// Mines is the number of minefields the player still has to deploy.
	Mines int
	// InitBonus is added to each of the team's initiative rolls.
	InitBonus int

	admitsDefeat bool
}

func (p *Player) PlayerID() int           { return p.ID }
func (p *Player) IsObserver() bool        { return p.Observer }
func (p *Player) AdmitsDefeat() bool      { return p.admitsDefeat }
func (p *Player) SetAdmitsDefeat(ok bool) { p.admitsDefeat = ok }

// TeamID returns the player's team, or the id of the solo team it forms.
func (p *Player) TeamID() int {
	if p.Team <= TeamNone {
		return soloTeamBase + p.ID
	}
	return p.Team
}

// Team groups players for initiative. Its initiative state survives between
// rounds so losing streaks accumulate.
type Team struct {
	ID      int
	players []int
	init    turn.Initiative
}

func (t *Team) OrderID() int           { return t.ID }
func (t *Team) Init() *turn.Initiative { return &t.init }
func (t *Team) Players() []int         { return slices.Clone(t.players) }
