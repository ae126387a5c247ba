package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hexline/server/internal/world"
)

// Scenario is a game setup loaded from yaml: the board, the players and the
// units they field.
type Scenario struct {
	Name    string        `yaml:"name"`
	Board   BoardEntry    `yaml:"board"`
	Players []PlayerEntry `yaml:"players"`
	Units   []UnitEntry   `yaml:"units"`
}

type CoordEntry struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func (c CoordEntry) Coord() world.Coord { return world.Coord{X: c.X, Y: c.Y} }

type BoardEntry struct {
	Width   int          `yaml:"width"`
	Height  int          `yaml:"height"`
	Blocked []CoordEntry `yaml:"blocked"`
}

type PlayerEntry struct {
	ID        int    `yaml:"id"`
	Name      string `yaml:"name"`
	Team      int    `yaml:"team"` // 0 = no team, -1 = unassigned
	Observer  bool   `yaml:"observer"`
	Mines     int    `yaml:"mines"`
	InitBonus int    `yaml:"init_bonus"`
}

// UnitEntry describes one unit. A unit with no cells starts undeployed.
type UnitEntry struct {
	ID        int          `yaml:"id"`
	Owner     int          `yaml:"owner"`
	Kind      string       `yaml:"kind"`
	At        []CoordEntry `yaml:"at"`
	Caps      []string     `yaml:"caps"`
	Network   string       `yaml:"network"`
	Master    *int         `yaml:"master"`    // nil = none
	Transport *int         `yaml:"transport"` // nil = not loaded
	Structure int          `yaml:"structure"` // 0 = world.DefaultStructure
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return ParseScenario(raw)
}

// ParseScenario decodes and validates scenario yaml.
func ParseScenario(raw []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if s.Board.Width <= 0 || s.Board.Height <= 0 {
		return nil, fmt.Errorf("scenario %q: board size %dx%d", s.Name, s.Board.Width, s.Board.Height)
	}
	players := make(map[int]bool, len(s.Players))
	for _, p := range s.Players {
		if players[p.ID] {
			return nil, fmt.Errorf("scenario %q: duplicate player %d", s.Name, p.ID)
		}
		players[p.ID] = true
	}
	ids := make(map[int]bool, len(s.Units))
	for i, u := range s.Units {
		if ids[u.ID] {
			return nil, fmt.Errorf("scenario %q: duplicate unit id %d", s.Name, u.ID)
		}
		ids[u.ID] = true
		if !players[u.Owner] {
			return nil, fmt.Errorf("scenario %q: unit %d owned by unknown player %d", s.Name, i, u.Owner)
		}
		if _, ok := world.ParseKind(u.Kind); !ok {
			return nil, fmt.Errorf("scenario %q: unit %d: unknown kind %q", s.Name, i, u.Kind)
		}
		for _, c := range u.Caps {
			if _, ok := world.ParseCapability(c); !ok {
				return nil, fmt.Errorf("scenario %q: unit %d: unknown capability %q", s.Name, i, c)
			}
		}
	}
	return &s, nil
}

// HexBoard builds the scenario's board.
func (s *Scenario) HexBoard() *HexBoard {
	blocked := make([]world.Coord, len(s.Board.Blocked))
	for i, c := range s.Board.Blocked {
		blocked[i] = c.Coord()
	}
	return NewHexBoard(s.Board.Width, s.Board.Height, blocked...)
}

// Pieces builds the scenario's units with the requested ids. ParseScenario
// rejects duplicates, so master and transport links stay valid.
func (s *Scenario) Pieces() []*world.Piece {
	out := make([]*world.Piece, 0, len(s.Units))
	for _, u := range s.Units {
		kind, _ := world.ParseKind(u.Kind)
		at := make([]world.Coord, len(u.At))
		for i, c := range u.At {
			at[i] = c.Coord()
		}
		p := world.NewPiece(u.ID, u.Owner, kind, at...)
		for _, name := range u.Caps {
			c, _ := world.ParseCapability(name)
			p.Caps |= c
		}
		p.Network = u.Network
		if u.Structure > 0 {
			p.Structure = u.Structure
		}
		if u.Master != nil {
			p.Master = *u.Master
		}
		if u.Transport != nil {
			p.Transport = *u.Transport
		}
		out = append(out, p)
	}
	return out
}
