package data

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/hexline/server/internal/world"
)

const sampleScenario = `
name: ridge
board:
  width: 8
  height: 6
  blocked:
    - {x: 3, y: 3}
players:
  - {id: 1, name: red, team: 1, mines: 2}
  - {id: 2, name: blue, team: 2, init_bonus: 1}
units:
  - id: 1
    owner: 1
    kind: mek
    at: [{x: 1, y: 1}]
    caps: [c3_master]
  - id: 2
    owner: 1
    kind: vehicle
    at: [{x: 2, y: 1}, {x: 2, y: 2}]
    caps: [c3_slave]
    master: 1
  - id: 3
    owner: 2
    kind: infantry
    transport: 4
  - id: 4
    owner: 2
    kind: vehicle
    at: [{x: 6, y: 4}]
    caps: [immobile, homing_ammo]
    network: alpha
`

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(sampleScenario), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario() error = %v", err)
	}
	if s.Name != "ridge" || len(s.Players) != 2 || len(s.Units) != 4 {
		t.Fatalf("scenario = %+v", s)
	}
	if s.Players[0].Mines != 2 || s.Players[1].InitBonus != 1 {
		t.Errorf("players = %+v", s.Players)
	}

	b := s.HexBoard()
	if b.Width() != 8 || b.Height() != 6 || b.Passable(world.Coord{X: 3, Y: 3}) {
		t.Errorf("board = %+v", b)
	}

	pieces := s.Pieces()
	if pieces[0].Master != world.NoUnit || !pieces[0].Has(world.CapC3Master) {
		t.Errorf("piece 1 = %+v", pieces[0])
	}
	if pieces[1].Master != 1 || len(pieces[1].Cells) != 2 || !pieces[1].IsDeployed {
		t.Errorf("piece 2 = %+v", pieces[1])
	}
	if pieces[2].Transport != 4 || pieces[2].IsDeployed {
		t.Errorf("piece 3 = %+v", pieces[2])
	}
	if pieces[3].Network != "alpha" || !pieces[3].Has(world.CapImmobile) || !pieces[3].Has(world.CapHomingAmmo) {
		t.Errorf("piece 4 = %+v", pieces[3])
	}
}

func TestParseScenarioRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no board", "name: x\n", "board size"},
		{"dup player", "board: {width: 2, height: 2}\nplayers: [{id: 1}, {id: 1}]\n", "duplicate player"},
		{"unknown owner", "board: {width: 2, height: 2}\nunits: [{owner: 3, kind: mek}]\n", "unknown player"},
		{"bad kind", "board: {width: 2, height: 2}\nplayers: [{id: 1}]\nunits: [{owner: 1, kind: walker}]\n", "unknown kind"},
		{"bad cap", "board: {width: 2, height: 2}\nplayers: [{id: 1}]\nunits: [{owner: 1, kind: mek, caps: [jetpack]}]\n", "unknown capability"},
		{"dup unit", "board: {width: 2, height: 2}\nplayers: [{id: 1}]\nunits: [{id: 4, owner: 1, kind: mek}, {id: 4, owner: 1, kind: vehicle}]\n", "duplicate unit id"},
		{"bad yaml", "board: [", "parse scenario"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.raw))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestHexAdjacency(t *testing.T) {
	b := NewHexBoard(5, 5)
	tests := []struct {
		at   world.Coord
		want []world.Coord
	}{
		{world.Coord{X: 2, Y: 2}, []world.Coord{{X: 2, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 2}, {X: 2, Y: 3}, {X: 1, Y: 2}, {X: 1, Y: 1}}},
		{world.Coord{X: 1, Y: 2}, []world.Coord{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 2, Y: 3}, {X: 1, Y: 3}, {X: 0, Y: 3}, {X: 0, Y: 2}}},
		{world.Coord{X: 0, Y: 0}, []world.Coord{{X: 1, Y: 0}, {X: 0, Y: 1}}},
	}
	for _, tt := range tests {
		if got := b.Adjacent(tt.at); !slices.Equal(got, tt.want) {
			t.Errorf("Adjacent(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}

	// Adjacency is symmetric.
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			c := world.Coord{X: x, Y: y}
			for _, n := range b.Adjacent(c) {
				if !slices.Contains(b.Adjacent(n), c) {
					t.Errorf("%v lists %v but not the reverse", c, n)
				}
			}
		}
	}
}
