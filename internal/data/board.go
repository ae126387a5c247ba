package data

import (
	"github.com/hexline/server/internal/world"
)

// HexBoard is a rectangular hex map in odd-column offset layout: odd columns
// sit half a cell lower than even ones.
type HexBoard struct {
	width   int
	height  int
	blocked map[world.Coord]bool
}

// NewHexBoard returns a width x height board with the given impassable cells.
func NewHexBoard(width, height int, blocked ...world.Coord) *HexBoard {
	b := &HexBoard{
		width:   width,
		height:  height,
		blocked: make(map[world.Coord]bool, len(blocked)),
	}
	for _, c := range blocked {
		b.blocked[c] = true
	}
	return b
}

func (b *HexBoard) Width() int  { return b.width }
func (b *HexBoard) Height() int { return b.height }

// Contains reports whether c lies on the board.
func (b *HexBoard) Contains(c world.Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < b.width && c.Y < b.height
}

// Passable reports whether a unit may stand on c.
func (b *HexBoard) Passable(c world.Coord) bool {
	return b.Contains(c) && !b.blocked[c]
}

// neighbour offsets clockwise from north, for even and odd columns.
var (
	evenCol = [6]world.Coord{{X: 0, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: -1, Y: -1}}
	oddCol  = [6]world.Coord{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0}}
)

// Adjacent returns the on-board cells next to c, clockwise from north.
func (b *HexBoard) Adjacent(c world.Coord) []world.Coord {
	offsets := evenCol
	if c.X%2 != 0 {
		offsets = oddCol
	}
	out := make([]world.Coord, 0, 6)
	for _, d := range offsets {
		n := world.Coord{X: c.X + d.X, Y: c.Y + d.Y}
		if b.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}
