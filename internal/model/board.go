package model

import (
	"fmt"
	"iter"
)

const BoardSize = 8

type PieceColor string

const (
	White PieceColor = "white"
	Black PieceColor = "black"
)

func (c PieceColor) Opposite() PieceColor {
	if c == White {
		return Black
	}
	return White
}

func (c PieceColor) Valid() bool {
	return c == White || c == Black
}

// backRank is the row a piece of this color is crowned on.
func (c PieceColor) backRank() int {
	if c == White {
		return BoardSize - 1
	}
	return 0
}

type GamePiece struct {
	Color   PieceColor `json:"color"`
	Crowned bool       `json:"crowned"`
}

func NewGamePiece(color PieceColor) GamePiece {
	return GamePiece{Color: color}
}

// Crown returns a crowned copy of the piece.
func (p GamePiece) Crown() GamePiece {
	return GamePiece{Color: p.Color, Crowned: true}
}

// Coordinate is a square on the board: X is the column, Y the row.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coordinate) InBounds() bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

var diagonals = []Coordinate{{X: -1, Y: -1}, {X: -1, Y: 1}, {X: 1, Y: -1}, {X: 1, Y: 1}}

// MoveTargets yields the diagonally adjacent squares of c that are on the board.
func MoveTargets(c Coordinate) iter.Seq[Coordinate] {
	return diagonalTargets(c, 1)
}

// JumpTargets yields the squares two diagonal steps from c that are on the board.
func JumpTargets(c Coordinate) iter.Seq[Coordinate] {
	return diagonalTargets(c, 2)
}

func diagonalTargets(c Coordinate, distance int) iter.Seq[Coordinate] {
	return func(yield func(Coordinate) bool) {
		for _, dir := range diagonals {
			target := Coordinate{X: c.X + dir.X*distance, Y: c.Y + dir.Y*distance}
			if !target.InBounds() {
				continue
			}
			if !yield(target) {
				return
			}
		}
	}
}

// board is indexed [column][row]; nil is an empty square.
type board [BoardSize][BoardSize]*GamePiece

func (b *board) at(c Coordinate) (*GamePiece, error) {
	if !c.InBounds() {
		return nil, fmt.Errorf("square %s: %w", c, ErrOutOfBounds)
	}
	return b[c.X][c.Y], nil
}

func (b *board) set(c Coordinate, piece *GamePiece) error {
	if !c.InBounds() {
		return fmt.Errorf("square %s: %w", c, ErrOutOfBounds)
	}
	b[c.X][c.Y] = piece
	return nil
}

func (b *board) clear(c Coordinate) error {
	return b.set(c, nil)
}

// copy returns a deep copy so callers can't reach into the live board.
func (b *board) copy() [BoardSize][BoardSize]*GamePiece {
	var out [BoardSize][BoardSize]*GamePiece
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if p := b[x][y]; p != nil {
				piece := *p
				out[x][y] = &piece
			}
		}
	}
	return out
}

var (
	whiteStart = []Coordinate{
		{X: 1, Y: 0}, {X: 3, Y: 0}, {X: 5, Y: 0}, {X: 7, Y: 0},
		{X: 0, Y: 1}, {X: 2, Y: 1}, {X: 4, Y: 1}, {X: 6, Y: 1},
		{X: 1, Y: 2}, {X: 3, Y: 2}, {X: 5, Y: 2}, {X: 7, Y: 2},
	}
	blackStart = []Coordinate{
		{X: 0, Y: 5}, {X: 2, Y: 5}, {X: 4, Y: 5}, {X: 6, Y: 5},
		{X: 1, Y: 6}, {X: 3, Y: 6}, {X: 5, Y: 6}, {X: 7, Y: 6},
		{X: 0, Y: 7}, {X: 2, Y: 7}, {X: 4, Y: 7}, {X: 6, Y: 7},
	}
)

func newBoard() *board {
	b := &board{}
	for _, c := range whiteStart {
		piece := NewGamePiece(White)
		b[c.X][c.Y] = &piece
	}
	for _, c := range blackStart {
		piece := NewGamePiece(Black)
		b[c.X][c.Y] = &piece
	}
	return b
}
