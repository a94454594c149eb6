package model

import "fmt"

type Move struct {
	From Coordinate `json:"from"`
	To   Coordinate `json:"to"`
}

func (m Move) String() string {
	return fmt.Sprintf("%s->%s", m.From, m.To)
}

// IsJump reports whether the move spans two diagonal squares.
func (m Move) IsJump() bool {
	_, ok := midpiece(m.From, m.To)
	return ok
}

type MoveResult struct {
	Move    Move `json:"move"`
	Crowned bool `json:"crowned"`
}

// midpiece returns the square jumped over when to is exactly two diagonal
// steps from from.
func midpiece(from, to Coordinate) (Coordinate, bool) {
	dx, dy := to.X-from.X, to.Y-from.Y
	if abs(dx) != 2 || abs(dy) != 2 {
		return Coordinate{}, false
	}
	return Coordinate{X: from.X + sign(dx), Y: from.Y + sign(dy)}, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}
