package model

import (
	"fmt"
	"slices"
)

// Engine holds the rules state of a single checkers game. It does no locking;
// Game serializes access to it.
type Engine struct {
	board       *board
	currentTurn PieceColor
	moveCount   int
}

// NewEngine returns an engine with the starting layout and Black to move.
func NewEngine() *Engine {
	return &Engine{
		board:       newBoard(),
		currentTurn: Black,
		moveCount:   0,
	}
}

func (e *Engine) CurrentTurn() PieceColor {
	return e.currentTurn
}

func (e *Engine) MoveCount() int {
	return e.moveCount
}

// GetPiece returns a copy of the piece at c, or nil for an empty square.
func (e *Engine) GetPiece(c Coordinate) (*GamePiece, error) {
	p, err := e.board.at(c)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	piece := *p
	return &piece, nil
}

// Pieces returns a copy of the board indexed [column][row].
func (e *Engine) Pieces() [BoardSize][BoardSize]*GamePiece {
	return e.board.copy()
}

// Count returns how many pieces of color remain on the board.
func (e *Engine) Count(color PieceColor) int {
	n := 0
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if p := e.board[x][y]; p != nil && p.Color == color {
				n++
			}
		}
	}
	return n
}

// LegalMoves lists every legal move for the side to move. Squares are scanned
// column by column; each square contributes its plain moves before its jumps.
func (e *Engine) LegalMoves() []Move {
	moves := []Move{}
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			piece := e.board[x][y]
			if piece == nil || piece.Color != e.currentTurn {
				continue
			}
			moves = append(moves, e.legalMovesFrom(*piece, Coordinate{X: x, Y: y})...)
		}
	}
	return moves
}

func (e *Engine) legalMovesFrom(piece GamePiece, from Coordinate) []Move {
	moves := []Move{}
	for to := range MoveTargets(from) {
		if e.validMove(piece, from, to) {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	for to := range JumpTargets(from) {
		if e.validJump(piece, from, to) {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

// validMove checks ownership and the landing square. Both plain moves and
// jumps go through it.
func (e *Engine) validMove(piece GamePiece, from, to Coordinate) bool {
	if piece.Color != e.currentTurn {
		return false
	}
	src, err := e.board.at(from)
	if err != nil || src == nil || src.Color != e.currentTurn {
		return false
	}
	dst, err := e.board.at(to)
	if err != nil {
		return false
	}
	return dst == nil
}

func (e *Engine) validJump(piece GamePiece, from, to Coordinate) bool {
	mid, ok := midpiece(from, to)
	if !ok {
		return false
	}
	if !e.validMove(piece, from, to) {
		return false
	}
	captured, err := e.board.at(mid)
	if err != nil || captured == nil {
		return false
	}
	return captured.Color == piece.Color.Opposite()
}

// MovePiece applies m if it is one of LegalMoves. A rejected move leaves the
// engine untouched.
func (e *Engine) MovePiece(m Move) (MoveResult, error) {
	if !slices.Contains(e.LegalMoves(), m) {
		return MoveResult{}, fmt.Errorf("%s moving %s: %w", e.currentTurn, m, ErrIllegalMove)
	}

	// Legal moves only touch in-bounds squares, so the accessors below can't fail.
	piece := *e.board[m.From.X][m.From.Y]
	if mid, ok := midpiece(m.From, m.To); ok {
		_ = e.board.clear(mid)
	}
	_ = e.board.set(m.To, &piece)
	_ = e.board.clear(m.From)

	crowned := false
	if e.shouldCrown(piece, m.To) {
		e.crownPiece(m.To)
		crowned = true
	}
	e.advanceTurn()

	return MoveResult{Move: m, Crowned: crowned}, nil
}

func (e *Engine) shouldCrown(piece GamePiece, at Coordinate) bool {
	return !piece.Crowned && at.Y == piece.Color.backRank()
}

func (e *Engine) crownPiece(at Coordinate) {
	crowned := e.board[at.X][at.Y].Crown()
	_ = e.board.set(at, &crowned)
}

func (e *Engine) advanceTurn() {
	e.currentTurn = e.currentTurn.Opposite()
	e.moveCount++
}
