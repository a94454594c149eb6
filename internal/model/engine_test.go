package model

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// engineWith builds an engine holding only the given pieces.
func engineWith(turn PieceColor, pieces map[Coordinate]GamePiece) *Engine {
	e := &Engine{board: &board{}, currentTurn: turn}
	for c, p := range pieces {
		piece := p
		e.board[c.X][c.Y] = &piece
	}
	return e
}

func mustPiece(t *testing.T, e *Engine, c Coordinate) *GamePiece {
	t.Helper()
	p, err := e.GetPiece(c)
	if err != nil {
		t.Fatalf("GetPiece(%s): %v", c, err)
	}
	return p
}

func TestNewEngineStartingPosition(t *testing.T) {
	e := NewEngine()

	if got := e.CurrentTurn(); got != Black {
		t.Errorf("CurrentTurn() = %s, want black", got)
	}
	if got := e.MoveCount(); got != 0 {
		t.Errorf("MoveCount() = %d, want 0", got)
	}

	want := map[Coordinate]PieceColor{}
	for _, c := range whiteStart {
		want[c] = White
	}
	for _, c := range blackStart {
		want[c] = Black
	}

	whites, blacks := 0, 0
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			c := Coordinate{X: x, Y: y}
			p := mustPiece(t, e, c)
			color, occupied := want[c]
			if !occupied {
				if p != nil {
					t.Errorf("square %s holds %+v, want empty", c, *p)
				}
				continue
			}
			if p == nil {
				t.Errorf("square %s is empty, want %s piece", c, color)
				continue
			}
			if p.Color != color || p.Crowned {
				t.Errorf("square %s holds %+v, want uncrowned %s", c, *p, color)
			}
			if (x+y)%2 != 1 {
				t.Errorf("square %s is not a dark square", c)
			}
			if p.Color == White {
				whites++
			} else {
				blacks++
			}
		}
	}
	if whites != 12 || blacks != 12 {
		t.Errorf("got %d white and %d black pieces, want 12 each", whites, blacks)
	}
	if e.Count(White) != 12 || e.Count(Black) != 12 {
		t.Errorf("Count() = %d white, %d black, want 12 each", e.Count(White), e.Count(Black))
	}
}

func TestGetPieceBounds(t *testing.T) {
	e := NewEngine()

	for _, c := range []Coordinate{{X: 8, Y: 0}, {X: 0, Y: 8}, {X: 8, Y: 8}, {X: -1, Y: 0}, {X: 0, Y: -1}} {
		if _, err := e.GetPiece(c); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("GetPiece(%s) error = %v, want ErrOutOfBounds", c, err)
		}
	}

	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if _, err := e.GetPiece(Coordinate{X: x, Y: y}); err != nil {
				t.Errorf("GetPiece(%d,%d) unexpected error: %v", x, y, err)
			}
		}
	}
}

func TestGetPieceReturnsCopy(t *testing.T) {
	e := NewEngine()
	at := Coordinate{X: 0, Y: 5}

	p := mustPiece(t, e, at)
	p.Crowned = true
	p.Color = White

	if got := mustPiece(t, e, at); got.Crowned || got.Color != Black {
		t.Errorf("engine piece changed through returned copy: %+v", *got)
	}

	pieces := e.Pieces()
	pieces[0][5].Crowned = true
	if mustPiece(t, e, at).Crowned {
		t.Errorf("engine piece changed through Pieces() snapshot")
	}
}

func TestLegalMovesOpening(t *testing.T) {
	want := []Move{
		{From: Coordinate{X: 0, Y: 5}, To: Coordinate{X: 1, Y: 4}},
		{From: Coordinate{X: 2, Y: 5}, To: Coordinate{X: 1, Y: 4}},
		{From: Coordinate{X: 2, Y: 5}, To: Coordinate{X: 3, Y: 4}},
		{From: Coordinate{X: 4, Y: 5}, To: Coordinate{X: 3, Y: 4}},
		{From: Coordinate{X: 4, Y: 5}, To: Coordinate{X: 5, Y: 4}},
		{From: Coordinate{X: 6, Y: 5}, To: Coordinate{X: 5, Y: 4}},
		{From: Coordinate{X: 6, Y: 5}, To: Coordinate{X: 7, Y: 4}},
	}
	if diff := cmp.Diff(want, NewEngine().LegalMoves()); diff != "" {
		t.Errorf("LegalMoves() mismatch (-want +got):\n%s", diff)
	}
}

func TestLegalMovesDeterministic(t *testing.T) {
	a, b := NewEngine(), NewEngine()
	for i := 0; i < 4; i++ {
		if diff := cmp.Diff(a.LegalMoves(), b.LegalMoves()); diff != "" {
			t.Fatalf("ply %d: engines in the same state disagree (-a +b):\n%s", i, diff)
		}
		m := a.LegalMoves()[0]
		if _, err := a.MovePiece(m); err != nil {
			t.Fatalf("a.MovePiece(%s): %v", m, err)
		}
		if _, err := b.MovePiece(m); err != nil {
			t.Fatalf("b.MovePiece(%s): %v", m, err)
		}
	}
}

func TestLegalMovesPlainBeforeJump(t *testing.T) {
	e := engineWith(Black, map[Coordinate]GamePiece{
		{X: 3, Y: 4}: NewGamePiece(Black),
		{X: 2, Y: 3}: NewGamePiece(White),
	})
	want := []Move{
		{From: Coordinate{X: 3, Y: 4}, To: Coordinate{X: 2, Y: 5}},
		{From: Coordinate{X: 3, Y: 4}, To: Coordinate{X: 4, Y: 3}},
		{From: Coordinate{X: 3, Y: 4}, To: Coordinate{X: 4, Y: 5}},
		{From: Coordinate{X: 3, Y: 4}, To: Coordinate{X: 1, Y: 2}},
	}
	if diff := cmp.Diff(want, e.LegalMoves()); diff != "" {
		t.Errorf("LegalMoves() mismatch (-want +got):\n%s", diff)
	}
}

func TestMovePieceOpening(t *testing.T) {
	e := NewEngine()
	m := Move{From: Coordinate{X: 2, Y: 5}, To: Coordinate{X: 1, Y: 4}}

	result, err := e.MovePiece(m)
	if err != nil {
		t.Fatalf("MovePiece(%s): %v", m, err)
	}
	if diff := cmp.Diff(MoveResult{Move: m, Crowned: false}, result); diff != "" {
		t.Errorf("MovePiece result mismatch (-want +got):\n%s", diff)
	}
	if got := e.CurrentTurn(); got != White {
		t.Errorf("CurrentTurn() = %s, want white", got)
	}
	if got := e.MoveCount(); got != 1 {
		t.Errorf("MoveCount() = %d, want 1", got)
	}
	if p := mustPiece(t, e, m.From); p != nil {
		t.Errorf("source square still holds %+v", *p)
	}
	if p := mustPiece(t, e, m.To); p == nil || p.Color != Black {
		t.Errorf("destination holds %v, want black piece", p)
	}
}

func TestMovePieceRejectsIllegal(t *testing.T) {
	tests := []struct {
		name string
		move Move
	}{
		{
			name: "opponent piece",
			move: Move{From: Coordinate{X: 1, Y: 2}, To: Coordinate{X: 0, Y: 3}},
		},
		{
			name: "empty source",
			move: Move{From: Coordinate{X: 1, Y: 5}, To: Coordinate{X: 0, Y: 4}},
		},
		{
			name: "straight line",
			move: Move{From: Coordinate{X: 0, Y: 5}, To: Coordinate{X: 0, Y: 4}},
		},
		{
			name: "off the board",
			move: Move{From: Coordinate{X: 0, Y: 5}, To: Coordinate{X: -1, Y: 4}},
		},
		{
			name: "three squares",
			move: Move{From: Coordinate{X: 0, Y: 5}, To: Coordinate{X: 3, Y: 2}},
		},
		{
			name: "occupied destination",
			move: Move{From: Coordinate{X: 1, Y: 6}, To: Coordinate{X: 0, Y: 5}},
		},
		{
			name: "jump over own piece",
			move: Move{From: Coordinate{X: 1, Y: 6}, To: Coordinate{X: 3, Y: 4}},
		},
		{
			name: "jump over empty square",
			move: Move{From: Coordinate{X: 2, Y: 5}, To: Coordinate{X: 4, Y: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			before := e.Pieces()

			_, err := e.MovePiece(tt.move)
			if !errors.Is(err, ErrIllegalMove) {
				t.Fatalf("MovePiece(%s) error = %v, want ErrIllegalMove", tt.move, err)
			}
			if diff := cmp.Diff(before, e.Pieces()); diff != "" {
				t.Errorf("board changed after rejected move (-before +after):\n%s", diff)
			}
			if e.CurrentTurn() != Black || e.MoveCount() != 0 {
				t.Errorf("turn state changed: %s to move after %d moves", e.CurrentTurn(), e.MoveCount())
			}
		})
	}
}

func TestMovePieceCapture(t *testing.T) {
	from := Coordinate{X: 3, Y: 4}
	mid := Coordinate{X: 2, Y: 3}
	to := Coordinate{X: 1, Y: 2}
	e := engineWith(Black, map[Coordinate]GamePiece{
		from:         NewGamePiece(Black),
		mid:          NewGamePiece(White),
		{X: 6, Y: 1}: NewGamePiece(White),
	})

	if _, err := e.MovePiece(Move{From: from, To: to}); err != nil {
		t.Fatalf("jump: %v", err)
	}
	if p := mustPiece(t, e, mid); p != nil {
		t.Errorf("captured square still holds %+v", *p)
	}
	if p := mustPiece(t, e, from); p != nil {
		t.Errorf("source square still holds %+v", *p)
	}
	if p := mustPiece(t, e, to); p == nil || p.Color != Black {
		t.Errorf("destination holds %v, want black piece", p)
	}
	if got := e.Count(White); got != 1 {
		t.Errorf("Count(White) = %d, want 1", got)
	}
}

func TestJumpRequiresEmptyLanding(t *testing.T) {
	e := engineWith(Black, map[Coordinate]GamePiece{
		{X: 3, Y: 4}: NewGamePiece(Black),
		{X: 2, Y: 3}: NewGamePiece(White),
		{X: 1, Y: 2}: NewGamePiece(White),
	})
	jump := Move{From: Coordinate{X: 3, Y: 4}, To: Coordinate{X: 1, Y: 2}}
	if _, err := e.MovePiece(jump); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("jump onto occupied square error = %v, want ErrIllegalMove", err)
	}
}

func TestUncrownedPiecesMoveBothWays(t *testing.T) {
	e := engineWith(Black, map[Coordinate]GamePiece{
		{X: 3, Y: 4}: NewGamePiece(Black),
	})
	backward := Move{From: Coordinate{X: 3, Y: 4}, To: Coordinate{X: 4, Y: 5}}
	if _, err := e.MovePiece(backward); err != nil {
		t.Errorf("backward move rejected: %v", err)
	}
}

func TestCrowning(t *testing.T) {
	tests := []struct {
		name        string
		turn        PieceColor
		pieces      map[Coordinate]GamePiece
		move        Move
		wantCrowned bool
	}{
		{
			name:        "black reaches row 0",
			turn:        Black,
			pieces:      map[Coordinate]GamePiece{{X: 1, Y: 1}: NewGamePiece(Black)},
			move:        Move{From: Coordinate{X: 1, Y: 1}, To: Coordinate{X: 0, Y: 0}},
			wantCrowned: true,
		},
		{
			name:        "white reaches row 7",
			turn:        White,
			pieces:      map[Coordinate]GamePiece{{X: 6, Y: 6}: NewGamePiece(White)},
			move:        Move{From: Coordinate{X: 6, Y: 6}, To: Coordinate{X: 7, Y: 7}},
			wantCrowned: true,
		},
		{
			name: "black crowned by a jump",
			turn: Black,
			pieces: map[Coordinate]GamePiece{
				{X: 3, Y: 2}: NewGamePiece(Black),
				{X: 2, Y: 1}: NewGamePiece(White),
			},
			move:        Move{From: Coordinate{X: 3, Y: 2}, To: Coordinate{X: 1, Y: 0}},
			wantCrowned: true,
		},
		{
			name:        "white on its own back rank",
			turn:        White,
			pieces:      map[Coordinate]GamePiece{{X: 1, Y: 1}: NewGamePiece(White)},
			move:        Move{From: Coordinate{X: 1, Y: 1}, To: Coordinate{X: 0, Y: 0}},
			wantCrowned: false,
		},
		{
			name:        "short of the back rank",
			turn:        Black,
			pieces:      map[Coordinate]GamePiece{{X: 3, Y: 4}: NewGamePiece(Black)},
			move:        Move{From: Coordinate{X: 3, Y: 4}, To: Coordinate{X: 2, Y: 3}},
			wantCrowned: false,
		},
		{
			name:        "already crowned",
			turn:        Black,
			pieces:      map[Coordinate]GamePiece{{X: 1, Y: 1}: NewGamePiece(Black).Crown()},
			move:        Move{From: Coordinate{X: 1, Y: 1}, To: Coordinate{X: 2, Y: 0}},
			wantCrowned: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := engineWith(tt.turn, tt.pieces)
			before := *e.board[tt.move.From.X][tt.move.From.Y]

			result, err := e.MovePiece(tt.move)
			if err != nil {
				t.Fatalf("MovePiece(%s): %v", tt.move, err)
			}
			if result.Crowned != tt.wantCrowned {
				t.Errorf("result.Crowned = %t, want %t", result.Crowned, tt.wantCrowned)
			}
			p := mustPiece(t, e, tt.move.To)
			want := GamePiece{Color: before.Color, Crowned: before.Crowned || tt.wantCrowned}
			if diff := cmp.Diff(&want, p); diff != "" {
				t.Errorf("piece at destination mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCrownSurvivesLaterMoves(t *testing.T) {
	e := engineWith(Black, map[Coordinate]GamePiece{
		{X: 1, Y: 1}: NewGamePiece(Black),
		{X: 6, Y: 4}: NewGamePiece(White),
	})
	moves := []Move{
		{From: Coordinate{X: 1, Y: 1}, To: Coordinate{X: 0, Y: 0}},
		{From: Coordinate{X: 6, Y: 4}, To: Coordinate{X: 7, Y: 5}},
		{From: Coordinate{X: 0, Y: 0}, To: Coordinate{X: 1, Y: 1}},
		{From: Coordinate{X: 7, Y: 5}, To: Coordinate{X: 6, Y: 4}},
	}
	for _, m := range moves {
		if _, err := e.MovePiece(m); err != nil {
			t.Fatalf("MovePiece(%s): %v", m, err)
		}
	}
	if p := mustPiece(t, e, Coordinate{X: 1, Y: 1}); p == nil || !p.Crowned {
		t.Errorf("piece at (1,1) = %v, want crowned black piece", p)
	}
	if p := mustPiece(t, e, Coordinate{X: 6, Y: 4}); p == nil || p.Crowned {
		t.Errorf("piece at (6,4) = %v, want uncrowned white piece", p)
	}
}

// TestRandomPlayout plays random legal moves and checks the invariants that
// must hold after every accepted move.
func TestRandomPlayout(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		r := rand.New(rand.NewPCG(seed, seed*7))
		e := NewEngine()

		for ply := 0; ply < 200; ply++ {
			moves := e.LegalMoves()
			if len(moves) == 0 {
				break
			}
			for _, m := range moves {
				src := mustPiece(t, e, m.From)
				if src == nil || src.Color != e.CurrentTurn() {
					t.Fatalf("seed %d ply %d: %s starts from %v", seed, ply, m, src)
				}
				if dst := mustPiece(t, e, m.To); dst != nil {
					t.Fatalf("seed %d ply %d: %s lands on %+v", seed, ply, m, *dst)
				}
			}

			turn, count := e.CurrentTurn(), e.MoveCount()
			total := e.Count(White) + e.Count(Black)
			m := moves[r.IntN(len(moves))]
			if _, err := e.MovePiece(m); err != nil {
				t.Fatalf("seed %d ply %d: legal move %s rejected: %v", seed, ply, m, err)
			}
			if e.CurrentTurn() == turn {
				t.Fatalf("seed %d ply %d: turn did not alternate", seed, ply)
			}
			if e.MoveCount() != count+1 || e.MoveCount() != ply+1 {
				t.Fatalf("seed %d ply %d: MoveCount() = %d", seed, ply, e.MoveCount())
			}
			wantTotal := total
			if m.IsJump() {
				wantTotal--
			}
			if got := e.Count(White) + e.Count(Black); got != wantTotal {
				t.Fatalf("seed %d ply %d: %d pieces after %s, want %d", seed, ply, got, m, wantTotal)
			}
		}
	}
}
