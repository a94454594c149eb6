package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/checkers-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game wraps an Engine with the players, clocks and observers of one game.
// All engine access goes through g.mu. broadcastMu is taken before g.mu and
// held from snapshot to the last write, so states reach every connection in
// the order they were produced.
type Game struct {
	ID          string
	mu          sync.Mutex
	broadcastMu sync.Mutex
	engine      *Engine
	seats       map[PieceColor]string // color -> playerID
	clocks      map[PieceColor]*Clock
	connections *GameConnections
	lastMove    *MoveResult
}

type GameState struct {
	ID         string                           `json:"id"`
	Board      [BoardSize][BoardSize]*GamePiece `json:"board"`
	ToMove     PieceColor                       `json:"toMove"`
	MoveCount  int                              `json:"moveCount"`
	LegalMoves []Move                           `json:"legalMoves"`
	LastMove   *MoveResult                      `json:"lastMove"`
	Pieces     PieceCounts                      `json:"pieces"`
	Players    struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

type PieceCounts struct {
	White int `json:"white"`
	Black int `json:"black"`
}

func NewGame(id string, clockTime time.Duration) *Game {
	return &Game{
		ID:     id,
		engine: NewEngine(),
		seats:  make(map[PieceColor]string),
		clocks: map[PieceColor]*Clock{
			White: NewClock(clockTime),
			Black: NewClock(clockTime),
		},
		connections: NewGameConnections(),
	}
}

// AddPlayer seats the player. Black moves first, so the first seat handed out
// is Black. A player already seated gets their color back.
func (g *Game) AddPlayer(playerID string) (PieceColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.colorOf(playerID); ok {
		return color, nil
	}
	for _, color := range []PieceColor{Black, White} {
		if g.seats[color] == "" {
			g.seats[color] = playerID
			log.Infof("game %s: player %s seated as %s", g.ID, playerID, color)
			return color, nil
		}
	}
	return "", ErrGameFull
}

func (g *Game) colorOf(playerID string) (PieceColor, bool) {
	if playerID == "" {
		return "", false
	}
	for color, id := range g.seats {
		if id == playerID {
			return color, true
		}
	}
	return "", false
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.colorOf(playerID)
	return ok
}

func (g *Game) canSpectate() bool {
	return g.seats[White] == "" || g.seats[Black] == ""
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshot()
}

func (g *Game) LegalMoves() []Move {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.engine.LegalMoves()
}

func (g *Game) snapshot() GameState {
	state := GameState{
		ID:         g.ID,
		Board:      g.engine.Pieces(),
		ToMove:     g.engine.CurrentTurn(),
		MoveCount:  g.engine.MoveCount(),
		LegalMoves: g.engine.LegalMoves(),
		Pieces: PieceCounts{
			White: g.engine.Count(White),
			Black: g.engine.Count(Black),
		},
	}
	if g.lastMove != nil {
		last := *g.lastMove
		state.LastMove = &last
	}
	state.Players.White = g.clientPlayer(White)
	state.Players.Black = g.clientPlayer(Black)
	return state
}

func (g *Game) clientPlayer(color PieceColor) ClientPlayer {
	return ClientPlayer{
		ID:       g.seats[color],
		Color:    color,
		TimeLeft: deciseconds(g.clocks[color].GetTimeLeft()),
	}
}

// MakeMove plays move for playerID and broadcasts the resulting state.
func (g *Game) MakeMove(playerID string, move Move) (MoveResult, error) {
	g.broadcastMu.Lock()
	defer g.broadcastMu.Unlock()

	result, state, err := g.applyMove(playerID, move)
	if err != nil {
		return MoveResult{}, err
	}
	g.broadcastState(state)
	return result, nil
}

func (g *Game) applyMove(playerID string, move Move) (MoveResult, GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	log.Debugf("game %s: player %s moving %s", g.ID, playerID, move)

	color, ok := g.colorOf(playerID)
	if !ok {
		return MoveResult{}, GameState{}, fmt.Errorf("game %s: %w", g.ID, ErrPlayerNotInGame)
	}
	if color != g.engine.CurrentTurn() {
		return MoveResult{}, GameState{}, fmt.Errorf("game %s: %s to move: %w", g.ID, g.engine.CurrentTurn(), ErrNotYourTurn)
	}

	result, err := g.engine.MovePiece(move)
	if err != nil {
		return MoveResult{}, GameState{}, err
	}

	g.clocks[color].Stop()
	g.clocks[color.Opposite()].Start()
	g.lastMove = &result
	if result.Crowned {
		log.Infof("game %s: %s piece crowned at %s", g.ID, color, move.To)
	}

	return result, g.snapshot(), nil
}

func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.broadcastMu.Lock()
	defer g.broadcastMu.Unlock()

	g.mu.Lock()
	isAuthorized := g.isSeated(playerID) || g.canSpectate()
	state := g.snapshot()
	g.mu.Unlock()

	if !isAuthorized {
		return fmt.Errorf("game %s: not authorized to join this game", g.ID)
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// Keep the live connection and turn the new one away.
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil
	}

	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Infof("game %s: registered connection %p for player %s", g.ID, conn, playerID)

	g.broadcastState(state)
	return nil
}

func (g *Game) isSeated(playerID string) bool {
	_, ok := g.colorOf(playerID)
	return ok
}

// UnregisterConnection removes conn only if it is still the player's current
// connection; a rejected duplicate must not evict the live one.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		log.Infof("game %s: unregistering connection %p for player %s", g.ID, conn, playerID)
		delete(g.connections.connections, playerID)
	}
}

func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.connections)
}

// broadcastState writes state to every connection. Callers hold g.broadcastMu.
func (g *Game) broadcastState(state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Errorf("game %s: failed to marshal state: %v", g.ID, err)
		return
	}

	// Copy the connections so writes happen without holding the lock.
	g.connections.mu.RLock()
	activeConnections := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		activeConnections[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range activeConnections {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("game %s: failed to send state to player %s: %v", g.ID, playerID, err)
			g.UnregisterConnection(playerID, conn)
			continue
		}
		log.Debugf("game %s: sent state to player %s", g.ID, playerID)
	}
}
