package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/checkers-backend/internal/config"
	"github.com/benbeisheim/checkers-backend/internal/model"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan model.MatchFoundEvent
	matches          map[string]model.MatchFoundEvent // playerID -> last match
	cfg              config.Game
	mu               sync.RWMutex
}

// NewGameManager starts the matchmaking loop, which runs until ctx is done.
func NewGameManager(ctx context.Context, cfg config.Game) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan model.MatchFoundEvent),
		matches:          make(map[string]model.MatchFoundEvent),
		cfg:              cfg,
	}

	go gm.processMatchmaking(ctx)

	return gm
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	log.Debugf("registering matchmaking channel for player %s", playerID)

	// A newer connection replaces the old one; closing tells the old waiter to stop.
	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}

	gm.matchingChannels[playerID] = ch
	return nil
}

// UnregisterMatchmakingChannel forgets ch if it is still the player's channel.
// The channel is not closed here; its creator owns it.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		log.Debugf("unregistering matchmaking channel for player %s", playerID)
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) processMatchmaking(ctx context.Context) {
	ticker := time.NewTicker(gm.cfg.MatchmakingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for gm.matchNextPair() {
			}
		}
	}
}

// matchNextPair seats the two longest-waiting players in a new game, records
// the match for MatchStatus and notifies any waiting channels. It reports
// whether a pair was made.
func (gm *GameManager) matchNextPair() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	player1, player2, ok := gm.queue.GetNextPair()
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID, gm.cfg.ClockTime)
	p1Color, err := game.AddPlayer(player1.ID)
	if err != nil {
		log.Errorf("matchmaking: adding player %s to game %s: %v", player1.ID, gameID, err)
		return true
	}
	p2Color, err := game.AddPlayer(player2.ID)
	if err != nil {
		log.Errorf("matchmaking: adding player %s to game %s: %v", player2.ID, gameID, err)
		return true
	}
	gm.games[gameID] = game
	log.Infof("matchmaking: paired %s (%s) and %s (%s) in game %s", player1.ID, p1Color, player2.ID, p2Color, gameID)

	event1 := model.MatchFoundEvent{GameID: gameID, Color: p1Color}
	event2 := model.MatchFoundEvent{GameID: gameID, Color: p2Color}
	gm.matches[player1.ID] = event1
	gm.matches[player2.ID] = event2

	// Players queued over REST have no channel and poll MatchStatus instead.
	if !gm.sendMatchFound(player1.ID, event1) {
		log.Debugf("matchmaking: player %s has no live channel for game %s", player1.ID, gameID)
	}
	if !gm.sendMatchFound(player2.ID, event2) {
		log.Debugf("matchmaking: player %s has no live channel for game %s", player2.ID, gameID)
	}
	return true
}

// sendMatchFound delivers the event and retires the channel. Callers hold gm.mu.
func (gm *GameManager) sendMatchFound(playerID string, event model.MatchFoundEvent) bool {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return false
	}
	delete(gm.matchingChannels, playerID)
	defer close(ch)

	select {
	case ch <- event:
		log.Debugf("sent match found event to player %s", playerID)
		return true
	default:
		return false
	}
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return fmt.Errorf("game %s: %w", gameID, model.ErrGameExists)
	}

	gm.games[gameID] = model.NewGame(gameID, gm.cfg.ClockTime)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("game %s: %w", gameID, model.ErrGameNotFound)
	}

	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.PieceColor, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

// JoinMatchmaking queues the player. A match from an earlier request is
// forgotten so MatchStatus reports the new one.
func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return fmt.Errorf("player %s: %w", playerID, err)
	}
	delete(gm.matches, playerID)
	log.Infof("player %s joined matchmaking", playerID)
	return nil
}

// MatchStatus reports whether the player is still waiting or has been
// matched, and into which game.
func (gm *GameManager) MatchStatus(playerID string) (model.MatchStatus, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if event, ok := gm.matches[playerID]; ok {
		return model.MatchStatus{Status: model.MatchStatusMatched, GameID: event.GameID, Color: event.Color}, nil
	}
	if gm.queue.Contains(playerID) {
		return model.MatchStatus{Status: model.MatchStatusQueued}, nil
	}
	return model.MatchStatus{}, fmt.Errorf("player %s: %w", playerID, model.ErrNotQueued)
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.RemovePlayer(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) LegalMoves(gameID string) ([]model.Move, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.Move) (model.MoveResult, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.MoveResult{}, err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}
