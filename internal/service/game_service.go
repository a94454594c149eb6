package service

import (
	"errors"
	"fmt"

	"github.com/benbeisheim/checkers-backend/internal/model"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.PieceColor, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) MatchStatus(playerID string) (model.MatchStatus, error) {
	return gs.gameManager.MatchStatus(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) LegalMoves(gameID string) ([]model.Move, error) {
	return gs.gameManager.LegalMoves(gameID)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.Move) (model.MoveResult, error) {
	if !move.From.InBounds() || !move.To.InBounds() {
		return model.MoveResult{}, fmt.Errorf("move %s: %w", move, model.ErrOutOfBounds)
	}
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

// WaitForMatch registers ch for playerID and puts them in the queue if they
// aren't already waiting.
func (gs *GameService) WaitForMatch(playerID string, ch chan model.MatchFoundEvent) error {
	if err := gs.gameManager.RegisterMatchmakingChannel(playerID, ch); err != nil {
		return err
	}
	if err := gs.gameManager.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
		return err
	}
	return nil
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}
