package model

import (
	"sync"

	"github.com/gofiber/websocket/v2"
)

type Player struct {
	ID    string
	Color PieceColor
}

type ClientPlayer struct {
	ID       string     `json:"name"`
	Color    PieceColor `json:"color"`
	TimeLeft int        `json:"timeLeft"`
}

// Conn is the part of a websocket connection a game writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// SyncConn serializes writes to a Conn. A websocket connection allows only one
// concurrent writer, and both the read loop and game broadcasts write to it.
type SyncConn struct {
	mu   sync.Mutex
	conn Conn
}

func NewSyncConn(conn Conn) *SyncConn {
	return &SyncConn{conn: conn}
}

func (s *SyncConn) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *SyncConn) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(messageType, data)
}

func (s *SyncConn) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}
