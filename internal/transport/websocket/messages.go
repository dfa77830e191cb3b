package websocket

import "github.com/iamasit07/4-in-a-row/engine/internal/service/move"

// Client message types.
const (
	TypeInit         = "init"
	TypeChooseMove   = "choose_move"
	TypeListProfiles = "list_profiles"
)

// Server message types.
const (
	TypeReady    = "ready"
	TypeMove     = "move"
	TypeProfiles = "profiles"
	TypeError    = "error"
)

type ClientMessage struct {
	Type string `json:"type"`
	JWT  string `json:"jwt,omitempty"`
	// Ref is echoed back so clients can pair replies with requests.
	Ref     string  `json:"ref,omitempty"`
	Board   [][]int `json:"board,omitempty"`
	Player  int     `json:"player,omitempty"`
	Profile string  `json:"profile,omitempty"`
	Seed    *int64  `json:"seed,omitempty"`
	GameID  string  `json:"gameId,omitempty"`
}

func (m ClientMessage) moveRequest() move.Request {
	return move.Request{
		Board:   m.Board,
		Player:  m.Player,
		Profile: m.Profile,
		Seed:    m.Seed,
		GameID:  m.GameID,
	}
}

type ServerMessage struct {
	Type     string         `json:"type"`
	Ref      string         `json:"ref,omitempty"`
	Message  string         `json:"message,omitempty"`
	Move     *move.Response `json:"move,omitempty"`
	Profiles any            `json:"profiles,omitempty"`
}
