package types

import (
	"github.com/DoyleJ11/yahtzee-backend/internal/engine"
)

// Client -> server message types.
const (
	MsgCreateRoom  = "create_room"
	MsgJoinRoom    = "join_room"
	MsgStartGame   = "start_game"
	MsgRollDice    = "roll_dice"
	MsgSubmitScore = "submit_score"
)

// Server -> client message types not produced by a room event.
const (
	MsgConnected = "connected"
	MsgError     = "error"
)

type ClientMessage struct {
	Type        string `json:"type"`
	RoomCode    string `json:"roomCode,omitempty"`
	PlayerName  string `json:"playerName,omitempty"`
	KeptIndices []int  `json:"keptIndices,omitempty"`
	Category    string `json:"category,omitempty"`
}

type ServerMessage struct {
	Type    string     `json:"type"`
	Version int        `json:"version,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Player struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Score     int            `json:"score"`
	Scorecard map[string]int `json:"scorecard"`
}

type Connected struct {
	PlayerID string `json:"playerId"`
}

type RoomCreated struct {
	Code     string   `json:"code"`
	PlayerID string   `json:"playerId"`
	Players  []Player `json:"players"`
}

type PlayerJoined struct {
	Code    string   `json:"code"`
	Players []Player `json:"players"`
}

type GameStarted struct {
	CurrentTurn string   `json:"currentTurn"`
	Dice        []int    `json:"dice"`
	RollsLeft   int      `json:"rollsLeft"`
	Players     []Player `json:"players"`
}

type DiceUpdated struct {
	Dice      []int `json:"dice"`
	Kept      []int `json:"kept"`
	RollsLeft int   `json:"rollsLeft"`
}

type TurnUpdated struct {
	CurrentTurn string   `json:"currentTurn"`
	Dice        []int    `json:"dice"`
	RollsLeft   int      `json:"rollsLeft"`
	Players     []Player `json:"players"`
}

type GameOver struct {
	Players []Player `json:"players"`
	Winner  Player   `json:"winner"`
	Tied    bool     `json:"tied"`
}

// RoomSummary is the body of GET /rooms/{code}.
type RoomSummary struct {
	Code    string   `json:"code"`
	Phase   string   `json:"phase"`
	Players []Player `json:"players"`
}

func PlayerFrom(p engine.PlayerView) Player {
	card := make(map[string]int, len(p.Scorecard))
	for c, pts := range p.Scorecard {
		card[string(c)] = pts
	}
	return Player{ID: p.ID, Name: p.Name, Score: p.Total, Scorecard: card}
}

func PlayersFrom(v engine.View) []Player {
	out := make([]Player, 0, len(v.Players))
	for _, p := range v.Players {
		out = append(out, PlayerFrom(p))
	}
	return out
}

// EventPayload projects a room event onto the payload clients expect for it.
func EventPayload(typ engine.EventType, code string, v engine.View) any {
	switch typ {
	case engine.EvtPlayerJoined:
		return PlayerJoined{Code: code, Players: PlayersFrom(v)}
	case engine.EvtGameStarted:
		return GameStarted{CurrentTurn: v.CurrentTurn, Dice: v.Dice[:], RollsLeft: v.RollsLeft, Players: PlayersFrom(v)}
	case engine.EvtDiceUpdated:
		return DiceUpdated{Dice: v.Dice[:], Kept: v.Kept, RollsLeft: v.RollsLeft}
	case engine.EvtTurnUpdated:
		return TurnUpdated{CurrentTurn: v.CurrentTurn, Dice: v.Dice[:], RollsLeft: v.RollsLeft, Players: PlayersFrom(v)}
	case engine.EvtGameOver:
		over := GameOver{Players: PlayersFrom(v), Tied: v.Tied}
		if v.Winner != nil {
			over.Winner = PlayerFrom(*v.Winner)
		}
		return over
	default:
		return nil
	}
}
