package ws

import (
	"errors"

	"github.com/DoyleJ11/yahtzee-backend/internal/engine"
	"github.com/DoyleJ11/yahtzee-backend/internal/hub"
	"github.com/DoyleJ11/yahtzee-backend/internal/types"
)

var ErrNotInRoom = errors.New("not in this room")
var ErrAlreadyInRoom = errors.New("already in a room")
var ErrBadMessage = errors.New("bad json")
var ErrUnknownMessage = errors.New("unknown message type")

var errorCodes = []struct {
	err  error
	code string
}{
	{hub.ErrRoomNotFound, "RoomNotFound"},
	{engine.ErrRoomNotJoinable, "RoomNotJoinable"},
	{engine.ErrEmptyName, "EmptyName"},
	{engine.ErrNotYourTurn, "NotYourTurn"},
	{engine.ErrNoRollsRemaining, "NoRollsRemaining"},
	{engine.ErrCategoryAlreadyScored, "CategoryAlreadyScored"},
	{engine.ErrUnknownCategory, "UnknownCategory"},
	{engine.ErrInvalidDiceSelection, "InvalidDiceSelection"},
	{engine.ErrNotHost, "NotHost"},
	{engine.ErrNoPlayers, "NoPlayers"},
	{engine.ErrGameAlreadyStarted, "GameAlreadyStarted"},
	{engine.ErrGameNotInProgress, "GameNotInProgress"},
	{ErrNotInRoom, "NotInRoom"},
	{ErrAlreadyInRoom, "AlreadyInRoom"},
	{ErrBadMessage, "BadMessage"},
	{ErrUnknownMessage, "UnknownMessage"},
}

// ErrorCode names err for clients. Anything unexpected is "Internal".
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "Internal"
}

func errorBody(err error) *types.ErrorBody {
	code := ErrorCode(err)
	msg := err.Error()
	if code == "Internal" {
		msg = "internal error"
	}
	return &types.ErrorBody{Code: code, Message: msg}
}
