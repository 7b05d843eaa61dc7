package engine

type CommandType string

const (
	CmdJoinRoom    CommandType = "join_room"
	CmdStartGame   CommandType = "start_game"
	CmdRollDice    CommandType = "roll_dice"
	CmdSubmitScore CommandType = "submit_score"
)

/*
	CmdJoinRoom    -> EvtPlayerJoined
	CmdStartGame   -> EvtGameStarted
	CmdRollDice    -> EvtDiceUpdated
	CmdSubmitScore -> EvtTurnUpdated, or EvtGameOver when the last scorecard fills
*/

// Command is one validated client intent. PlayerID is taken from the
// connection binding, never from the client payload.
type Command struct {
	Type        CommandType
	PlayerID    string
	PlayerName  string
	KeptIndices []int
	Category    string
}

type EventType string

const (
	EvtPlayerJoined EventType = "player_joined"
	EvtGameStarted  EventType = "game_started"
	EvtDiceUpdated  EventType = "dice_updated"
	EvtTurnUpdated  EventType = "turn_updated"
	EvtGameOver     EventType = "game_over"
)

// Event is what a successful command produced, with the state right after it.
type Event struct {
	Type EventType
	View View
}

// Apply runs cmd against s. On error s is left exactly as it was.
func Apply(s *Session, cmd Command) (Event, error) {
	var typ EventType
	var err error

	switch cmd.Type {
	case CmdJoinRoom:
		typ, err = EvtPlayerJoined, s.AddPlayer(cmd.PlayerID, cmd.PlayerName)
	case CmdStartGame:
		typ, err = EvtGameStarted, s.Start(cmd.PlayerID)
	case CmdRollDice:
		typ, err = EvtDiceUpdated, s.Roll(cmd.PlayerID, cmd.KeptIndices)
	case CmdSubmitScore:
		err = s.SubmitScore(cmd.PlayerID, cmd.Category)
		typ = EvtTurnUpdated
		if s.phase == PhaseFinished {
			typ = EvtGameOver
		}
	default:
		return Event{}, ErrUnsupportedCommand
	}

	if err != nil {
		return Event{}, err
	}
	return Event{Type: typ, View: s.View()}, nil
}
