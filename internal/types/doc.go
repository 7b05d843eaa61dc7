// Package types holds the JSON messages exchanged over the websocket.
//
// Client -> Server (every message is {"type": ..., ...fields}):
//
//	create_room:  playerName
//	join_room:    roomCode, playerName
//	start_game:   roomCode
//	roll_dice:    roomCode, keptIndices (die slots 0..4 to keep)
//	submit_score: roomCode, category
//
// Server -> Client ({"type", "version", "data"} or {"type":"error","error":{code,message}}):
//
//	connected:     playerId
//	room_created:  code, playerId, players        (requester only)
//	player_joined: code, players                  (whole room)
//	game_started:  currentTurn, dice, rollsLeft, players
//	dice_updated:  dice, kept, rollsLeft
//	turn_updated:  currentTurn, dice, rollsLeft, players
//	game_over:     players, winner, tied
//	error:         code, message                  (requester only)
package types
