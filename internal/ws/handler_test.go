package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/yahtzee-backend/internal/engine"
	"github.com/DoyleJ11/yahtzee-backend/internal/hub"
	"github.com/DoyleJ11/yahtzee-backend/internal/types"
)

type serverMsg struct {
	Type    string           `json:"type"`
	Version int              `json:"version"`
	Data    json.RawMessage  `json:"data"`
	Error   *types.ErrorBody `json:"error"`
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func newServer(t *testing.T) *httptest.Server {
	return newServerWith(t, Options{ClientBuffer: 32})
}

func newServerWith(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(ctx, hub.Options{})
	srv := httptest.NewServer(Handler(h, opts))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *testClient {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	c := &testClient{t: t, conn: conn}
	hello := c.expect(types.MsgConnected)
	var body types.Connected
	require.NoError(t, json.Unmarshal(hello.Data, &body))
	require.NotEmpty(t, body.PlayerID)
	c.id = body.PlayerID
	return c
}

func (c *testClient) send(msg types.ClientMessage) {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(c.t, wsjson.Write(ctx, c.conn, msg))
}

func (c *testClient) read() serverMsg {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var msg serverMsg
	require.NoError(c.t, wsjson.Read(ctx, c.conn, &msg))
	return msg
}

func (c *testClient) expect(typ string) serverMsg {
	c.t.Helper()
	msg := c.read()
	require.Equal(c.t, typ, msg.Type, "unexpected message: %+v", msg)
	return msg
}

func (c *testClient) expectError(code string) {
	c.t.Helper()
	msg := c.expect(types.MsgError)
	require.NotNil(c.t, msg.Error)
	assert.Equal(c.t, code, msg.Error.Code)
	assert.NotEmpty(c.t, msg.Error.Message)
}

func decode[T any](t *testing.T, msg serverMsg) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(msg.Data, &v))
	return v
}

func createRoom(t *testing.T, c *testClient, name string) string {
	t.Helper()
	c.send(types.ClientMessage{Type: types.MsgCreateRoom, PlayerName: name})
	created := decode[types.RoomCreated](t, c.expect("room_created"))
	require.NotEmpty(t, created.Code)
	assert.Equal(t, c.id, created.PlayerID)
	require.Len(t, created.Players, 1)
	assert.Equal(t, name, created.Players[0].Name)
	return created.Code
}

func TestGateway_FullTurn(t *testing.T) {
	srv := newServer(t)
	ann := dial(t, srv)
	bob := dial(t, srv)

	code := createRoom(t, ann, "Ann")

	bob.send(types.ClientMessage{Type: types.MsgJoinRoom, RoomCode: strings.ToLower(code), PlayerName: "Bob"})
	for _, c := range []*testClient{ann, bob} {
		joined := decode[types.PlayerJoined](t, c.expect("player_joined"))
		require.Len(t, joined.Players, 2)
		assert.Equal(t, ann.id, joined.Players[0].ID)
		assert.Equal(t, bob.id, joined.Players[1].ID)
	}

	bob.send(types.ClientMessage{Type: types.MsgStartGame, RoomCode: code})
	bob.expectError("NotHost")

	ann.send(types.ClientMessage{Type: types.MsgStartGame, RoomCode: code})
	var dice []int
	for _, c := range []*testClient{ann, bob} {
		started := decode[types.GameStarted](t, c.expect("game_started"))
		assert.Equal(t, ann.id, started.CurrentTurn)
		assert.Equal(t, engine.MaxRolls, started.RollsLeft)
		require.Len(t, started.Dice, engine.NumDice)
		dice = started.Dice
	}

	bob.send(types.ClientMessage{Type: types.MsgRollDice, RoomCode: code})
	bob.expectError("NotYourTurn")

	ann.send(types.ClientMessage{Type: types.MsgRollDice, RoomCode: code, KeptIndices: []int{0, 9}})
	ann.expectError("InvalidDiceSelection")

	ann.send(types.ClientMessage{Type: types.MsgRollDice, RoomCode: code, KeptIndices: []int{0, 1}})
	for _, c := range []*testClient{ann, bob} {
		rolled := decode[types.DiceUpdated](t, c.expect("dice_updated"))
		assert.Equal(t, 2, rolled.RollsLeft)
		assert.Equal(t, dice[:2], rolled.Dice[:2])
		assert.Equal(t, []int{0, 1}, rolled.Kept)
	}

	ann.send(types.ClientMessage{Type: types.MsgSubmitScore, RoomCode: code, Category: "chance"})
	for _, c := range []*testClient{ann, bob} {
		turn := decode[types.TurnUpdated](t, c.expect("turn_updated"))
		assert.Equal(t, bob.id, turn.CurrentTurn)
		assert.Equal(t, engine.MaxRolls, turn.RollsLeft)
		require.Len(t, turn.Players, 2)
		assert.Contains(t, turn.Players[0].Scorecard, "chance")
		assert.Positive(t, turn.Players[0].Score)
	}

	bob.send(types.ClientMessage{Type: types.MsgSubmitScore, RoomCode: code, Category: "bonus"})
	bob.expectError("UnknownCategory")

	ann.send(types.ClientMessage{Type: types.MsgSubmitScore, RoomCode: code, Category: "ones"})
	ann.expectError("NotYourTurn")

	late := dial(t, srv)
	late.send(types.ClientMessage{Type: types.MsgJoinRoom, RoomCode: code, PlayerName: "Lou"})
	late.expectError("RoomNotJoinable")
}

func TestGateway_GameOver(t *testing.T) {
	srv := newServer(t)
	solo := dial(t, srv)
	code := createRoom(t, solo, "Sol")

	solo.send(types.ClientMessage{Type: types.MsgStartGame, RoomCode: code})
	solo.expect("game_started")

	for i, c := range engine.Categories {
		solo.send(types.ClientMessage{Type: types.MsgSubmitScore, RoomCode: code, Category: string(c)})
		if i < len(engine.Categories)-1 {
			solo.expect("turn_updated")
			continue
		}
		over := decode[types.GameOver](t, solo.expect("game_over"))
		assert.Equal(t, solo.id, over.Winner.ID)
		assert.False(t, over.Tied)
		require.Len(t, over.Players, 1)
		assert.Len(t, over.Players[0].Scorecard, len(engine.Categories))
	}

	solo.send(types.ClientMessage{Type: types.MsgSubmitScore, RoomCode: code, Category: "chance"})
	solo.expectError("GameNotInProgress")
}

func TestGateway_RequestErrors(t *testing.T) {
	srv := newServer(t)
	c := dial(t, srv)

	cases := []struct {
		msg  types.ClientMessage
		code string
	}{
		{types.ClientMessage{Type: types.MsgJoinRoom, RoomCode: "ZZZZZ", PlayerName: "Zed"}, "RoomNotFound"},
		{types.ClientMessage{Type: types.MsgCreateRoom, PlayerName: "  "}, "EmptyName"},
		{types.ClientMessage{Type: types.MsgRollDice, RoomCode: "ZZZZZ"}, "NotInRoom"},
		{types.ClientMessage{Type: "dance"}, "UnknownMessage"},
	}
	for _, tc := range cases {
		c.send(tc.msg)
		c.expectError(tc.code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.conn.Write(ctx, websocket.MessageText, []byte("{not json")))
	c.expectError("BadMessage")

	code := createRoom(t, c, "Cat")
	c.send(types.ClientMessage{Type: types.MsgCreateRoom, PlayerName: "Cat"})
	c.expectError("AlreadyInRoom")

	c.send(types.ClientMessage{Type: types.MsgStartGame, RoomCode: "OTHER"})
	c.expectError("NotInRoom")

	c.send(types.ClientMessage{Type: types.MsgStartGame, RoomCode: code})
	c.expect("game_started")
}

func TestGateway_QuietPlayerStaysSeated(t *testing.T) {
	srv := newServerWith(t, Options{ClientBuffer: 32, PingInterval: 50 * time.Millisecond, PingTimeout: 2 * time.Second})
	ann := dial(t, srv)
	bob := dial(t, srv)

	code := createRoom(t, ann, "Ann")
	bob.send(types.ClientMessage{Type: types.MsgJoinRoom, RoomCode: code, PlayerName: "Bob"})
	ann.expect("player_joined")
	bob.expect("player_joined")

	ann.send(types.ClientMessage{Type: types.MsgStartGame, RoomCode: code})
	ann.expect("game_started")
	bob.expect("game_started")

	// Bob sends nothing for several ping periods while Ann thinks.
	errc := make(chan error, 1)
	go func() {
		time.Sleep(400 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		errc <- wsjson.Write(ctx, ann.conn, types.ClientMessage{Type: types.MsgRollDice, RoomCode: code})
	}()

	bob.expect("dice_updated")
	ann.expect("dice_updated")
	require.NoError(t, <-errc)

	ann.send(types.ClientMessage{Type: types.MsgSubmitScore, RoomCode: code, Category: "chance"})
	ann.expect("turn_updated")
	turn := decode[types.TurnUpdated](t, bob.expect("turn_updated"))
	assert.Equal(t, bob.id, turn.CurrentTurn)

	bob.send(types.ClientMessage{Type: types.MsgRollDice, RoomCode: code})
	bob.expect("dice_updated")
}

func TestGateway_UnansweredPingClosesConnection(t *testing.T) {
	srv := newServerWith(t, Options{ClientBuffer: 32, PingInterval: 20 * time.Millisecond, PingTimeout: 50 * time.Millisecond})
	c := dial(t, srv)

	// Not reading means pings go unanswered.
	time.Sleep(300 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := c.conn.Read(ctx)
	require.Error(t, err)
	assert.NoError(t, ctx.Err(), "server did not close the connection")
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "NotYourTurn", ErrorCode(engine.ErrNotYourTurn))
	assert.Equal(t, "RoomNotFound", ErrorCode(fmt.Errorf("%w: ABCDE", hub.ErrRoomNotFound)))
	assert.Equal(t, "Internal", ErrorCode(errors.New("boom")))
	assert.Equal(t, "internal error", errorBody(errors.New("boom")).Message)
}
