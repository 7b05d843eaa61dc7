package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/yahtzee-backend/internal/engine"
	"github.com/DoyleJ11/yahtzee-backend/internal/hub"
	"github.com/DoyleJ11/yahtzee-backend/internal/room"
	"github.com/DoyleJ11/yahtzee-backend/internal/types"
)

type Options struct {
	Logger *zap.Logger
	// ClientBuffer is the outbox size; a client that falls this far behind is dropped.
	ClientBuffer int
	// PingInterval is how often the connection is probed for a pong. Zero disables it.
	PingInterval time.Duration
	PingTimeout  time.Duration
	WriteTimeout time.Duration
	// OriginPatterns loosens the same-origin check, e.g. "localhost:*".
	OriginPatterns []string
}

// client is one websocket connection and, once bound, its (room, player) identity.
type client struct {
	id   string
	conn *websocket.Conn
	hub  *hub.Hub
	out  chan room.Outbound
	room *room.Room
	opts Options
	log  *zap.Logger
}

func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ClientBuffer <= 0 {
		opts.ClientBuffer = 16
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 3 * time.Second
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 10 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			opts.Logger.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		id := uuid.NewString()
		c := &client{
			id:   id,
			conn: conn,
			hub:  h,
			out:  make(chan room.Outbound, opts.ClientBuffer),
			opts: opts,
			log:  opts.Logger.With(zap.String("client", id)),
		}
		c.log.Debug("connection opened", zap.String("remote", r.RemoteAddr))
		c.serve(r.Context())
		c.log.Debug("connection closed")
	}
}

func (c *client) serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer func() {
		if c.room != nil {
			_ = c.room.Send(context.Background(), room.Leave{ClientID: c.id})
		}
	}()

	if err := c.write(ctx, types.ServerMessage{Type: types.MsgConnected, Data: types.Connected{PlayerID: c.id}}); err != nil {
		return
	}

	if c.opts.PingInterval > 0 {
		go c.keepalive(ctx)
	}

	// Reader loop. No read deadline: waiting players are silent.
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				c.log.Debug("read failed", zap.Error(err))
			}
			return
		}

		var cm types.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			c.fail(ctx, ErrBadMessage)
			continue
		}
		if err := c.handle(ctx, cm); err != nil {
			c.fail(ctx, err)
		}
	}
}

// keepalive pings the peer every PingInterval and closes the connection
// when a pong does not come back within PingTimeout. Pongs are handled by
// the reader loop's Read.
func (c *client) keepalive(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		pingCtx, cancel := context.WithTimeout(ctx, c.opts.PingTimeout)
		err := c.conn.Ping(pingCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Debug("ping failed", zap.Error(err))
			c.conn.Close(websocket.StatusPolicyViolation, "ping timeout")
			return
		}
	}
}

// handle dispatches one request. Errors returned here never reached a room
// and are reported to this connection only; room-side rejections come back
// through the outbox.
func (c *client) handle(ctx context.Context, cm types.ClientMessage) error {
	switch cm.Type {
	case types.MsgCreateRoom:
		if c.room != nil {
			return ErrAlreadyInRoom
		}
		lb, err := c.hub.Create(ctx, room.Host{ID: c.id, Name: cm.PlayerName, Outbox: c.out})
		if err != nil {
			return err
		}
		c.bind(ctx, lb)
		return nil

	case types.MsgJoinRoom:
		if c.room != nil {
			return ErrAlreadyInRoom
		}
		lb, err := c.hub.Find(ctx, cm.RoomCode)
		if err != nil {
			return err
		}
		if err := lb.Join(ctx, c.id, cm.PlayerName, c.out); err != nil {
			if errors.Is(err, room.ErrRoomClosed) {
				return fmt.Errorf("%w: %s", hub.ErrRoomNotFound, lb.Code())
			}
			return err
		}
		c.bind(ctx, lb)
		return nil
	}

	cmd, ok := toEngineCommand(cm)
	if !ok {
		return ErrUnknownMessage
	}
	if c.room == nil || (cm.RoomCode != "" && hub.NormalizeCode(cm.RoomCode) != c.room.Code()) {
		return ErrNotInRoom
	}
	if err := c.room.Send(ctx, room.FromClient{ClientID: c.id, Cmd: cmd}); err != nil {
		if errors.Is(err, room.ErrRoomClosed) {
			return ErrNotInRoom
		}
		return err
	}
	return nil
}

func (c *client) bind(ctx context.Context, lb *room.Room) {
	c.room = lb
	c.log = c.log.With(zap.String("room", lb.Code()))
	c.log.Debug("bound to room")
	go c.writeLoop(ctx)
}

// writeLoop forwards the room's messages in order. The room closes the
// outbox when it drops us or stops, and then the connection goes too.
func (c *client) writeLoop(ctx context.Context) {
	for out := range c.out {
		if err := c.write(ctx, c.encode(out)); err != nil {
			c.log.Debug("write failed", zap.Error(err))
		}
	}
	c.conn.Close(websocket.StatusGoingAway, "room closed")
}

func (c *client) encode(out room.Outbound) types.ServerMessage {
	switch out.Type {
	case room.TypeRoomCreated:
		return types.ServerMessage{
			Type:    out.Type,
			Version: out.Version,
			Data:    types.RoomCreated{Code: out.Code, PlayerID: c.id, Players: types.PlayersFrom(out.View)},
		}
	case room.TypeError:
		return types.ServerMessage{Type: types.MsgError, Error: errorBody(out.Err)}
	default:
		return types.ServerMessage{
			Type:    out.Type,
			Version: out.Version,
			Data:    types.EventPayload(engine.EventType(out.Type), out.Code, out.View),
		}
	}
}

func (c *client) fail(ctx context.Context, err error) {
	c.log.Debug("request failed", zap.Error(err))
	_ = c.write(ctx, types.ServerMessage{Type: types.MsgError, Error: errorBody(err)})
}

func (c *client) write(ctx context.Context, msg types.ServerMessage) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.conn, msg)
}

func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case types.MsgStartGame:
		return engine.Command{Type: engine.CmdStartGame}, true
	case types.MsgRollDice:
		return engine.Command{Type: engine.CmdRollDice, KeptIndices: m.KeptIndices}, true
	case types.MsgSubmitScore:
		return engine.Command{Type: engine.CmdSubmitScore, Category: m.Category}, true
	default:
		return engine.Command{}, false
	}
}
