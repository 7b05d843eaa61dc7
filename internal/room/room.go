package room

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/yahtzee-backend/internal/engine"
)

var ErrRoomClosed = errors.New("room closed")

const (
	TypeRoomCreated = "room_created"
	TypeError       = "error"
)

type Msg interface{ isRoomMsg() }

type FromClient struct {
	ClientID string
	Cmd      engine.Command
}

func (FromClient) isRoomMsg() {}

// Join seats a new player and binds their outbox. Reply gets nil on success.
type Join struct {
	ClientID string
	Name     string
	Outbox   chan Outbound
	Reply    chan error
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type expire struct{ gen int }

func (expire) isRoomMsg() {}

// Outbound is one message for one bound connection.
type Outbound struct {
	Type    string
	Version int
	Code    string
	View    engine.View
	Err     error
}

type View struct {
	Code       string
	Version    int
	NumClients int
	State      engine.View
}

// Host is the creator of a room; it is bound from the start.
type Host struct {
	ID     string
	Name   string
	Outbox chan Outbound
}

type Options struct {
	// IdleTTL is how long the room lives with no bound connection.
	IdleTTL time.Duration
	Roller  engine.Roller
	Logger  *zap.Logger
	// OnClose runs once, on its own goroutine, after the room stops.
	OnClose func(code string)
	// OnFinish runs on its own goroutine when the game ends.
	OnFinish func(code string, final engine.View)
}

type Room struct {
	code    string
	inbox   chan Msg
	session *engine.Session
	version int
	clients map[string]chan Outbound
	opts    Options
	log     *zap.Logger
	idleGen int
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, code string, host Host, opts Options) (*Room, error) {
	session := engine.NewSession(opts.Roller)
	if err := session.AddPlayer(host.ID, host.Name); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		code:    code,
		inbox:   make(chan Msg, 64),
		session: session,
		clients: map[string]chan Outbound{host.ID: host.Outbox},
		opts:    opts,
		log:     opts.Logger.With(zap.String("room", code)),
		ctx:     ctx,
		cancel:  cancel,
	}
	r.sendTo(host.ID, Outbound{Type: TypeRoomCreated, Code: code, View: session.View()})
	r.log.Info("room created", zap.String("host", host.ID))

	go r.loop()
	return r, nil
}

func (r *Room) Code() string { return r.code }

// Send queues m for the room. It fails with ErrRoomClosed once the room has stopped.
func (r *Room) Send(ctx context.Context, m Msg) error {
	select {
	case <-r.ctx.Done():
		return ErrRoomClosed
	default:
	}
	select {
	case r.inbox <- m:
		return nil
	case <-r.ctx.Done():
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join seats name under clientID and binds outbox to the room's broadcasts.
func (r *Room) Join(ctx context.Context, clientID, name string, outbox chan Outbound) error {
	reply := make(chan error, 1)
	if err := r.Send(ctx, Join{ClientID: clientID, Name: name, Outbox: outbox, Reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-r.ctx.Done():
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := r.Send(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-r.ctx.Done():
		return View{}, ErrRoomClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// Done is closed after the room stops.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			bound := len(r.clients)
			switch msg := m.(type) {
			case Join:
				r.join(msg)

			case Leave:
				if _, ok := r.clients[msg.ClientID]; ok {
					close(r.clients[msg.ClientID])
					delete(r.clients, msg.ClientID)
					r.log.Debug("client left", zap.String("client", msg.ClientID))
				}

			case FromClient:
				r.apply(msg)

			case GetState:
				msg.Reply <- View{
					Code:       r.code,
					Version:    r.version,
					NumClients: len(r.clients),
					State:      r.session.View(),
				}

			case expire:
				if msg.gen == r.idleGen && len(r.clients) == 0 {
					r.log.Info("room expired")
					r.shutdown()
					return
				}

			case Shutdown:
				r.shutdown()
				return
			}

			if bound > 0 && r.abandoned() {
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) join(msg Join) {
	evt, err := engine.Apply(r.session, engine.Command{
		Type:       engine.CmdJoinRoom,
		PlayerID:   msg.ClientID,
		PlayerName: msg.Name,
	})
	if err != nil {
		msg.Reply <- err
		return
	}
	r.clients[msg.ClientID] = msg.Outbox
	r.idleGen++
	msg.Reply <- nil
	r.log.Info("player joined", zap.String("client", msg.ClientID), zap.Int("players", len(evt.View.Players)))
	r.publish(evt)
}

func (r *Room) apply(msg FromClient) {
	if _, ok := r.clients[msg.ClientID]; !ok {
		// Dropped or never bound; there is no outbox to report to.
		r.log.Debug("command from unbound client",
			zap.String("client", msg.ClientID),
			zap.String("cmd", string(msg.Cmd.Type)))
		return
	}
	cmd := msg.Cmd
	cmd.PlayerID = msg.ClientID

	evt, err := engine.Apply(r.session, cmd)
	if err != nil {
		r.log.Debug("command rejected",
			zap.String("client", msg.ClientID),
			zap.String("cmd", string(cmd.Type)),
			zap.Error(err))
		r.sendTo(msg.ClientID, Outbound{Type: TypeError, Code: r.code, Err: err})
		return
	}
	r.publish(evt)

	switch evt.Type {
	case engine.EvtGameStarted:
		r.log.Info("game started", zap.Int("players", len(evt.View.Players)))
	case engine.EvtGameOver:
		r.log.Info("game over", zap.String("winner", evt.View.Winner.ID), zap.Int("score", evt.View.Winner.Total))
		if r.opts.OnFinish != nil {
			go r.opts.OnFinish(r.code, evt.View)
		}
	}
}

func (r *Room) publish(evt engine.Event) {
	r.version++
	r.broadcast(Outbound{Type: string(evt.Type), Version: r.version, Code: r.code, View: evt.View})
}

// abandoned reports whether the room should stop now that the last
// connection may have gone. A finished room goes away at once; any other
// room gets IdleTTL for someone to join.
func (r *Room) abandoned() bool {
	if len(r.clients) > 0 {
		return false
	}
	if r.session.Phase() == engine.PhaseFinished {
		return true
	}
	if r.opts.IdleTTL > 0 {
		r.idleGen++
		gen := r.idleGen
		time.AfterFunc(r.opts.IdleTTL, func() {
			select {
			case r.inbox <- expire{gen: gen}:
			case <-r.ctx.Done():
			}
		})
	}
	return false
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch) // Tell client no more messages
		delete(r.clients, id)
	}
	if r.ctx.Err() == nil && r.opts.OnClose != nil {
		go r.opts.OnClose(r.code)
	}
	r.cancel()
}

func (r *Room) sendTo(id string, out Outbound) {
	ch, ok := r.clients[id]
	if !ok {
		return
	}
	select {
	case ch <- out:
	default:
		r.drop(id)
	}
}

func (r *Room) broadcast(out Outbound) {
	for id, ch := range r.clients {
		select {
		case ch <- out:
			//ok
		default:
			// Client is slow/full - drop them.
			r.drop(id)
		}
	}
}

func (r *Room) drop(id string) {
	close(r.clients[id])
	delete(r.clients, id)
	r.log.Warn("dropped slow client", zap.String("client", id))
}

// Inbox exposes the inbox so tests or the ws layer can send messages.
func (r *Room) Inbox() chan<- Msg { return r.inbox }
