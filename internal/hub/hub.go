package hub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/yahtzee-backend/internal/engine"
	"github.com/DoyleJ11/yahtzee-backend/internal/room"
)

var ErrRoomNotFound = errors.New("room not found")
var ErrHubClosed = errors.New("hub closed")

// maxCodeAttempts bounds the retry loop when generated codes collide.
const maxCodeAttempts = 100

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Host  room.Host
	Reply chan CreateResult
}

type CreateResult struct {
	Room *room.Room
	Err  error
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

// RemoveRoom drops Code only while it still maps to Room.
type RemoveRoom struct {
	Code string
	Room *room.Room
}

type CountRooms struct {
	Reply chan int
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (CountRooms) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Options struct {
	IdleTTL  time.Duration
	Roller   engine.Roller
	Logger   *zap.Logger
	NewCode  func() (string, error)
	OnFinish func(code string, final engine.View)
}

// Hub is the registry of live rooms. It is created empty and only holds
// rooms until they close themselves or the hub shuts down.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	opts   Options
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, opts Options) *Hub {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewCode == nil {
		opts.NewCode = GenerateCode
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		opts:   opts,
		log:    opts.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case h.inbox <- m:
		return nil
	case <-h.ctx.Done():
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Create opens a room under a fresh code with host seated and bound.
func (h *Hub) Create(ctx context.Context, host room.Host) (*room.Room, error) {
	reply := make(chan CreateResult, 1)
	if err := h.send(ctx, CreateRoom{Host: host, Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case res := <-reply:
		return res.Room, res.Err
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Find looks a room up by code, ignoring case.
func (h *Hub) Find(ctx context.Context, code string) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	if err := h.send(ctx, GetRoom{Code: code, Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case lb := <-reply:
		if lb == nil {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, NormalizeCode(code))
		}
		return lb, nil
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) Count(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if err := h.send(ctx, CountRooms{Reply: reply}); err != nil {
		return 0, err
	}
	select {
	case n := <-reply:
		return n, nil
	case <-h.ctx.Done():
		return 0, ErrHubClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (h *Hub) Shutdown() {
	select {
	case h.inbox <- ShutdownHub{}:
	case <-h.ctx.Done():
	}
}

// Done is closed once the hub has stopped.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			clear(h.rooms)
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				lb, err := h.create(msg.Host)
				msg.Reply <- CreateResult{Room: lb, Err: err}

			case GetRoom:
				msg.Reply <- h.rooms[NormalizeCode(msg.Code)] // May be nil

			case RemoveRoom:
				if h.rooms[msg.Code] == msg.Room {
					delete(h.rooms, msg.Code)
					h.log.Debug("room removed", zap.String("room", msg.Code), zap.Int("rooms", len(h.rooms)))
				}

			case CountRooms:
				msg.Reply <- len(h.rooms)

			case ShutdownHub:
				for _, lb := range h.rooms {
					_ = lb.Send(h.ctx, room.Shutdown{})
				}
				clear(h.rooms)
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) create(host room.Host) (*room.Room, error) {
	var code string
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return nil, errors.New("could not generate a free room code")
		}
		c, err := h.opts.NewCode()
		if err != nil {
			return nil, fmt.Errorf("generating room code: %w", err)
		}
		c = NormalizeCode(c)
		if h.rooms[c] == nil {
			code = c
			break
		}
		h.log.Debug("collision on code, regenerating", zap.String("code", c))
	}

	var lb *room.Room
	lb, err := room.New(h.ctx, code, host, room.Options{
		IdleTTL:  h.opts.IdleTTL,
		Roller:   h.opts.Roller,
		Logger:   h.log,
		OnFinish: h.opts.OnFinish,
		OnClose: func(code string) {
			_ = h.send(context.Background(), RemoveRoom{Code: code, Room: lb})
		},
	})
	if err != nil {
		return nil, err
	}
	h.rooms[code] = lb
	return lb, nil
}
