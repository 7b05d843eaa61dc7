package engine

import (
	"errors"
	"slices"
	"strings"
)

var ErrEmptyName = errors.New("player name must not be empty")
var ErrRoomNotJoinable = errors.New("room is not accepting players")
var ErrNotHost = errors.New("only the host can start the game")
var ErrNoPlayers = errors.New("no players in room")
var ErrGameAlreadyStarted = errors.New("game already started")
var ErrGameNotInProgress = errors.New("game is not in progress")
var ErrNotYourTurn = errors.New("not your turn")
var ErrNoRollsRemaining = errors.New("no rolls remaining")
var ErrInvalidDiceSelection = errors.New("invalid dice selection")
var ErrCategoryAlreadyScored = errors.New("category already scored")
var ErrUnknownCategory = errors.New("unknown category")
var ErrUnsupportedCommand = errors.New("unsupported command")

const (
	NumDice  = 5
	MaxRolls = 3
)

type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"
)

// Dice holds the five faces; 0 means not rolled yet.
type Dice [NumDice]int

type Player struct {
	ID        string
	Name      string
	Scorecard map[Category]int
	Total     int
}

func (p *Player) Complete() bool {
	return len(p.Scorecard) == len(Categories)
}

// Session is the authoritative state of one room. It is not safe for
// concurrent use; the owning room serializes every call.
type Session struct {
	phase     Phase
	players   []*Player
	dice      Dice
	kept      [NumDice]bool
	current   int
	rollsLeft int
	winner    int
	roller    Roller
}

func NewSession(roller Roller) *Session {
	if roller == nil {
		roller = NewRandomRoller()
	}
	return &Session{
		phase:     PhaseWaiting,
		rollsLeft: MaxRolls,
		winner:    -1,
		roller:    roller,
	}
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) NumPlayers() int { return len(s.players) }

// AddPlayer appends a player in join order.
func (s *Session) AddPlayer(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if s.phase != PhaseWaiting {
		return ErrRoomNotJoinable
	}
	s.players = append(s.players, &Player{ID: id, Name: name, Scorecard: map[Category]int{}})
	return nil
}

// Start moves the session into play. Only the first player (the host) may start.
func (s *Session) Start(requesterID string) error {
	if s.phase != PhaseWaiting {
		return ErrGameAlreadyStarted
	}
	if len(s.players) == 0 {
		return ErrNoPlayers
	}
	if s.players[0].ID != requesterID {
		return ErrNotHost
	}
	s.phase = PhaseInProgress
	s.current = 0
	s.beginTurn()
	return nil
}

// Roll re-rolls every die not listed in kept.
func (s *Session) Roll(requesterID string, kept []int) error {
	if err := s.checkTurn(requesterID); err != nil {
		return err
	}
	if s.rollsLeft <= 0 {
		return ErrNoRollsRemaining
	}
	var mask [NumDice]bool
	for _, i := range kept {
		if i < 0 || i >= NumDice || mask[i] {
			return ErrInvalidDiceSelection
		}
		mask[i] = true
	}

	for i := range s.dice {
		if !mask[i] {
			s.dice[i] = s.roller.Roll()
		}
	}
	s.kept = mask
	s.rollsLeft--
	return nil
}

// SubmitScore records the current dice in category for the current player
// and passes the turn on, or finishes the game once every scorecard is full.
func (s *Session) SubmitScore(requesterID, category string) error {
	if err := s.checkTurn(requesterID); err != nil {
		return err
	}
	cat, err := ParseCategory(category)
	if err != nil {
		return err
	}
	p := s.players[s.current]
	if _, ok := p.Scorecard[cat]; ok {
		return ErrCategoryAlreadyScored
	}

	points := Score(cat, s.dice)
	p.Scorecard[cat] = points
	p.Total += points

	if s.allComplete() {
		s.phase = PhaseFinished
		s.winner = s.leader()
		s.kept = [NumDice]bool{}
		return nil
	}

	s.advanceTurn()
	return nil
}

func (s *Session) checkTurn(requesterID string) error {
	if s.phase != PhaseInProgress {
		return ErrGameNotInProgress
	}
	if s.players[s.current].ID != requesterID {
		return ErrNotYourTurn
	}
	return nil
}

func (s *Session) allComplete() bool {
	return !slices.ContainsFunc(s.players, func(p *Player) bool { return !p.Complete() })
}

// leader returns the index of the highest total. Ties go to the player who
// joined first.
func (s *Session) leader() int {
	best := 0
	for i, p := range s.players {
		if p.Total > s.players[best].Total {
			best = i
		}
	}
	return best
}
