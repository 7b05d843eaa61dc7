package engine

// PlayerView is a detached copy of a player safe to hand to other goroutines.
type PlayerView struct {
	ID        string
	Name      string
	Scorecard map[Category]int
	Total     int
}

type View struct {
	Phase       Phase
	Players     []PlayerView
	CurrentTurn string
	Dice        Dice
	Kept        []int
	RollsLeft   int
	Winner      *PlayerView
	Tied        bool
}

// View snapshots the session. Nothing in the result aliases session state.
func (s *Session) View() View {
	v := View{
		Phase:       s.phase,
		Players:     make([]PlayerView, 0, len(s.players)),
		CurrentTurn: s.CurrentPlayerID(),
		Dice:        s.dice,
		Kept:        []int{},
		RollsLeft:   s.rollsLeft,
	}
	for i, k := range s.kept {
		if k {
			v.Kept = append(v.Kept, i)
		}
	}
	for _, p := range s.players {
		v.Players = append(v.Players, viewOf(p))
	}

	if s.phase == PhaseFinished && s.winner >= 0 {
		w := v.Players[s.winner]
		v.Winner = &w
		for i, p := range v.Players {
			if i != s.winner && p.Total == w.Total {
				v.Tied = true
			}
		}
	}
	return v
}

func viewOf(p *Player) PlayerView {
	card := make(map[Category]int, len(p.Scorecard))
	for c, pts := range p.Scorecard {
		card[c] = pts
	}
	return PlayerView{ID: p.ID, Name: p.Name, Scorecard: card, Total: p.Total}
}
