package engine

// Turns rotate in join order and never skip; scoring outcome has no effect
// on who plays next.

func (s *Session) advanceTurn() {
	s.current = (s.current + 1) % len(s.players)
	s.beginTurn()
}

func (s *Session) beginTurn() {
	s.kept = [NumDice]bool{}
	s.rollsLeft = MaxRolls
	for i := range s.dice {
		s.dice[i] = s.roller.Roll()
	}
}

// CurrentPlayerID is empty unless the game is in progress.
func (s *Session) CurrentPlayerID() string {
	if s.phase != PhaseInProgress {
		return ""
	}
	return s.players[s.current].ID
}
