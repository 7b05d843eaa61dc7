package engine

import "math/rand/v2"

// Roller produces one die face in 1..6 per call.
type Roller interface {
	Roll() int
}

type RollerFunc func() int

func (f RollerFunc) Roll() int { return f() }

// NewRandomRoller draws uniformly from the runtime's shared source, which is
// safe to use from many rooms at once.
func NewRandomRoller() Roller {
	return RollerFunc(func() int { return rand.IntN(6) + 1 })
}
