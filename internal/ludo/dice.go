package ludo

import "math/rand/v2"

// Dice produces die values for the turn controller. The default is a uniform
// 1-6 roller; tests substitute a scripted implementation via WithDice.
type Dice interface {
	Roll() int
}

type randDice struct{}

func (randDice) Roll() int {
	return rand.IntN(6) + 1
}
