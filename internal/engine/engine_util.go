package engine

import (
	"math/rand/v2"
	"time"
)

// NewRand returns the picker used outside of tests.
func NewRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// fixedPicker replays a scripted sequence of draws, wrapping around.
type fixedPicker struct {
	draws []int
	next  int
}

func (p *fixedPicker) IntN(n int) int {
	if len(p.draws) == 0 {
		return 0
	}
	v := p.draws[p.next%len(p.draws)] % n
	p.next++
	return v
}

// Scripted returns a Picker yielding draws in order. Handy for deterministic rounds.
func Scripted(draws ...int) Picker {
	return &fixedPicker{draws: draws}
}
