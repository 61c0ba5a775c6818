package game

import (
	"fmt"
	"math/rand/v2"
)

// Roller is the randomness a pure resolver needs.
type Roller interface {
	Float64() float64
	Range(lo, hi int) int
}

// Dice is the single random source of a game. Its state travels with saves so
// a restored game replays identically.
type Dice struct {
	src *rand.PCG
	r   *rand.Rand
}

func NewDice(seed uint64) *Dice {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Dice{src: src, r: rand.New(src)}
}

func (d *Dice) Float64() float64 {
	return d.r.Float64()
}

// Range returns a uniform int in [lo, hi]; the bounds may be given in either order.
func (d *Dice) Range(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + d.r.IntN(hi-lo+1)
}

func (d *Dice) Range64(lo, hi int64) int64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + d.r.Int64N(hi-lo+1)
}

func (d *Dice) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return d.r.Float64() < p
}

// Pick returns an index chosen with probability proportional to its weight.
func (d *Dice) Pick(weights []int64) int {
	var total int64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	roll := d.r.Int64N(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if roll < w {
			return i
		}
		roll -= w
	}
	return len(weights) - 1
}

// Read fills p from the game's random stream so ids drawn through it replay
// with the seed.
func (d *Dice) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := d.r.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}

func (d *Dice) MarshalBinary() ([]byte, error) {
	return d.src.MarshalBinary()
}

func (d *Dice) UnmarshalBinary(data []byte) error {
	if err := d.src.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("restore dice: %w", err)
	}
	return nil
}
