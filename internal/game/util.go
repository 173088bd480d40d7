package game

import (
	"math"
	"math/rand/v2"
)

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Rand is the run's random source. Each Game owns one so that a run is
// reproducible from its seed and a fixed sequence of deltas.
type Rand struct {
	*rand.Rand
}

// NewRand seeds a PCG generator. A zero seed picks a random one.
func NewRand(seed uint64) *Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Rand{rand.New(rand.NewPCG(seed, seed))}
}

// Range returns a value in [min, max)
func (r *Rand) Range(min, max float64) float64 {
	return min + r.Float64()*(max-min)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// IDSeq hands out entity IDs for one run
type IDSeq struct {
	n uint64
}

func (s *IDSeq) Next() uint64 {
	s.n++
	return s.n
}

func (s *IDSeq) Reset() { s.n = 0 }
