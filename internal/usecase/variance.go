package usecase

import (
	"math/rand/v2"
	"sync"
)

const (
	MinVariance = 0.85
	MaxVariance = 1.15
)

// VarianceSource draws the mining-luck factor applied to an estimate.
type VarianceSource interface {
	Variance() float64
}

// RandomVariance draws uniformly from [MinVariance, MaxVariance).
type RandomVariance struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomVariance seeds the generator with seed, or with system entropy when seed is 0.
func NewRandomVariance(seed uint64) *RandomVariance {
	var src rand.Source
	if seed == 0 {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	} else {
		src = rand.NewPCG(seed, seed)
	}
	return &RandomVariance{rng: rand.New(src)}
}

func (v *RandomVariance) Variance() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return MinVariance + v.rng.Float64()*(MaxVariance-MinVariance)
}
