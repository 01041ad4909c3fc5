package answer

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Picker chooses among equivalent phrasings. A fixed seed makes the choice
// reproducible.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker creates a picker. Seed 0 seeds from the clock.
func NewPicker(seed uint64) *Picker {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Picker{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// Pick returns one of options, or "" when there are none
func (p *Picker) Pick(options []string) string {
	switch len(options) {
	case 0:
		return ""
	case 1:
		return options[0]
	}
	p.mu.Lock()
	i := p.rng.IntN(len(options))
	p.mu.Unlock()
	return options[i]
}
