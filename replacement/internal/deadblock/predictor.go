// Package deadblock approximates whether each resident block will be reused
// before its eviction. Unlike the PC-level outcome table, the counters here
// describe the specific block occupying a slot.
package deadblock

// Per-line liveness counter values. Zero means the block is predicted dead.
const (
	ctrMax   = 3
	ctrLive  = 2
	ctrFresh = 1
)

// A Predictor keeps a 2-bit liveness counter per line, indexed by
// set*numWays+way. All counters decay periodically so stale liveness does
// not pin blocks forever.
type Predictor struct {
	numSets     int
	numWays     int
	decayPeriod uint64

	ctr      []uint8
	accesses uint64
}

// NewPredictor creates a predictor for the given cache geometry. Every
// decayPeriod accesses, all nonzero counters are decremented. A period of 0
// disables decay.
func NewPredictor(numSets, numWays int, decayPeriod uint64) *Predictor {
	p := &Predictor{
		numSets:     numSets,
		numWays:     numWays,
		decayPeriod: decayPeriod,
	}

	p.Reset()

	return p
}

// Reset restores every liveness counter to the fresh-fill value.
func (p *Predictor) Reset() {
	p.ctr = make([]uint8, p.numSets*p.numWays)
	for i := range p.ctr {
		p.ctr[i] = ctrFresh
	}

	p.accesses = 0
}

func (p *Predictor) index(set, way int) int {
	return set*p.numWays + way
}

// Tick counts one access and decays all counters when the period elapses.
func (p *Predictor) Tick() {
	p.accesses++
	if p.decayPeriod != 0 && p.accesses%p.decayPeriod == 0 {
		p.decay()
	}
}

func (p *Predictor) decay() {
	for i := range p.ctr {
		if p.ctr[i] > 0 {
			p.ctr[i]--
		}
	}
}

// OnHit marks the resident block live.
func (p *Predictor) OnHit(set, way int) {
	p.ctr[p.index(set, way)] = ctrLive
}

// OnFill resets the slot for a newly inserted block.
func (p *Predictor) OnFill(set, way int) {
	p.ctr[p.index(set, way)] = ctrFresh
}

// MarkLive raises the slot to the live value, used when the insertion
// policy already predicts reuse for the incoming block.
func (p *Predictor) MarkLive(set, way int) {
	p.ctr[p.index(set, way)] = ctrLive
}

// Dead reports whether the block in the slot is predicted dead.
func (p *Predictor) Dead(set, way int) bool {
	return p.ctr[p.index(set, way)] == 0
}

// DeadCount returns the number of lines currently predicted dead.
func (p *Predictor) DeadCount() int {
	n := 0
	for _, c := range p.ctr {
		if c == 0 {
			n++
		}
	}

	return n
}
