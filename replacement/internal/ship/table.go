// Package ship implements signature-based hit prediction. A cheap hash of
// the requesting PC indexes a table of saturating outcome counters that are
// trained on hits and on evictions that saw no reuse.
package ship

const (
	ctrMax  = 3
	neutral = 1
	hotMin  = 2
)

// A Prediction summarizes the outcome counter of one signature.
type Prediction int

const (
	// PredictNeutral means the signature has shown no strong bias.
	PredictNeutral Prediction = iota

	// PredictReuse means blocks filled under this signature tend to be hit
	// again and deserve a near-immediate insertion.
	PredictReuse

	// PredictDead means blocks filled under this signature tend to leave the
	// cache untouched and should be inserted at the distant end.
	PredictDead
)

// A Table is the shared outcome table. Signature collisions are accepted;
// the table is far smaller than the PC space.
type Table struct {
	sigBits     int
	mask        uint64
	decayPeriod uint64

	ctr   []uint8
	fills uint64
}

// NewTable creates an outcome table indexed by sigBits-wide signatures.
// Every decayPeriod fills, all counters decay by one toward zero so the
// table tracks phase changes. A decayPeriod of 0 disables decay.
func NewTable(sigBits int, decayPeriod uint64) *Table {
	t := &Table{
		sigBits:     sigBits,
		mask:        (1 << sigBits) - 1,
		decayPeriod: decayPeriod,
	}

	t.Reset()

	return t
}

// Reset restores every counter to the neutral midpoint.
func (t *Table) Reset() {
	t.ctr = make([]uint8, 1<<t.sigBits)
	for i := range t.ctr {
		t.ctr[i] = neutral
	}

	t.fills = 0
}

// Signature hashes a PC into a table index. The hash is stateless: the same
// PC always produces the same signature within a run.
func (t *Table) Signature(pc uint64) uint16 {
	return uint16((pc >> 2 ^ pc >> 8 ^ pc >> 14) & t.mask)
}

// OnHit increments the outcome counter of a signature, saturating.
func (t *Table) OnHit(sig uint16) {
	if t.ctr[sig] < ctrMax {
		t.ctr[sig]++
	}
}

// OnEvictWithoutReuse decrements the outcome counter of a signature,
// saturating at zero.
func (t *Table) OnEvictWithoutReuse(sig uint16) {
	if t.ctr[sig] > 0 {
		t.ctr[sig]--
	}
}

// OnFill counts one fill and runs table decay when the period elapses.
func (t *Table) OnFill() {
	t.fills++
	if t.decayPeriod != 0 && t.fills%t.decayPeriod == 0 {
		t.decay()
	}
}

func (t *Table) decay() {
	for i := range t.ctr {
		if t.ctr[i] > 0 {
			t.ctr[i]--
		}
	}
}

// Predict classifies the signature from its counter value.
func (t *Table) Predict(sig uint16) Prediction {
	switch {
	case t.ctr[sig] >= hotMin:
		return PredictReuse
	case t.ctr[sig] == 0:
		return PredictDead
	default:
		return PredictNeutral
	}
}

// Counter exposes the raw counter value of a signature.
func (t *Table) Counter(sig uint16) uint8 {
	return t.ctr[sig]
}

// HotCount returns the number of signatures currently predicting reuse.
func (t *Table) HotCount() int {
	n := 0
	for _, c := range t.ctr {
		if c >= hotMin {
			n++
		}
	}

	return n
}
