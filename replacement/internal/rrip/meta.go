// Package rrip keeps the per-line replacement metadata of a set-associative
// cache and implements RRIP-style victim scanning over it.
package rrip

// A Meta holds the re-reference prediction values of every line in the
// cache, together with the PC signature that filled each line and a flag
// that records whether the line has been reused since its fill. All three
// arrays are flat, indexed by set*numWays+way.
type Meta struct {
	numSets int
	numWays int
	rrpvMax uint8

	rrpv   []uint8
	sig    []uint16
	filled []bool
	reused []bool
}

// NewMeta creates the metadata store for a cache of the given geometry.
// rrpvMax is the saturation value of the RRPV field, 3 for a 2-bit field.
func NewMeta(numSets, numWays int, rrpvMax uint8) *Meta {
	m := &Meta{
		numSets: numSets,
		numWays: numWays,
		rrpvMax: rrpvMax,
	}

	m.Reset()

	return m
}

// Reset marks every line distant and clears the signature and reuse state.
func (m *Meta) Reset() {
	numLines := m.numSets * m.numWays
	m.rrpv = make([]uint8, numLines)
	m.sig = make([]uint16, numLines)
	m.filled = make([]bool, numLines)
	m.reused = make([]bool, numLines)

	for i := range m.rrpv {
		m.rrpv[i] = m.rrpvMax
	}
}

// NumSets returns the number of sets in the cache.
func (m *Meta) NumSets() int {
	return m.numSets
}

// NumWays returns the associativity of the cache.
func (m *Meta) NumWays() int {
	return m.numWays
}

// RRPVMax returns the saturation value of the RRPV field.
func (m *Meta) RRPVMax() uint8 {
	return m.rrpvMax
}

func (m *Meta) index(set, way int) int {
	return set*m.numWays + way
}

// RRPV returns the re-reference prediction value of a line.
func (m *Meta) RRPV(set, way int) uint8 {
	return m.rrpv[m.index(set, way)]
}

// SetRRPV writes the re-reference prediction value of a line, clamping to
// the saturation value.
func (m *Meta) SetRRPV(set, way int, v uint8) {
	if v > m.rrpvMax {
		v = m.rrpvMax
	}

	m.rrpv[m.index(set, way)] = v
}

// Promote marks a line near-immediate re-reference.
func (m *Meta) Promote(set, way int) {
	m.rrpv[m.index(set, way)] = 0
}

// Age increments the RRPV of every line in the set that has not yet
// saturated.
func (m *Meta) Age(set int) {
	base := set * m.numWays
	for way := 0; way < m.numWays; way++ {
		if m.rrpv[base+way] < m.rrpvMax {
			m.rrpv[base+way]++
		}
	}
}

// DistantWay returns the lowest-indexed way in the set whose RRPV has
// saturated. The second return value is false if no such way exists.
func (m *Meta) DistantWay(set int) (int, bool) {
	base := set * m.numWays
	for way := 0; way < m.numWays; way++ {
		if m.rrpv[base+way] == m.rrpvMax {
			return way, true
		}
	}

	return 0, false
}

// Signature returns the signature stored with a line at fill time.
func (m *Meta) Signature(set, way int) uint16 {
	return m.sig[m.index(set, way)]
}

// SetSignature stores the fill signature of a line.
func (m *Meta) SetSignature(set, way int, sig uint16) {
	m.sig[m.index(set, way)] = sig
}

// Filled reports whether the slot has ever held a block. Training on an
// eviction is only meaningful once the slot has been filled.
func (m *Meta) Filled(set, way int) bool {
	return m.filled[m.index(set, way)]
}

// Reused reports whether the resident block has been hit since its fill.
func (m *Meta) Reused(set, way int) bool {
	return m.reused[m.index(set, way)]
}

// RecordFill marks the slot filled and clears its reuse flag.
func (m *Meta) RecordFill(set, way int) {
	i := m.index(set, way)
	m.filled[i] = true
	m.reused[i] = false
}

// RecordReuse marks the resident block reused.
func (m *Meta) RecordReuse(set, way int) {
	m.reused[m.index(set, way)] = true
}
