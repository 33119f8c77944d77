// Package stream flags cache sets that are being walked with a constant
// address stride. Streaming sets see almost no reuse, so the engine inserts
// their fills at the distant end or bypasses them entirely.
package stream

const confidenceMax = 3

// A Detector tracks the last observed address and delta of every set and a
// small saturating confidence counter that rises while the delta repeats.
type Detector struct {
	numSets   int
	threshold uint8

	lastAddr   []uint64
	lastDelta  []int64
	confidence []uint8
	touched    []bool
}

// NewDetector creates a detector for numSets sets. A set is considered
// streaming once its confidence counter reaches threshold.
func NewDetector(numSets int, threshold uint8) *Detector {
	d := &Detector{
		numSets:   numSets,
		threshold: threshold,
	}

	d.Reset()

	return d
}

// Reset clears all per-set detector state.
func (d *Detector) Reset() {
	d.lastAddr = make([]uint64, d.numSets)
	d.lastDelta = make([]int64, d.numSets)
	d.confidence = make([]uint8, d.numSets)
	d.touched = make([]bool, d.numSets)
}

// Observe feeds one access to the detector. The very first access to a set
// only records the address; a delta of zero against an untouched slot must
// not count as a repeating stride.
func (d *Detector) Observe(set int, addr uint64) {
	if !d.touched[set] {
		d.touched[set] = true
		d.lastAddr[set] = addr

		return
	}

	delta := int64(addr) - int64(d.lastAddr[set])
	d.lastAddr[set] = addr

	if delta != 0 && delta == d.lastDelta[set] {
		if d.confidence[set] < confidenceMax {
			d.confidence[set]++
		}

		return
	}

	if d.confidence[set] > 0 {
		d.confidence[set]--
	}

	d.lastDelta[set] = delta
}

// Streaming reports whether the set is currently in a monotonic scan phase.
func (d *Detector) Streaming(set int) bool {
	return d.confidence[set] >= d.threshold
}

// Confidence exposes the raw confidence counter of a set.
func (d *Detector) Confidence(set int) uint8 {
	return d.confidence[set]
}

// StreamingSetCount returns how many sets are currently flagged streaming.
func (d *Detector) StreamingSetCount() int {
	n := 0
	for set := 0; set < d.numSets; set++ {
		if d.Streaming(set) {
			n++
		}
	}

	return n
}
