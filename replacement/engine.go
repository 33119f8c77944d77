// Package replacement implements last-level-cache replacement policies as
// composable engines. An Engine combines RRIP aging with optional
// signature-based hit prediction, streaming detection, dead-block
// approximation, and set dueling, behind the three entry points a cache
// model needs: Reset, FindVictim, and Update.
package replacement

import (
	"log"
	"math/rand"

	"github.com/sarchlab/llcpolicy/replacement/internal/deadblock"
	"github.com/sarchlab/llcpolicy/replacement/internal/dueling"
	"github.com/sarchlab/llcpolicy/replacement/internal/rrip"
	"github.com/sarchlab/llcpolicy/replacement/internal/ship"
	"github.com/sarchlab/llcpolicy/replacement/internal/stream"
)

// An InsertionPolicy names the fill depth rule used when no predictor
// overrides it.
type InsertionPolicy int

const (
	// PolicySRRIP inserts at a fixed medium-distant RRPV.
	PolicySRRIP InsertionPolicy = iota

	// PolicyBRRIP inserts at the distant RRPV, with a small probability of a
	// medium-distant insertion instead.
	PolicyBRRIP

	// PolicyLIP always inserts at the distant RRPV.
	PolicyLIP

	// PolicyBIP inserts at the distant RRPV, with a small probability of a
	// near-immediate insertion instead.
	PolicyBIP
)

// An Engine owns all replacement state for one cache. It is not safe for
// concurrent use; the simulator is expected to drive it strictly
// sequentially, one FindVictim/Update pair per access.
type Engine struct {
	name    string
	numSets int
	numWays int
	rrpvMax uint8

	meta     *rrip.Meta
	outcomes *ship.Table
	streams  *stream.Detector
	liveness *deadblock.Predictor
	selector *dueling.Selector

	policyA        InsertionPolicy
	policyB        InsertionPolicy
	bypassOnStream bool
	nearMRUOdds    int
	rng            *rand.Rand
	logger         *log.Logger

	accesses uint64
	hits     uint64
	misses   uint64
	fills    uint64
	bypasses uint64
}

// Name returns the name given to the engine at build time.
func (e *Engine) Name() string {
	return e.name
}

// NumSets returns the number of sets the engine was built for.
func (e *Engine) NumSets() int {
	return e.numSets
}

// NumWays returns the associativity the engine was built for.
func (e *Engine) NumWays() int {
	return e.numWays
}

// Reset clears all tables back to their neutral values: every line distant,
// outcome counters at the midpoint, the policy selector at its midpoint.
// Leader-set roles are assigned at build time and survive a reset.
func (e *Engine) Reset() {
	e.meta.Reset()

	if e.outcomes != nil {
		e.outcomes.Reset()
	}

	if e.streams != nil {
		e.streams.Reset()
	}

	if e.liveness != nil {
		e.liveness.Reset()
	}

	if e.selector != nil {
		e.selector.Reset()
	}

	e.accesses = 0
	e.hits = 0
	e.misses = 0
	e.fills = 0
	e.bypasses = 0
}

// FindVictim selects the way a miss in the set should fill. Invalid ways
// are returned directly. Otherwise the set is scanned for a saturated RRPV,
// aging all lines and retrying until one saturates; lines predicted dead
// win ties. The aging writes are intentional and visible to the caller.
//
// Under a detected streaming phase, engines built with bypass enabled
// report Bypass instead; the host should drop the fill.
func (e *Engine) FindVictim(
	set int,
	lines []Line,
	pc, addr uint64,
	accessType AccessType,
) Victim {
	for way, line := range lines {
		if !line.Valid {
			return Victim{Way: way}
		}
	}

	if e.bypassOnStream && e.streams != nil && e.streams.Streaming(set) {
		e.bypasses++

		way, ok := e.meta.DistantWay(set)
		if !ok {
			way = 0
		}

		return Victim{Way: way, Bypass: true}
	}

	for pass := uint8(0); pass <= e.rrpvMax; pass++ {
		if way, ok := e.deadDistantWay(set); ok {
			return Victim{Way: way}
		}

		if way, ok := e.meta.DistantWay(set); ok {
			return Victim{Way: way}
		}

		e.meta.Age(set)
	}

	if way, ok := e.meta.DistantWay(set); ok {
		return Victim{Way: way}
	}

	// The aging loop saturates at least one line within rrpvMax passes, so
	// this is unreachable unless the metadata was corrupted externally.
	if e.logger != nil {
		e.logger.Printf("%s: victim scan did not converge in set %d", e.name, set)
	}

	return Victim{Way: 0}
}

// deadDistantWay looks for an eviction candidate that is both at the
// distant RRPV and predicted dead.
func (e *Engine) deadDistantWay(set int) (int, bool) {
	if e.liveness == nil {
		return 0, false
	}

	for way := 0; way < e.numWays; way++ {
		if e.meta.RRPV(set, way) == e.rrpvMax && e.liveness.Dead(set, way) {
			return way, true
		}
	}

	return 0, false
}

// Update applies one access outcome to all predictors and writes the final
// RRPV of the touched line. The streaming detector is updated first so the
// insertion decision in the same call sees the current phase.
func (e *Engine) Update(
	set, way int,
	addr, pc, victimAddr uint64,
	accessType AccessType,
	hit bool,
) {
	e.accesses++

	if e.streams != nil {
		e.streams.Observe(set, addr)
	}

	if e.liveness != nil {
		e.liveness.Tick()
	}

	if hit {
		e.recordHit(set, way)
		return
	}

	e.recordFill(set, way, pc)
}

func (e *Engine) recordHit(set, way int) {
	e.hits++

	e.meta.Promote(set, way)
	e.meta.RecordReuse(set, way)

	if e.outcomes != nil {
		e.outcomes.OnHit(e.meta.Signature(set, way))
	}

	if e.liveness != nil {
		e.liveness.OnHit(set, way)
	}

	if e.selector != nil {
		e.selector.OnHit(set)
	}
}

func (e *Engine) recordFill(set, way int, pc uint64) {
	e.misses++

	if e.outcomes != nil && e.meta.Filled(set, way) && !e.meta.Reused(set, way) {
		e.outcomes.OnEvictWithoutReuse(e.meta.Signature(set, way))
	}

	var sig uint16
	if e.outcomes != nil {
		sig = e.outcomes.Signature(pc)
	}

	depth := e.insertionDepth(set, sig)

	e.meta.SetRRPV(set, way, depth)
	e.meta.SetSignature(set, way, sig)
	e.meta.RecordFill(set, way)
	e.fills++

	if e.outcomes != nil {
		e.outcomes.OnFill()
	}

	if e.liveness != nil {
		if depth == 0 {
			e.liveness.MarkLive(set, way)
		} else {
			e.liveness.OnFill(set, way)
		}
	}
}

// insertionDepth combines the streaming state, the dueling choice, and the
// signature prediction into the RRPV a fill should start at. Streaming
// always wins; a confident signature overrides the dueling base depth.
func (e *Engine) insertionDepth(set int, sig uint16) uint8 {
	if e.streams != nil && e.streams.Streaming(set) {
		return e.rrpvMax
	}

	policy := e.policyA
	if e.selector != nil && !e.selector.PreferA(set) {
		policy = e.policyB
	}

	depth := e.baseDepth(policy)

	if e.outcomes != nil {
		switch e.outcomes.Predict(sig) {
		case ship.PredictReuse:
			depth = 0
		case ship.PredictDead:
			depth = e.rrpvMax
		case ship.PredictNeutral:
		}
	}

	return depth
}

func (e *Engine) baseDepth(policy InsertionPolicy) uint8 {
	switch policy {
	case PolicySRRIP:
		return e.rrpvMax - 1
	case PolicyBRRIP:
		if e.rng.Intn(e.nearMRUOdds) == 0 {
			return e.rrpvMax - 1
		}

		return e.rrpvMax
	case PolicyLIP:
		return e.rrpvMax
	case PolicyBIP:
		if e.rng.Intn(e.nearMRUOdds) == 0 {
			return 0
		}

		return e.rrpvMax
	}

	return e.rrpvMax - 1
}

// RecordBypass tells the engine a fill was dropped after FindVictim
// reported a bypass. The streaming detector and decay clocks still observe
// the access; no line metadata changes.
func (e *Engine) RecordBypass(
	set int,
	addr, pc uint64,
	accessType AccessType,
) {
	e.accesses++
	e.misses++

	if e.streams != nil {
		e.streams.Observe(set, addr)
	}

	if e.liveness != nil {
		e.liveness.Tick()
	}
}

// RRPV exposes the current re-reference prediction value of a line.
func (e *Engine) RRPV(set, way int) uint8 {
	return e.meta.RRPV(set, way)
}

// Streaming reports whether the set is currently flagged as streaming.
func (e *Engine) Streaming(set int) bool {
	return e.streams != nil && e.streams.Streaming(set)
}

// Stats is an aggregate snapshot of the engine's counters and tables,
// suitable for heartbeat recording.
type Stats struct {
	Accesses uint64
	Hits     uint64
	Misses   uint64
	Fills    uint64
	Bypasses uint64

	HotSignatures int
	StreamingSets int
	DeadLines     int
	PSEL          uint16
}

// Stats takes a snapshot of the engine state.
func (e *Engine) Stats() Stats {
	s := Stats{
		Accesses: e.accesses,
		Hits:     e.hits,
		Misses:   e.misses,
		Fills:    e.fills,
		Bypasses: e.bypasses,
	}

	if e.outcomes != nil {
		s.HotSignatures = e.outcomes.HotCount()
	}

	if e.streams != nil {
		s.StreamingSets = e.streams.StreamingSetCount()
	}

	if e.liveness != nil {
		s.DeadLines = e.liveness.DeadCount()
	}

	if e.selector != nil {
		s.PSEL = e.selector.PSEL()
	}

	return s
}
