package main

import (
	"io"
	"math/rand"

	"github.com/sarchlab/llcpolicy/replacement"
	"github.com/sarchlab/llcpolicy/trace"
)

// syntheticWorkload generates a mix of phases that exercise every predictor:
// tight loops over a hot working set, long constant-stride scans, and
// uniformly random pointer chasing. Phase lengths and addresses come from a
// private seeded source so runs are reproducible.
func syntheticWorkload(total uint64, seed int64) func() (trace.Record, error) {
	rng := rand.New(rand.NewSource(seed))

	const (
		phaseLoop = iota
		phaseScan
		phaseRandom
		numPhases
	)

	var (
		generated uint64
		remaining int
		phase     int

		loopBase uint64
		loopSize uint64
		scanNext uint64
	)

	return func() (trace.Record, error) {
		if generated >= total {
			return trace.Record{}, io.EOF
		}

		generated++

		if remaining == 0 {
			phase = rng.Intn(numPhases)
			remaining = 10000 + rng.Intn(50000)

			loopBase = uint64(rng.Intn(1<<20)) << 6
			loopSize = uint64(64 + rng.Intn(448))
			scanNext = uint64(rng.Intn(1<<26)) << 6
		}

		remaining--

		switch phase {
		case phaseLoop:
			addr := loopBase + uint64(rng.Intn(int(loopSize)))<<6
			return trace.Record{
				PC:      0x400000 + addr%17<<2,
				Address: addr,
				Type:    replacement.AccessLoad,
			}, nil
		case phaseScan:
			addr := scanNext
			scanNext += 64
			return trace.Record{
				PC:      0x500000,
				Address: addr,
				Type:    replacement.AccessLoad,
			}, nil
		default:
			addr := uint64(rng.Intn(1<<28)) << 6
			return trace.Record{
				PC:      0x600000 + uint64(rng.Intn(64))<<2,
				Address: addr,
				Type:    replacement.AccessLoad,
			}, nil
		}
	}
}
