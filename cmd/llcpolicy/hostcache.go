package main

import (
	"github.com/sarchlab/llcpolicy/replacement"
	"github.com/sarchlab/llcpolicy/trace"
)

const log2BlockSize = 6

// A hostCache is the minimal tag array needed to turn a raw access stream
// into the hit/miss outcomes the engine consumes. It models occupancy only;
// data and timing belong to a real simulator.
type hostCache struct {
	numSets int
	sets    [][]replacement.Line
}

func newHostCache(numSets, numWays int) *hostCache {
	c := &hostCache{
		numSets: numSets,
		sets:    make([][]replacement.Line, numSets),
	}

	for i := range c.sets {
		c.sets[i] = make([]replacement.Line, numWays)
	}

	return c
}

func (c *hostCache) setIndex(addr uint64) int {
	return int((addr >> log2BlockSize) % uint64(c.numSets))
}

func (c *hostCache) lookup(set int, addr uint64) (int, bool) {
	tag := addr >> log2BlockSize
	for way, line := range c.sets[set] {
		if line.Valid && line.Address>>log2BlockSize == tag {
			return way, true
		}
	}

	return 0, false
}

// access runs one record through the FindVictim/Update contract.
func (c *hostCache) access(engine *replacement.Engine, rec trace.Record) {
	set := c.setIndex(rec.Address)

	if way, hit := c.lookup(set, rec.Address); hit {
		engine.Update(set, way, rec.Address, rec.PC, 0, rec.Type, true)
		return
	}

	victim := engine.FindVictim(set, c.sets[set], rec.PC, rec.Address, rec.Type)
	if victim.Bypass {
		engine.RecordBypass(set, rec.Address, rec.PC, rec.Type)
		return
	}

	victimAddr := c.sets[set][victim.Way].Address
	c.sets[set][victim.Way] = replacement.Line{Valid: true, Address: rec.Address}

	engine.Update(set, victim.Way, rec.Address, rec.PC, victimAddr,
		rec.Type, false)
}
