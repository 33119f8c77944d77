package replacement_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/llcpolicy/replacement"
)

func allValid(n int) []replacement.Line {
	lines := make([]replacement.Line, n)
	for i := range lines {
		lines[i] = replacement.Line{Valid: true, Address: uint64(i) << 6}
	}

	return lines
}

var _ = Describe("Victim selection", func() {
	var engine *replacement.Engine

	BeforeEach(func() {
		engine = replacement.SRRIPBuilder().
			WithNumSets(4).
			WithNumWays(4).
			Build("LLC")
	})

	It("should return an invalid way before evicting", func() {
		lines := allValid(4)
		lines[2].Valid = false

		victim := engine.FindVictim(0, lines, 0x400, 0x1000, replacement.AccessLoad)

		Expect(victim.Way).To(Equal(2))
		Expect(victim.Bypass).To(BeFalse())
	})

	It("should pick the first distant way in way order", func() {
		victim := engine.FindVictim(0, allValid(4), 0x400, 0x1000,
			replacement.AccessLoad)

		Expect(victim.Way).To(Equal(0))
	})

	It("should age the set until a line saturates", func() {
		for way := 0; way < 4; way++ {
			engine.Update(1, way, uint64(way)<<6, 0x400, 0, replacement.AccessLoad, false)
			engine.Update(1, way, uint64(way)<<6, 0x400, 0, replacement.AccessLoad, true)
		}

		victim := engine.FindVictim(1, allValid(4), 0x400, 0x1000,
			replacement.AccessLoad)

		Expect(victim.Way).To(Equal(0))
		for way := 0; way < 4; way++ {
			Expect(engine.RRPV(1, way)).To(Equal(uint8(3)))
		}
	})

	It("should never return an out-of-range way", func() {
		for i := 0; i < 1000; i++ {
			set := i % 4
			victim := engine.FindVictim(set, allValid(4), uint64(i)<<2,
				uint64(i)<<6, replacement.AccessLoad)

			Expect(victim.Way).To(SatisfyAll(
				BeNumerically(">=", 0),
				BeNumerically("<", 4)))

			engine.Update(set, victim.Way, uint64(i)<<6, uint64(i)<<2, 0,
				replacement.AccessLoad, false)
		}
	})

	Context("with dead-block prediction", func() {
		BeforeEach(func() {
			engine = replacement.SRRIPBuilder().
				WithNumSets(4).
				WithNumWays(4).
				WithDeadBlockPrediction().
				WithDeadDecayPeriod(9).
				Build("LLC")
		})

		It("should prefer a dead line over a live one at the same RRPV", func() {
			fill := func(way int) {
				engine.Update(0, way, uint64(way)<<6, 0x400, 0,
					replacement.AccessLoad, false)
			}
			hit := func(way int) {
				engine.Update(0, way, uint64(way)<<6, 0x400, 0,
					replacement.AccessLoad, true)
			}

			for way := 0; way < 4; way++ {
				fill(way)
			}

			for way := 0; way < 4; way++ {
				hit(way)
			}

			// Keep way 0 hot across two decay periods; ways 1-3 decay to dead.
			for i := 0; i < 10; i++ {
				hit(0)
			}

			victim := engine.FindVictim(0, allValid(4), 0x400, 0x1000,
				replacement.AccessLoad)

			Expect(victim.Way).To(Equal(1))
		})
	})

	Context("with streaming bypass", func() {
		BeforeEach(func() {
			engine = replacement.SRRIPBuilder().
				WithNumSets(4).
				WithNumWays(4).
				WithStreamBypass().
				Build("LLC")
		})

		It("should report bypass for fills into a streaming set", func() {
			for i := 0; i < 6; i++ {
				engine.Update(0, 0, uint64(i*64), 0x500, 0,
					replacement.AccessLoad, false)
			}
			Expect(engine.Streaming(0)).To(BeTrue())

			victim := engine.FindVictim(0, allValid(4), 0x500, 0x10000,
				replacement.AccessLoad)

			Expect(victim.Bypass).To(BeTrue())
		})

		It("should still hand out invalid ways while streaming", func() {
			for i := 0; i < 6; i++ {
				engine.Update(0, 0, uint64(i*64), 0x500, 0,
					replacement.AccessLoad, false)
			}

			lines := allValid(4)
			lines[3].Valid = false

			victim := engine.FindVictim(0, lines, 0x500, 0x10000,
				replacement.AccessLoad)

			Expect(victim.Way).To(Equal(3))
			Expect(victim.Bypass).To(BeFalse())
		})

		It("should not bypass quiet sets", func() {
			victim := engine.FindVictim(1, allValid(4), 0x500, 0x10000,
				replacement.AccessLoad)

			Expect(victim.Bypass).To(BeFalse())
		})
	})
})

var _ = Describe("Builder", func() {
	It("should reject a non-power-of-two set count", func() {
		Expect(func() {
			replacement.MakeBuilder().WithNumSets(1000).Build("LLC")
		}).To(Panic())
	})

	It("should reject zero ways", func() {
		Expect(func() {
			replacement.MakeBuilder().WithNumWays(0).Build("LLC")
		}).To(Panic())
	})

	It("should reject signature widths outside 5-13 bits", func() {
		Expect(func() {
			replacement.MakeBuilder().WithSignatureBits(16).Build("LLC")
		}).To(Panic())
	})

	It("should reject leader sets that do not fit", func() {
		Expect(func() {
			replacement.DRRIPBuilder().
				WithNumSets(16).
				WithLeaderSets(16).
				Build("LLC")
		}).To(Panic())
	})
})
