package rrip

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Meta", func() {
	var meta *Meta

	BeforeEach(func() {
		meta = NewMeta(4, 4, 3)
	})

	It("should start with every line distant", func() {
		for set := 0; set < 4; set++ {
			for way := 0; way < 4; way++ {
				Expect(meta.RRPV(set, way)).To(Equal(uint8(3)))
			}
		}
	})

	It("should promote a line to RRPV 0", func() {
		meta.Promote(1, 2)

		Expect(meta.RRPV(1, 2)).To(Equal(uint8(0)))
	})

	It("should clamp RRPV writes to the saturation value", func() {
		meta.SetRRPV(0, 0, 7)

		Expect(meta.RRPV(0, 0)).To(Equal(uint8(3)))
	})

	It("should age only unsaturated lines", func() {
		meta.SetRRPV(0, 0, 1)
		meta.SetRRPV(0, 1, 3)

		meta.Age(0)

		Expect(meta.RRPV(0, 0)).To(Equal(uint8(2)))
		Expect(meta.RRPV(0, 1)).To(Equal(uint8(3)))
	})

	It("should not age other sets", func() {
		meta.SetRRPV(1, 0, 1)

		meta.Age(0)

		Expect(meta.RRPV(1, 0)).To(Equal(uint8(1)))
	})

	It("should find the lowest distant way", func() {
		meta.SetRRPV(2, 0, 2)

		way, ok := meta.DistantWay(2)

		Expect(ok).To(BeTrue())
		Expect(way).To(Equal(1))
	})

	It("should report no distant way when none saturated", func() {
		for way := 0; way < 4; way++ {
			meta.SetRRPV(0, way, 1)
		}

		_, ok := meta.DistantWay(0)

		Expect(ok).To(BeFalse())
	})

	It("should saturate every line within RRPVMax aging passes", func() {
		for way := 0; way < 4; way++ {
			meta.SetRRPV(0, way, 0)
		}

		for pass := 0; pass < 3; pass++ {
			meta.Age(0)
		}

		way, ok := meta.DistantWay(0)
		Expect(ok).To(BeTrue())
		Expect(way).To(Equal(0))
	})

	It("should track fill and reuse state per line", func() {
		Expect(meta.Filled(0, 0)).To(BeFalse())

		meta.RecordFill(0, 0)
		Expect(meta.Filled(0, 0)).To(BeTrue())
		Expect(meta.Reused(0, 0)).To(BeFalse())

		meta.RecordReuse(0, 0)
		Expect(meta.Reused(0, 0)).To(BeTrue())

		meta.RecordFill(0, 0)
		Expect(meta.Reused(0, 0)).To(BeFalse())
	})

	It("should store signatures per line", func() {
		meta.SetSignature(3, 1, 0x2a)

		Expect(meta.Signature(3, 1)).To(Equal(uint16(0x2a)))
		Expect(meta.Signature(3, 2)).To(Equal(uint16(0)))
	})

	It("should restore the distant state on reset", func() {
		meta.Promote(0, 0)
		meta.RecordFill(0, 0)

		meta.Reset()

		Expect(meta.RRPV(0, 0)).To(Equal(uint8(3)))
		Expect(meta.Filled(0, 0)).To(BeFalse())
	})
})
