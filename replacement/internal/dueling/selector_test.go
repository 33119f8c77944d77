package dueling

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Selector", func() {
	var selector *Selector

	BeforeEach(func() {
		selector = NewSelector(64, 4)
	})

	It("should assign leader roles to the first sets", func() {
		for set := 0; set < 4; set++ {
			Expect(selector.Role(set)).To(Equal(LeaderA))
		}

		for set := 4; set < 8; set++ {
			Expect(selector.Role(set)).To(Equal(LeaderB))
		}

		for set := 8; set < 64; set++ {
			Expect(selector.Role(set)).To(Equal(Follower))
		}
	})

	It("should start at the midpoint", func() {
		Expect(selector.PSEL()).To(Equal(uint16(512)))
	})

	It("should move toward the maximum on policy-A leader hits", func() {
		before := selector.PSEL()
		selector.OnHit(0)

		Expect(selector.PSEL()).To(Equal(before + 1))
	})

	It("should move toward zero on policy-B leader hits", func() {
		before := selector.PSEL()
		selector.OnHit(4)

		Expect(selector.PSEL()).To(Equal(before - 1))
	})

	It("should ignore follower hits", func() {
		before := selector.PSEL()
		selector.OnHit(20)

		Expect(selector.PSEL()).To(Equal(before))
	})

	It("should never leave the counter range", func() {
		for i := 0; i < 2000; i++ {
			selector.OnHit(0)
		}
		Expect(selector.PSEL()).To(Equal(uint16(1023)))

		for i := 0; i < 3000; i++ {
			selector.OnHit(4)
		}
		Expect(selector.PSEL()).To(Equal(uint16(0)))
	})

	It("should pin leaders to their own policy regardless of the counter", func() {
		for i := 0; i < 2000; i++ {
			selector.OnHit(4)
		}

		Expect(selector.PreferA(0)).To(BeTrue())
		Expect(selector.PreferA(4)).To(BeFalse())
		Expect(selector.PreferA(20)).To(BeFalse())
	})

	It("should let followers read the counter", func() {
		Expect(selector.PreferA(20)).To(BeTrue())

		selector.OnHit(4)

		Expect(selector.PreferA(20)).To(BeFalse())
	})

	It("should keep roles across a reset", func() {
		for i := 0; i < 100; i++ {
			selector.OnHit(0)
		}

		selector.Reset()

		Expect(selector.PSEL()).To(Equal(uint16(512)))
		Expect(selector.Role(0)).To(Equal(LeaderA))
		Expect(selector.Role(4)).To(Equal(LeaderB))
	})
})
