package deadblock

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Predictor", func() {
	var predictor *Predictor

	BeforeEach(func() {
		predictor = NewPredictor(4, 4, 8)
	})

	It("should start with no line predicted dead", func() {
		Expect(predictor.DeadCount()).To(Equal(0))
	})

	It("should keep a hit block alive through one decay", func() {
		predictor.OnHit(0, 0)

		for i := 0; i < 8; i++ {
			predictor.Tick()
		}

		Expect(predictor.Dead(0, 0)).To(BeFalse())
	})

	It("should predict a never-hit fill dead after one decay", func() {
		predictor.OnFill(1, 2)

		for i := 0; i < 8; i++ {
			predictor.Tick()
		}

		Expect(predictor.Dead(1, 2)).To(BeTrue())
	})

	It("should need two decays to kill a live block", func() {
		predictor.OnHit(0, 0)

		for i := 0; i < 16; i++ {
			predictor.Tick()
		}

		Expect(predictor.Dead(0, 0)).To(BeTrue())
	})

	It("should revive a dead slot on fill", func() {
		predictor.OnFill(0, 0)
		for i := 0; i < 8; i++ {
			predictor.Tick()
		}
		Expect(predictor.Dead(0, 0)).To(BeTrue())

		predictor.OnFill(0, 0)

		Expect(predictor.Dead(0, 0)).To(BeFalse())
	})

	It("should count dead lines", func() {
		predictor.OnFill(0, 0)
		predictor.OnFill(0, 1)
		predictor.OnHit(0, 1)

		for i := 0; i < 8; i++ {
			predictor.Tick()
		}

		Expect(predictor.DeadCount()).To(Equal(1))
		Expect(predictor.Dead(0, 0)).To(BeTrue())
		Expect(predictor.Dead(0, 1)).To(BeFalse())
	})

	It("should not decay when the period is zero", func() {
		predictor = NewPredictor(4, 4, 0)
		predictor.OnFill(0, 0)

		for i := 0; i < 100; i++ {
			predictor.Tick()
		}

		Expect(predictor.Dead(0, 0)).To(BeFalse())
	})

	It("should restore the fresh state on reset", func() {
		predictor.OnFill(0, 0)
		for i := 0; i < 8; i++ {
			predictor.Tick()
		}

		predictor.Reset()

		Expect(predictor.DeadCount()).To(Equal(0))
	})
})
