package scoreboard_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/scoresim/insts"
	"github.com/sarchlab/scoresim/scoreboard"
)

var _ = Describe("Units", func() {
	var units *scoreboard.Units

	BeforeEach(func() {
		units = scoreboard.NewUnits()
		units.AddPool(insts.Mult, 2, 4)
	})

	Describe("FreeSlot", func() {
		It("finds the lowest-index free slot", func() {
			index, ok := units.Pool(insts.Mult).FreeSlot()
			Expect(ok).To(BeTrue())
			Expect(index).To(Equal(0))
		})

		It("reports no free slot once the pool is full", func() {
			units.Pool(insts.Mult).Slot(0).Busy = true
			units.Pool(insts.Mult).Slot(1).Busy = true
			_, ok := units.Pool(insts.Mult).FreeSlot()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Release", func() {
		It("resets a slot to its unoccupied default", func() {
			slot := units.Pool(insts.Mult).Slot(0)
			slot.Busy = true
			slot.ReservedBy = 5
			units.Release(insts.Mult, 0)
			Expect(units.SlotAt(insts.Mult, 0).Busy).To(BeFalse())
			Expect(units.SlotAt(insts.Mult, 0).ReservedBy).To(Equal(scoreboard.NoInst))
		})
	})

	Describe("ForEachSlot", func() {
		It("visits only busy slots", func() {
			units.AddPool(insts.Add, 1, 2)
			units.Pool(insts.Mult).Slot(1).Busy = true
			units.Pool(insts.Mult).Slot(1).ReservedBy = 2

			var seen []int
			units.ForEachSlot(func(_ insts.UnitKind, index int, slot *scoreboard.FunctionalUnitSlot) {
				seen = append(seen, slot.ReservedBy)
				_ = index
			})

			Expect(seen).To(Equal([]int{2}))
		})
	})
})
