package scoreboard_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/scoresim/insts"
	"github.com/sarchlab/scoresim/scoreboard"
)

var _ = Describe("RegisterResultStatus", func() {
	var regs *scoreboard.RegisterResultStatus

	BeforeEach(func() {
		regs = scoreboard.NewRegisterResultStatus(4, 4)
	})

	It("starts with every register unclaimed", func() {
		Expect(regs.Get(insts.Reg{Namespace: insts.RegNamespaceFloat, Index: 0})).To(Equal(scoreboard.NoInst))
	})

	It("records a claim", func() {
		f0 := insts.Reg{Namespace: insts.RegNamespaceFloat, Index: 0}
		regs.Claim(f0, 7)
		Expect(regs.Get(f0)).To(Equal(7))
	})

	It("keeps int and float namespaces independent", func() {
		x0 := insts.Reg{Namespace: insts.RegNamespaceInt, Index: 0}
		f0 := insts.Reg{Namespace: insts.RegNamespaceFloat, Index: 0}
		regs.Claim(x0, 1)
		Expect(regs.Get(f0)).To(Equal(scoreboard.NoInst))
	})

	It("clears a claim still held by the given id", func() {
		f1 := insts.Reg{Namespace: insts.RegNamespaceFloat, Index: 1}
		regs.Claim(f1, 3)
		regs.Clear(f1, 3)
		Expect(regs.Get(f1)).To(Equal(scoreboard.NoInst))
	})

	It("does not clear a claim overwritten by a later instruction", func() {
		f1 := insts.Reg{Namespace: insts.RegNamespaceFloat, Index: 1}
		regs.Claim(f1, 3)
		regs.Claim(f1, 9) // a later instruction re-claims f1
		regs.Clear(f1, 3) // the stale clear from instruction 3 must not win
		Expect(regs.Get(f1)).To(Equal(9))
	})

	It("treats the none register as always unclaimed", func() {
		Expect(regs.Get(insts.NoReg)).To(Equal(scoreboard.NoInst))
	})
})
