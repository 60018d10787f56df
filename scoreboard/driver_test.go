package scoreboard_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/scoresim/config"
	"github.com/sarchlab/scoresim/insts"
	"github.com/sarchlab/scoresim/scoreboard"
)

func f(i int) insts.Reg { return insts.Reg{Namespace: insts.RegNamespaceFloat, Index: uint8(i)} }

var _ = Describe("CycleDriver", func() {
	It("runs two independent instructions through to completion", func() {
		cfg := config.New()
		cfg.AddUnit(insts.Add, 1, 2)

		program := &scoreboard.Program{Instructions: []*insts.Instruction{
			{ID: 0, Mnemonic: insts.FADD, UnitKind: insts.Add, Dest: f(0), Src1: f(1), Src2: f(2)},
			{ID: 1, Mnemonic: insts.FADD, UnitKind: insts.Add, Dest: f(3), Src1: f(4), Src2: f(5)},
		}}

		driver := scoreboard.NewCycleDriver(program, cfg)
		sched, err := driver.Run(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(sched.Rows).To(HaveLen(2))
		for _, row := range sched.Rows {
			Expect(row.WriteCycle).To(BeNumerically(">", 0))
		}
	})

	It("stalls the second instruction at Issue on a structural hazard", func() {
		cfg := config.New()
		cfg.AddUnit(insts.Add, 1, 1)

		program := &scoreboard.Program{Instructions: []*insts.Instruction{
			{ID: 0, Mnemonic: insts.FADD, UnitKind: insts.Add, Dest: f(0), Src1: f(1), Src2: f(2)},
			{ID: 1, Mnemonic: insts.FADD, UnitKind: insts.Add, Dest: f(3), Src1: f(4), Src2: f(5)},
		}}

		driver := scoreboard.NewCycleDriver(program, cfg)
		sched, err := driver.Run(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())

		// With a single Add unit, the second fadd cannot issue until the
		// first has written and released its slot.
		Expect(sched.Rows[0].IssueCycle).To(Equal(1))
		Expect(sched.Rows[1].IssueCycle).To(BeNumerically(">", sched.Rows[0].WriteCycle))
	})

	It("stalls a WAW hazard at Issue until the earlier writer's Write clears the claim", func() {
		cfg := config.New()
		cfg.AddUnit(insts.Mult, 1, 4)
		cfg.AddUnit(insts.Add, 1, 2)

		program := &scoreboard.Program{Instructions: []*insts.Instruction{
			{ID: 0, Mnemonic: insts.FMUL, UnitKind: insts.Mult, Dest: f(1), Src1: f(2), Src2: f(3)},
			{ID: 1, Mnemonic: insts.FADD, UnitKind: insts.Add, Dest: f(1), Src1: f(4), Src2: f(5)},
		}}

		driver := scoreboard.NewCycleDriver(program, cfg)
		sched, err := driver.Run(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(sched.Rows[1].IssueCycle).To(BeNumerically(">=", sched.Rows[0].WriteCycle))
	})

	It("preserves a WAR hazard by delaying Write until the earlier reader has read", func() {
		cfg := config.New()
		cfg.AddUnit(insts.Mult, 1, 4)
		cfg.AddUnit(insts.Div, 1, 1)
		cfg.AddUnit(insts.Add, 1, 1)

		// inst0 is a slow producer of f1. inst1 (Div) needs both f1 (from
		// inst0) and f2, so it cannot Read until inst0 writes — holding f2
		// as an unread source operand the whole time. inst2 (Add) is an
		// independent, fast writer of f2: it must stall at Write until
		// inst1 has actually read f2, even though inst2 finishes Execute
		// long before that.
		program := &scoreboard.Program{Instructions: []*insts.Instruction{
			{ID: 0, Mnemonic: insts.FMUL, UnitKind: insts.Mult, Dest: f(1), Src1: f(5), Src2: f(6)},
			{ID: 1, Mnemonic: insts.FDIV, UnitKind: insts.Div, Dest: f(0), Src1: f(1), Src2: f(2)},
			{ID: 2, Mnemonic: insts.FADD, UnitKind: insts.Add, Dest: f(2), Src1: f(8), Src2: f(9)},
		}}

		driver := scoreboard.NewCycleDriver(program, cfg)
		sched, err := driver.Run(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())

		// Write Result effects are deferred to the cycle boundary, so the
		// writer can be admitted in the very same cycle the blocking reader
		// reads (the reader is visited earlier in program order that cycle)
		// — but never before.
		Expect(sched.Rows[2].WriteCycle).To(BeNumerically(">=", sched.Rows[1].ReadCycle))
		Expect(sched.Rows[2].ExCycle).To(BeNumerically("<", sched.Rows[1].ReadCycle))
	})

	It("satisfies stage monotonicity and in-order issue on the six-instruction benchmark", func() {
		cfg := config.New()
		cfg.AddUnit(insts.Int, 1, 1)
		cfg.AddUnit(insts.Mult, 2, 4)
		cfg.AddUnit(insts.Add, 1, 2)
		cfg.AddUnit(insts.Div, 1, 10)

		x2 := insts.Reg{Namespace: insts.RegNamespaceInt, Index: 2}
		x3 := insts.Reg{Namespace: insts.RegNamespaceInt, Index: 3}

		program := &scoreboard.Program{Instructions: []*insts.Instruction{
			{ID: 0, Mnemonic: insts.FLD, UnitKind: insts.Int, Dest: f(6), Src1: x2},
			{ID: 1, Mnemonic: insts.FLD, UnitKind: insts.Int, Dest: f(2), Src1: x3},
			{ID: 2, Mnemonic: insts.FMUL, UnitKind: insts.Mult, Dest: f(0), Src1: f(2), Src2: f(4)},
			{ID: 3, Mnemonic: insts.FSUB, UnitKind: insts.Add, Dest: f(8), Src1: f(6), Src2: f(2)},
			{ID: 4, Mnemonic: insts.FDIV, UnitKind: insts.Div, Dest: f(10), Src1: f(0), Src2: f(6)},
			{ID: 5, Mnemonic: insts.FADD, UnitKind: insts.Add, Dest: f(6), Src1: f(8), Src2: f(2)},
		}}

		driver := scoreboard.NewCycleDriver(program, cfg)
		sched, err := driver.Run(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(sched.Rows).To(HaveLen(6))

		for i, row := range sched.Rows {
			Expect(row.IssueCycle).To(BeNumerically("<=", row.ReadCycle), "inst %d", i)
			Expect(row.ReadCycle).To(BeNumerically("<", row.ExCycle), "inst %d", i)
			Expect(row.ExCycle).To(BeNumerically("<", row.WriteCycle), "inst %d", i)
			if i > 0 {
				Expect(sched.Rows[i-1].IssueCycle).To(BeNumerically("<", row.IssueCycle), "inst %d vs %d", i-1, i)
			}
		}
	})

	It("returns a DeadlockError when max cycles is exceeded", func() {
		cfg := config.New()
		cfg.AddUnit(insts.Add, 1, 1)

		program := &scoreboard.Program{Instructions: []*insts.Instruction{
			{ID: 0, Mnemonic: insts.FADD, UnitKind: insts.Add, Dest: f(0), Src1: f(1), Src2: f(2)},
		}}

		driver := scoreboard.NewCycleDriver(program, cfg, scoreboard.WithMaxCycles(1))
		_, err := driver.Run(context.Background(), nil)
		Expect(err).To(HaveOccurred())
		var deadlock *scoreboard.DeadlockError
		Expect(err).To(BeAssignableToTypeOf(deadlock))
	})

	It("invokes the onCycle observer once per advanced cycle", func() {
		cfg := config.New()
		cfg.AddUnit(insts.Add, 1, 1)

		program := &scoreboard.Program{Instructions: []*insts.Instruction{
			{ID: 0, Mnemonic: insts.FADD, UnitKind: insts.Add, Dest: f(0), Src1: f(1), Src2: f(2)},
		}}

		driver := scoreboard.NewCycleDriver(program, cfg)
		var seen []int
		_, err := driver.Run(context.Background(), func(s scoreboard.Snapshot) {
			seen = append(seen, s.Cycle)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal([]int{1, 2, 3, 4}))
	})
})
