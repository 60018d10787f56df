package scoreboard

import "github.com/sarchlab/scoresim/insts"

// cycleUnset marks a not-yet-reached stage's cycle field. Cycle numbers are
// 1-based (spec.md §6.3), so 0 is never a legal cycle and is free to use as
// the "empty" sentinel.
const cycleUnset = 0

// InstructionStatus is the per-instruction row of the instruction status
// table: which stage the instruction has reached, and the cycle it entered
// each stage it has reached so far.
type InstructionStatus struct {
	Inst  *insts.Instruction
	State StageState

	IssueCycle int
	ReadCycle  int
	ExCycle    int
	WriteCycle int

	// ProcessedThisCycle enforces the one-stage-per-instruction-per-cycle
	// discipline (spec.md §4.2); CycleDriver clears it at the start of every
	// cycle.
	ProcessedThisCycle bool

	// SlotKind/SlotIndex identify the functional-unit slot this instruction
	// occupies while Issued/ReadOperands/Executed. Both are meaningless
	// before Issue and after Write, once the slot has been released.
	SlotKind  insts.UnitKind
	SlotIndex int
}

func newInstructionStatus(inst *insts.Instruction) *InstructionStatus {
	return &InstructionStatus{Inst: inst, State: AwaitingIssue}
}

// Done reports whether the instruction has completed Write Result.
func (s *InstructionStatus) Done() bool {
	return s.State == Written
}
