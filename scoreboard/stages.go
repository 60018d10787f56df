package scoreboard

import "github.com/sarchlab/scoresim/insts"

// IssueStage admits an instruction into a free functional-unit slot,
// subject to the in-order, structural, WAW, and one-per-cycle gates
// (spec.md §4.2).
type IssueStage struct {
	units *Units
	regs  *RegisterResultStatus
}

// Admit tries to issue the instruction at statuses[idx]. issuedThisCycle is
// shared across the whole program-order pass for the current cycle and is
// reset by CycleDriver at the start of every cycle.
func (s *IssueStage) Admit(statuses []*InstructionStatus, idx int, cycle int, issuedThisCycle *bool) bool {
	st := statuses[idx]

	if st.State != AwaitingIssue {
		return false
	}
	if *issuedThisCycle {
		return false
	}
	if idx > 0 && statuses[idx-1].State == AwaitingIssue {
		return false // in-order gate: predecessor hasn't issued yet
	}

	inst := st.Inst
	pool := s.units.Pool(inst.UnitKind)
	slotIndex, ok := pool.FreeSlot()
	if !ok {
		return false // structural hazard
	}
	if !inst.Dest.IsNone() && s.regs.Get(inst.Dest) != NoInst {
		return false // WAW hazard
	}

	slot := pool.Slot(slotIndex)
	slot.Busy = true
	slot.Op = inst.Mnemonic
	slot.ReservedBy = inst.ID
	slot.Fi = inst.Dest
	slot.Fj = inst.Src1
	slot.Fk = inst.Src2
	slot.CyclesDone = 0
	slot.ExFinished = false

	slot.Qj, slot.Rj = s.sourceStatus(inst.Src1)
	slot.Qk, slot.Rk = s.sourceStatus(inst.Src2)

	if !inst.Dest.IsNone() {
		s.regs.Claim(inst.Dest, inst.ID)
	}

	st.SlotKind = inst.UnitKind
	st.SlotIndex = slotIndex
	st.IssueCycle = cycle
	st.State = Issued
	st.ProcessedThisCycle = true
	*issuedThisCycle = true

	return true
}

// sourceStatus resolves a source operand's Qx/Rx pair at issue time: an
// absent operand or one with no pending producer is immediately ready.
func (s *IssueStage) sourceStatus(src insts.Reg) (q InstID, r bool) {
	if src.IsNone() {
		return NoInst, true
	}
	producer := s.regs.Get(src)
	return producer, producer == NoInst
}

// ReadStage admits an instruction into Read Operands once both its sources
// are ready and it has not already advanced this cycle.
type ReadStage struct {
	units *Units
}

// Admit tries to move st from Issued to ReadOperands.
func (s *ReadStage) Admit(st *InstructionStatus, cycle int) bool {
	if st.State != Issued || st.ProcessedThisCycle {
		return false
	}

	slot := s.units.SlotAt(st.SlotKind, st.SlotIndex)
	if !(slot.Rj && slot.Rk) {
		return false
	}

	slot.Rj = true
	slot.Rk = true
	slot.Qj = NoInst
	slot.Qk = NoInst

	st.ReadCycle = cycle
	st.State = ReadOperands
	st.ProcessedThisCycle = true

	return true
}

// ExecuteStage advances an instruction's slot through its latency, spanning
// CyclesNeeded contiguous admitted cycles.
type ExecuteStage struct {
	units *Units
}

// Admit tries to advance st by one execute cycle.
func (s *ExecuteStage) Admit(st *InstructionStatus, cycle int) bool {
	if st.State != ReadOperands || st.ProcessedThisCycle {
		return false
	}

	slot := s.units.SlotAt(st.SlotKind, st.SlotIndex)
	if slot.ExFinished {
		return false
	}

	if slot.CyclesDone == 0 {
		st.ExCycle = cycle
	}
	slot.CyclesDone++
	if slot.CyclesDone >= slot.CyclesNeeded {
		slot.ExFinished = true
		st.State = Executed
	}
	st.ProcessedThisCycle = true

	return true
}

// WriteStage admits an instruction into Write Result once no sibling
// instruction still sitting at Issued names the destination register as
// Fj/Fk while waiting on some producer other than this instruction (the WAR
// hazard: an earlier-issued instruction that has not yet reached Read
// Operands, and so will still read dest's old value once it does). Rj/Rk track operand readiness, not whether the operand has been
// read, so the hazard check looks at sibling stage state directly rather
// than slot flags. Admission only marks the instruction written and
// records the cycle; the slot release, register-result clear, and operand
// forwarding it triggers are deferred to the cycle boundary by CycleDriver
// (spec.md §4.2, §4.3).
type WriteStage struct {
	units *Units
}

// Admit tries to move st from Executed to Written. statuses is the whole
// program's instruction status table, needed to find siblings still
// waiting to read st's destination register.
func (s *WriteStage) Admit(statuses []*InstructionStatus, st *InstructionStatus, cycle int) bool {
	if st.State != Executed || st.ProcessedThisCycle {
		return false
	}

	if !st.Inst.Dest.IsNone() && s.hasPendingReader(statuses, st) {
		return false
	}

	st.WriteCycle = cycle
	st.State = Written
	st.ProcessedThisCycle = true

	return true
}

// hasPendingReader reports whether some instruction other than self is
// still sitting at Issued (issued but not yet past Read Operands) with a
// source slot naming self's destination register, tracking some producer
// other than self. A sibling tracking self as producer (Qj/Qk == self.ID)
// is a RAW/forwarding relationship, not a hazard — self writing is exactly
// what lets it proceed. A sibling tracking anyone else (or no one, already
// ready) would have self's write clobber the value it's about to read.
func (s *WriteStage) hasPendingReader(statuses []*InstructionStatus, self *InstructionStatus) bool {
	dest := self.Inst.Dest
	for _, other := range statuses {
		if other == self || other.State != Issued {
			continue
		}
		slot := s.units.SlotAt(other.SlotKind, other.SlotIndex)
		if slot.Fj.Equal(dest) && slot.Qj != self.Inst.ID {
			return true
		}
		if slot.Fk.Equal(dest) && slot.Qk != self.Inst.ID {
			return true
		}
	}
	return false
}
