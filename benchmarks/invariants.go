// Package benchmarks runs the seed scenarios from spec.md §8 against
// scoreboard.CycleDriver, plus the full per-cycle invariant battery spec.md
// §8 names, attached via the driver's observer hook.
package benchmarks

import (
	"fmt"

	"github.com/sarchlab/scoresim/insts"
	"github.com/sarchlab/scoresim/scoreboard"
)

// checkInvariants verifies every quantified invariant spec.md §8 requires to
// hold after every cycle, returning the first violation found (nil if
// none). It is invoked from the onCycle hook rather than reimplemented
// ad hoc per test.
func checkInvariants(snap scoreboard.Snapshot) error {
	if err := checkStageMonotonicity(snap); err != nil {
		return err
	}
	if err := checkInOrderIssue(snap); err != nil {
		return err
	}
	if err := checkRegisterResultUniqueness(snap); err != nil {
		return err
	}
	if err := checkSlotInstructionBijection(snap); err != nil {
		return err
	}
	if err := checkReadyFlagConsistency(snap); err != nil {
		return err
	}
	if err := checkNoWAWInFlight(snap); err != nil {
		return err
	}
	if err := checkNoWARViolation(snap); err != nil {
		return err
	}
	return nil
}

// checkStageMonotonicity verifies read > issue, ex > read and write > ex for
// every stage an instruction has reached. The snapshot carries no
// per-instruction latency, so the bound of write against the last execute
// cycle is not checked.
func checkStageMonotonicity(snap scoreboard.Snapshot) error {
	for _, st := range snap.Statuses {
		if st.IssueCycle == 0 {
			continue
		}
		if st.ReadCycle != 0 && st.ReadCycle <= st.IssueCycle {
			return fmt.Errorf("cycle %d: inst %d read_cycle %d <= issue_cycle %d", snap.Cycle, st.Inst.ID, st.ReadCycle, st.IssueCycle)
		}
		if st.ExCycle != 0 && st.ReadCycle != 0 && st.ExCycle <= st.ReadCycle {
			return fmt.Errorf("cycle %d: inst %d ex_cycle %d <= read_cycle %d", snap.Cycle, st.Inst.ID, st.ExCycle, st.ReadCycle)
		}
		if st.WriteCycle != 0 && st.ExCycle != 0 && st.WriteCycle <= st.ExCycle {
			return fmt.Errorf("cycle %d: inst %d write_cycle %d <= ex_cycle %d", snap.Cycle, st.Inst.ID, st.WriteCycle, st.ExCycle)
		}
	}
	return nil
}

func checkInOrderIssue(snap scoreboard.Snapshot) error {
	prev := 0
	for _, st := range snap.Statuses {
		if st.IssueCycle == 0 {
			continue
		}
		if st.IssueCycle <= prev {
			return fmt.Errorf("cycle %d: inst %d issued at %d, not after predecessor's %d", snap.Cycle, st.Inst.ID, st.IssueCycle, prev)
		}
		prev = st.IssueCycle
	}
	return nil
}

// checkRegisterResultUniqueness verifies at most one busy slot claims any
// given destination register at a time.
func checkRegisterResultUniqueness(snap scoreboard.Snapshot) error {
	claimedBy := make(map[insts.Reg]scoreboard.InstID, len(snap.Slots))
	for _, slot := range snap.Slots {
		if slot.Fi.IsNone() {
			continue
		}
		if prev, ok := claimedBy[slot.Fi]; ok {
			return fmt.Errorf("cycle %d: register %s claimed by both inst %d and inst %d", snap.Cycle, slot.Fi, prev, slot.ReservedBy)
		}
		claimedBy[slot.Fi] = slot.ReservedBy
	}
	return nil
}

type slotKey struct {
	kind  insts.UnitKind
	index int
}

// checkSlotInstructionBijection verifies every busy slot corresponds to
// exactly one in-flight instruction status, and vice versa.
func checkSlotInstructionBijection(snap scoreboard.Snapshot) error {
	bySlot := make(map[slotKey]scoreboard.InstID, len(snap.Slots))
	for _, slot := range snap.Slots {
		bySlot[slotKey{slot.Kind, slot.Index}] = slot.ReservedBy
	}

	seen := make(map[slotKey]bool, len(snap.Slots))
	for _, st := range snap.Statuses {
		if st.State == scoreboard.AwaitingIssue || st.State == scoreboard.Written {
			continue
		}
		key := slotKey{st.SlotKind, st.SlotIndex}
		reservedBy, ok := bySlot[key]
		if !ok {
			return fmt.Errorf("cycle %d: inst %d occupies slot %s/%d but it isn't busy", snap.Cycle, st.Inst.ID, st.SlotKind, st.SlotIndex)
		}
		if reservedBy != st.Inst.ID {
			return fmt.Errorf("cycle %d: slot %s/%d reserved by inst %d, but inst %d claims it", snap.Cycle, st.SlotKind, st.SlotIndex, reservedBy, st.Inst.ID)
		}
		seen[key] = true
	}
	if len(seen) != len(snap.Slots) {
		return fmt.Errorf("cycle %d: %d busy slots but only %d claimed by an in-flight instruction", snap.Cycle, len(snap.Slots), len(seen))
	}
	return nil
}

// checkReadyFlagConsistency verifies qj == none implies rj == true, and
// likewise for qk/rk, on every busy slot.
func checkReadyFlagConsistency(snap scoreboard.Snapshot) error {
	for _, slot := range snap.Slots {
		if slot.Qj == scoreboard.NoInst && !slot.Rj {
			return fmt.Errorf("cycle %d: slot %s/%d has qj=none but rj=false", snap.Cycle, slot.Kind, slot.Index)
		}
		if slot.Qk == scoreboard.NoInst && !slot.Rk {
			return fmt.Errorf("cycle %d: slot %s/%d has qk=none but rk=false", snap.Cycle, slot.Kind, slot.Index)
		}
	}
	return nil
}

// checkNoWAWInFlight verifies no two not-yet-written instructions claim the
// same destination register at once.
func checkNoWAWInFlight(snap scoreboard.Snapshot) error {
	claimedBy := make(map[insts.Reg]int, len(snap.Statuses))
	for _, st := range snap.Statuses {
		if st.State == scoreboard.AwaitingIssue || st.State == scoreboard.Written || st.Inst.Dest.IsNone() {
			continue
		}
		if prev, ok := claimedBy[st.Inst.Dest]; ok {
			return fmt.Errorf("cycle %d: register %s claimed in-flight by both inst %d and inst %d", snap.Cycle, st.Inst.Dest, prev, st.Inst.ID)
		}
		claimedBy[st.Inst.Dest] = st.Inst.ID
	}
	return nil
}

// checkNoWARViolation verifies no instruction wrote its destination
// register before an earlier (lower-ID) instruction that reads it had
// actually performed Read Operands. A later instruction can never be an
// earlier one's own operand producer, so no producer exception is needed
// here (contrast WriteStage.hasPendingReader, which runs before the write
// happens and so does need one).
func checkNoWARViolation(snap scoreboard.Snapshot) error {
	for _, writer := range snap.Statuses {
		if writer.WriteCycle == 0 || writer.Inst.Dest.IsNone() {
			continue
		}
		for _, reader := range snap.Statuses {
			if reader.Inst.ID >= writer.Inst.ID || reader.ReadCycle == 0 {
				continue
			}
			if !reader.Inst.Src1.Equal(writer.Inst.Dest) && !reader.Inst.Src2.Equal(writer.Inst.Dest) {
				continue
			}
			if writer.WriteCycle < reader.ReadCycle {
				return fmt.Errorf("cycle %d: inst %d wrote register %s at cycle %d, before inst %d read it at cycle %d", snap.Cycle, writer.Inst.ID, writer.Inst.Dest, writer.WriteCycle, reader.Inst.ID, reader.ReadCycle)
			}
		}
	}
	return nil
}
