package scoreboard

import (
	"context"

	"github.com/sarchlab/scoresim/config"
	"github.com/sarchlab/scoresim/insts"
)

// pendingWrite is the deferred cycle-boundary effect of a Write Result
// admission: slot release, register-result clear, and operand forwarding
// all happen together once, after every stage has had its chance to act
// on the pre-write state (spec.md §4.3).
type pendingWrite struct {
	id    InstID
	kind  insts.UnitKind
	index int
	dest  insts.Reg
}

// CycleDriver advances a Program's instruction status table one cycle at a
// time, visiting every instruction once in program order and trying
// Issue/ReadOperands/Execute/WriteResult against it in that order (spec.md
// §4.3); the stage state guards together with the ProcessedThisCycle flag
// mean at most one admits per instruction per cycle.
type CycleDriver struct {
	program *Program
	units   *Units
	regs    *RegisterResultStatus

	issue   *IssueStage
	read    *ReadStage
	execute *ExecuteStage
	write   *WriteStage

	statuses []*InstructionStatus

	maxCycles int
}

// DriverOption configures a CycleDriver at construction time.
type DriverOption func(*CycleDriver)

// WithMaxCycles caps the number of cycles Run will advance before giving up
// with a DeadlockError, guarding against a configuration that can never
// complete. Zero (the default) means unbounded.
func WithMaxCycles(n int) DriverOption {
	return func(d *CycleDriver) {
		d.maxCycles = n
	}
}

// NewCycleDriver builds a driver for program against cfg. cfg must declare a
// pool for every unit kind program.RequiredKinds reports; callers validate
// that with config.MachineConfig.RequireKind before calling this.
func NewCycleDriver(program *Program, cfg *config.MachineConfig, opts ...DriverOption) *CycleDriver {
	units := NewUnits()
	for kind, u := range cfg.Units {
		units.AddPool(kind, u.Units, u.Cycles)
	}
	regs := NewRegisterResultStatus(cfg.NumIntRegs, cfg.NumFloatRegs)

	statuses := make([]*InstructionStatus, len(program.Instructions))
	for i, inst := range program.Instructions {
		statuses[i] = newInstructionStatus(inst)
	}

	d := &CycleDriver{
		program:  program,
		units:    units,
		regs:     regs,
		issue:    &IssueStage{units: units, regs: regs},
		read:     &ReadStage{units: units},
		execute:  &ExecuteStage{units: units},
		write:    &WriteStage{units: units},
		statuses: statuses,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Snapshot is a read-only view of the instruction status table and the
// functional-unit slot table as of the end of a cycle, passed to the
// onCycle observer hook (SPEC_FULL.md §4.9). Slots carries every currently
// busy slot, needed by the slot-based checks of the invariant battery
// (register-result uniqueness, slot-instruction bijection, ready-flag
// consistency — spec.md §8) alongside Statuses.
type Snapshot struct {
	Cycle    int
	Statuses []InstructionStatus
	Slots    []SlotSnapshot
}

// Stats summarizes a completed run.
type Stats struct {
	Cycles       int
	Instructions int
}

// Run advances the driver cycle by cycle until every instruction has
// written its result, invoking onCycle (if non-nil) after each cycle. It
// returns the built Schedule, or a *DeadlockError if no instruction can
// advance in some cycle, or if maxCycles is exceeded.
func (d *CycleDriver) Run(ctx context.Context, onCycle func(Snapshot)) (*Schedule, error) {
	cycle := 0
	for !d.allDone() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		cycle++
		if d.maxCycles > 0 && cycle > d.maxCycles {
			return nil, &DeadlockError{Cycle: cycle, Pending: d.pendingIDs()}
		}

		advanced := d.stepCycle(cycle)
		if !advanced {
			return nil, &DeadlockError{Cycle: cycle, Pending: d.pendingIDs()}
		}

		if onCycle != nil {
			onCycle(d.snapshot(cycle))
		}
	}

	return BuildSchedule(d.statuses), nil
}

// stepCycle visits every instruction once, in program order, trying Issue,
// ReadOperands, Execute, and WriteResult against it in that order (spec.md
// §4.3). The stage state guards together with the ProcessedThisCycle flag
// (cleared here at the start of the cycle) mean at most one of the four ever
// admits for a given instruction in a given cycle, but trying them in this
// order — rather than as four separate whole-program passes — matters: a
// downstream instruction's Write check in this same cycle observes an
// upstream instruction's Read that already happened earlier in this same
// pass. WriteResult's slot-release/register-clear/forwarding effects are
// still deferred to the cycle boundary. Returns whether anything advanced.
func (d *CycleDriver) stepCycle(cycle int) bool {
	for _, st := range d.statuses {
		st.ProcessedThisCycle = false
	}

	advanced := false
	issuedThisCycle := false
	var writes []pendingWrite

	for i, st := range d.statuses {
		if d.issue.Admit(d.statuses, i, cycle, &issuedThisCycle) {
			advanced = true
		}
		if d.read.Admit(st, cycle) {
			advanced = true
		}
		if d.execute.Admit(st, cycle) {
			advanced = true
		}
		if d.write.Admit(d.statuses, st, cycle) {
			advanced = true
			writes = append(writes, pendingWrite{
				id:    st.Inst.ID,
				kind:  st.SlotKind,
				index: st.SlotIndex,
				dest:  st.Inst.Dest,
			})
		}
	}

	for _, w := range writes {
		d.applyWrite(w)
	}

	return advanced
}

// applyWrite performs the effects deferred by a Write Result admission:
// releasing the slot, clearing the register-result claim, and forwarding
// the produced value to any slot still waiting on it (spec.md §4.3).
func (d *CycleDriver) applyWrite(w pendingWrite) {
	d.units.Release(w.kind, w.index)
	if !w.dest.IsNone() {
		d.regs.Clear(w.dest, w.id)
	}

	d.units.ForEachSlot(func(_ insts.UnitKind, _ int, slot *FunctionalUnitSlot) {
		if slot.Qj == w.id {
			slot.Rj = true
			slot.Qj = NoInst
		}
		if slot.Qk == w.id {
			slot.Rk = true
			slot.Qk = NoInst
		}
	})
}

func (d *CycleDriver) allDone() bool {
	for _, st := range d.statuses {
		if !st.Done() {
			return false
		}
	}
	return true
}

func (d *CycleDriver) pendingIDs() []InstID {
	var pending []InstID
	for _, st := range d.statuses {
		if !st.Done() {
			pending = append(pending, st.Inst.ID)
		}
	}
	return pending
}

func (d *CycleDriver) snapshot(cycle int) Snapshot {
	statuses := make([]InstructionStatus, len(d.statuses))
	for i, st := range d.statuses {
		statuses[i] = *st
	}
	return Snapshot{Cycle: cycle, Statuses: statuses, Slots: d.units.Snapshot()}
}
