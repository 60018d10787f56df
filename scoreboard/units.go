package scoreboard

import "github.com/sarchlab/scoresim/insts"

// FunctionalUnitSlot is one physical functional-unit instance's scoreboard
// record (spec.md §3). A zero-value slot with Busy==false is "reset" except
// for ReservedBy/Qj/Qk, which must be NoInst rather than the zero int — use
// resetSlot to get a properly-reset value.
type FunctionalUnitSlot struct {
	Busy         bool
	Op           insts.Mnemonic
	ReservedBy   InstID
	Fi, Fj, Fk   insts.Reg
	Qj, Qk       InstID
	Rj, Rk       bool
	CyclesNeeded int
	CyclesDone   int
	ExFinished   bool
}

func resetSlot(cyclesNeeded int) FunctionalUnitSlot {
	return FunctionalUnitSlot{
		ReservedBy:   NoInst,
		Fi:           insts.NoReg,
		Fj:           insts.NoReg,
		Fk:           insts.NoReg,
		Qj:           NoInst,
		Qk:           NoInst,
		CyclesNeeded: cyclesNeeded,
	}
}

// FunctionalUnitPool is a fixed-size bank of same-kind functional-unit slots.
type FunctionalUnitPool struct {
	Kind         insts.UnitKind
	CyclesNeeded int
	slots        []FunctionalUnitSlot
}

func newFunctionalUnitPool(kind insts.UnitKind, numUnits, cyclesNeeded int) *FunctionalUnitPool {
	p := &FunctionalUnitPool{Kind: kind, CyclesNeeded: cyclesNeeded, slots: make([]FunctionalUnitSlot, numUnits)}
	for i := range p.slots {
		p.slots[i] = resetSlot(cyclesNeeded)
	}
	return p
}

// FreeSlot returns the lowest-index free slot in the pool, per the
// slot-index-ascending tie-break spec.md §5 prescribes for determinism.
func (p *FunctionalUnitPool) FreeSlot() (index int, ok bool) {
	for i := range p.slots {
		if !p.slots[i].Busy {
			return i, true
		}
	}
	return 0, false
}

// Slot returns a pointer to the slot at index, for direct mutation.
func (p *FunctionalUnitPool) Slot(index int) *FunctionalUnitSlot {
	return &p.slots[index]
}

// Release resets the slot at index to its unoccupied default.
func (p *FunctionalUnitPool) Release(index int) {
	p.slots[index] = resetSlot(p.CyclesNeeded)
}

// Units is the machine's full functional-unit inventory: one pool per
// declared kind. Several admission rules (notably WriteResult's WAR check
// and the post-write forwarding pass) must scan every slot of every kind,
// not just the writer's own pool, which is why Units — not FunctionalUnitPool
// — owns the cross-pool iteration helper.
type Units struct {
	pools map[insts.UnitKind]*FunctionalUnitPool
}

// NewUnits builds an empty unit inventory; callers declare pools with AddPool.
func NewUnits() *Units {
	return &Units{pools: make(map[insts.UnitKind]*FunctionalUnitPool)}
}

// AddPool declares a pool of numUnits slots of kind, each with the given
// per-instruction latency.
func (u *Units) AddPool(kind insts.UnitKind, numUnits, cyclesNeeded int) {
	u.pools[kind] = newFunctionalUnitPool(kind, numUnits, cyclesNeeded)
}

// Pool returns the pool for kind, or nil if undeclared.
func (u *Units) Pool(kind insts.UnitKind) *FunctionalUnitPool {
	return u.pools[kind]
}

// SlotAt returns the slot at (kind, index).
func (u *Units) SlotAt(kind insts.UnitKind, index int) *FunctionalUnitSlot {
	return u.pools[kind].Slot(index)
}

// Release frees the slot occupied by an instruction at (kind, index).
func (u *Units) Release(kind insts.UnitKind, index int) {
	u.pools[kind].Release(index)
}

// ForEachSlot invokes fn for every busy slot across every pool, in
// ascending (kind, index) order — used by post-write forwarding and by
// Snapshot, both of which must consider the whole machine.
func (u *Units) ForEachSlot(fn func(kind insts.UnitKind, index int, slot *FunctionalUnitSlot)) {
	for _, kind := range []insts.UnitKind{insts.Int, insts.Add, insts.Mult, insts.Div} {
		pool := u.pools[kind]
		if pool == nil {
			continue
		}
		for i := range pool.slots {
			if pool.slots[i].Busy {
				fn(kind, i, &pool.slots[i])
			}
		}
	}
}

// SlotSnapshot is a read-only copy of one busy functional-unit slot's
// scoreboard fields, as of the end of a cycle — exposed to the onCycle
// observer hook so tests can assert machine-wide invariants (register-result
// uniqueness, slot-instruction bijection, ready-flag consistency) without
// reaching into driver internals.
type SlotSnapshot struct {
	Kind       insts.UnitKind
	Index      int
	ReservedBy InstID
	Fi, Fj, Fk insts.Reg
	Qj, Qk     InstID
	Rj, Rk     bool
}

// Snapshot returns a read-only copy of every currently busy slot, in
// ascending (kind, index) order.
func (u *Units) Snapshot() []SlotSnapshot {
	var out []SlotSnapshot
	u.ForEachSlot(func(kind insts.UnitKind, index int, slot *FunctionalUnitSlot) {
		out = append(out, SlotSnapshot{
			Kind:       kind,
			Index:      index,
			ReservedBy: slot.ReservedBy,
			Fi:         slot.Fi,
			Fj:         slot.Fj,
			Fk:         slot.Fk,
			Qj:         slot.Qj,
			Qk:         slot.Qk,
			Rj:         slot.Rj,
			Rk:         slot.Rk,
		})
	})
	return out
}
