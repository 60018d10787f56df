// Package scoreboard implements the hazard-resolving, per-cycle state
// machine at the heart of the simulator: the three interlocked status
// tables, the four stage admission rules, and the cycle driver that
// advances them.
package scoreboard

import "github.com/sarchlab/scoresim/insts"

// InstID is a dense, 0-based, program-order instruction identifier. It is
// distinct from any display name, per spec.md §9's note that a
// string-with-embedded-occurrence-counter id conflates identity with
// presentation.
type InstID = int

// NoInst is the "no producing instruction" sentinel used by Qj/Qk and by
// RegisterResultStatus entries.
const NoInst InstID = -1

// StageState is the discriminated, monotonically advancing pipeline-stage
// marker for one instruction.
type StageState uint8

// The five stage states, in their only legal order of advancement.
const (
	AwaitingIssue StageState = iota
	Issued
	ReadOperands
	Executed
	Written
)

func (s StageState) String() string {
	switch s {
	case AwaitingIssue:
		return "awaiting_issue"
	case Issued:
		return "issued"
	case ReadOperands:
		return "read"
	case Executed:
		return "executed"
	case Written:
		return "written"
	default:
		return "invalid"
	}
}

// Program is a decoded, ordered instruction stream. Instruction i's ID must
// equal i. CycleDriver keeps its status table by position and matches slot
// reservations and Qj/Qk producers by ID, so IDs must be unique.
type Program struct {
	Instructions []*insts.Instruction
}

// RequiredKinds returns the set of functional-unit kinds this program needs,
// for validating a MachineConfig before simulation starts (spec.md §4.5).
func (p *Program) RequiredKinds() map[insts.UnitKind]bool {
	kinds := make(map[insts.UnitKind]bool)
	for _, inst := range p.Instructions {
		kinds[inst.UnitKind] = true
	}
	return kinds
}
