package scoreboard

import "github.com/sarchlab/scoresim/insts"

// RegisterResultStatus records, for every architectural register, the id of
// the in-flight instruction that will produce its value, or NoInst. The
// invariant that at most one in-flight instruction ever claims a given
// register is maintained entirely by callers going through Claim/Clear —
// see the WAW admission rule in stages.go.
type RegisterResultStatus struct {
	intRegs   []InstID
	floatRegs []InstID
}

// NewRegisterResultStatus builds an empty (all-NoInst) result status table
// sized for the given register-file capacities.
func NewRegisterResultStatus(numIntRegs, numFloatRegs int) *RegisterResultStatus {
	r := &RegisterResultStatus{
		intRegs:   make([]InstID, numIntRegs),
		floatRegs: make([]InstID, numFloatRegs),
	}
	for i := range r.intRegs {
		r.intRegs[i] = NoInst
	}
	for i := range r.floatRegs {
		r.floatRegs[i] = NoInst
	}
	return r
}

func (r *RegisterResultStatus) slice(reg insts.Reg) []InstID {
	switch reg.Namespace {
	case insts.RegNamespaceInt:
		return r.intRegs
	case insts.RegNamespaceFloat:
		return r.floatRegs
	default:
		return nil
	}
}

// Get returns the producing instruction id for reg, or NoInst if reg is
// unclaimed (or the none-operand sentinel).
func (r *RegisterResultStatus) Get(reg insts.Reg) InstID {
	s := r.slice(reg)
	if s == nil || int(reg.Index) >= len(s) {
		return NoInst
	}
	return s[reg.Index]
}

// Claim records that id will produce reg's value.
func (r *RegisterResultStatus) Claim(reg insts.Reg, id InstID) {
	if s := r.slice(reg); s != nil && int(reg.Index) < len(s) {
		s[reg.Index] = id
	}
}

// Clear removes reg's claim, but only if it is still held by id — a later
// instruction may have already overwritten the claim by the time a stale
// Write stage's deferred clear runs, and that later claim must survive.
func (r *RegisterResultStatus) Clear(reg insts.Reg, id InstID) {
	if s := r.slice(reg); s != nil && int(reg.Index) < len(s) {
		if s[reg.Index] == id {
			s[reg.Index] = NoInst
		}
	}
}
