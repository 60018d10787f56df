package scoreboard

import "github.com/sarchlab/scoresim/insts"

// ScheduleRow is one instruction's final row of the instruction status
// table: the cycle it entered each stage, or 0 if it never reached that
// stage (which only happens for a run abandoned mid-way by a deadlock).
type ScheduleRow struct {
	Inst       *insts.Instruction
	IssueCycle int
	ReadCycle  int
	ExCycle    int
	WriteCycle int
}

// Schedule is the complete, ordered instruction status table produced by a
// finished CycleDriver run — the pure result a caller renders, diffs, or
// asserts against, independent of how (or whether) it gets printed.
type Schedule struct {
	Rows []ScheduleRow
}

// BuildSchedule maps a driver's final instruction statuses into a Schedule.
func BuildSchedule(statuses []*InstructionStatus) *Schedule {
	rows := make([]ScheduleRow, len(statuses))
	for i, st := range statuses {
		rows[i] = ScheduleRow{
			Inst:       st.Inst,
			IssueCycle: st.IssueCycle,
			ReadCycle:  st.ReadCycle,
			ExCycle:    st.ExCycle,
			WriteCycle: st.WriteCycle,
		}
	}
	return &Schedule{Rows: rows}
}
