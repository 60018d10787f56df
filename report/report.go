// Package report renders a scoreboard.Schedule as the fixed-width table
// spec.md §6.3 specifies. It is CLI-facing presentation, not core simulation
// logic (SPEC_FULL.md §4.8).
package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/sarchlab/scoresim/scoreboard"
)

// Header names the columns Table and Print produce, in order.
var Header = []string{"instruction", "issue", "read", "ex", "write"}

// Table renders sched as rows of strings, header included, cycle numbers
// rendered 1-based and unset cycles rendered as an empty cell.
func Table(sched *scoreboard.Schedule) [][]string {
	rows := make([][]string, 0, len(sched.Rows)+1)
	rows = append(rows, Header)

	for _, row := range sched.Rows {
		rows = append(rows, []string{
			row.Inst.String(),
			cycleCell(row.IssueCycle),
			cycleCell(row.ReadCycle),
			cycleCell(row.ExCycle),
			cycleCell(row.WriteCycle),
		})
	}
	return rows
}

func cycleCell(cycle int) string {
	if cycle == 0 {
		return ""
	}
	return strconv.Itoa(cycle)
}

// Print writes sched to w as a tab-aligned table (spec.md §6.3).
func Print(w io.Writer, sched *scoreboard.Schedule) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range Table(sched) {
		fmt.Fprintln(tw, row[0]+"\t"+row[1]+"\t"+row[2]+"\t"+row[3]+"\t"+row[4])
	}
	tw.Flush()
}

// PrintSnapshot writes the in-progress per-cycle state snapshot in the same
// column shape, for the -p/--print-all observer hook (SPEC_FULL.md §4.9).
func PrintSnapshot(w io.Writer, snap scoreboard.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "cycle %d\n", snap.Cycle)
	fmt.Fprintln(tw, Header[0]+"\t"+Header[1]+"\t"+Header[2]+"\t"+Header[3]+"\t"+Header[4])
	for _, st := range snap.Statuses {
		fmt.Fprintln(tw, st.Inst.String()+"\t"+
			cycleCell(st.IssueCycle)+"\t"+
			cycleCell(st.ReadCycle)+"\t"+
			cycleCell(st.ExCycle)+"\t"+
			cycleCell(st.WriteCycle))
	}
	tw.Flush()
}
