package scoreboard

import (
	"fmt"
	"strings"
)

// DeadlockError reports that a full driver iteration advanced no instruction
// at any stage while instructions remain unwritten, or that the optional
// max-cycles cap was exceeded.
type DeadlockError struct {
	Cycle   int
	Pending []InstID
}

func (e *DeadlockError) Error() string {
	names := make([]string, len(e.Pending))
	for i, id := range e.Pending {
		names[i] = fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("deadlock at cycle %d: unfinished instructions %s", e.Cycle, strings.Join(names, ", "))
}
