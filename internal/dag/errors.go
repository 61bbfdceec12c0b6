package dag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPackage is returned when a name is not part of the graph.
var ErrUnknownPackage = errors.New("package not in graph")

// ErrCycleDetected is matched by every CycleError.
var ErrCycleDetected = errors.New("cycle detected")

// CycleError carries the cycles that prevent a stage plan.
type CycleError struct {
	Cycles [][]string
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		parts[i] = strings.Join(c, ", ")
	}
	return fmt.Sprintf("%s: %d circular dependencies: [%s]", ErrCycleDetected, len(e.Cycles), strings.Join(parts, "] ["))
}

// Is makes errors.Is(err, ErrCycleDetected) hold.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}
