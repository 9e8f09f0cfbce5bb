package pipeline

import (
	"fmt"
	"strings"
)

// ErrorPolicy decides where the cursor goes after a step in which at least
// one operation was rejected.
type ErrorPolicy uint8

const (
	// Continue advances to the next step regardless of rejections.
	Continue ErrorPolicy = iota
	// StartOver jumps back to the first step, keeping the variables.
	StartOver
	// Retry runs the same step again.
	Retry
)

func (p ErrorPolicy) String() string {
	switch p {
	case Continue:
		return "continue"
	case StartOver:
		return "start_over"
	case Retry:
		return "retry"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", uint8(p))
	}
}

// ParseErrorPolicy parses the String form of a policy. Matching ignores case
// and accepts "-" in place of "_".
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "continue":
		return Continue, nil
	case "start_over", "startover":
		return StartOver, nil
	case "retry":
		return Retry, nil
	default:
		return Continue, fmt.Errorf("unknown error policy %q", s)
	}
}

// Step is one stage of a pipeline: operations that run concurrently and a
// policy applied when any of them is rejected.
type Step struct {
	Policy     ErrorPolicy
	Operations []Operation
}

func newStep(policy ErrorPolicy, ops []Operation) Step {
	return Step{
		Policy:     policy,
		Operations: append([]Operation(nil), ops...),
	}
}
