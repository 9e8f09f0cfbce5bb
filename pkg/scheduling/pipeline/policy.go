package pipeline

import (
	sferrors "github.com/vnykmshr/stepflow/pkg/common/errors"
)

type transition uint8

const (
	transitionAdvance transition = iota
	transitionRestart
	transitionRetry
)

func (t transition) String() string {
	switch t {
	case transitionRestart:
		return "restart"
	case transitionRetry:
		return "retry"
	default:
		return "advance"
	}
}

// cursor is the step index of a run together with its restart and retry
// counters. Restarts count over the whole run; retries count per step and
// reset whenever the cursor moves.
type cursor struct {
	index    int
	restarts int
	retries  int

	maxRestarts int
	maxRetries  int
}

// next applies policy to the outcome of the current step. rejection is the
// first rejection reason of the step, or nil when every operation resolved.
// A non-nil error is fatal and leaves the cursor where it was.
func (c *cursor) next(policy ErrorPolicy, rejection error) (transition, error) {
	if rejection == nil {
		c.moveTo(c.index + 1)
		return transitionAdvance, nil
	}

	switch policy {
	case StartOver:
		if c.restarts >= c.maxRestarts {
			return transitionRestart, &sferrors.LimitError{
				Policy: policy.String(),
				Step:   c.index,
				Limit:  c.maxRestarts,
				Cause:  rejection,
			}
		}
		c.restarts++
		c.retries = 0
		c.index = 0
		return transitionRestart, nil

	case Retry:
		if c.retries >= c.maxRetries {
			return transitionRetry, &sferrors.LimitError{
				Policy: policy.String(),
				Step:   c.index,
				Limit:  c.maxRetries,
				Cause:  rejection,
			}
		}
		c.retries++
		return transitionRetry, nil

	default:
		// Continue and unknown policies advance.
		c.moveTo(c.index + 1)
		return transitionAdvance, nil
	}
}

func (c *cursor) moveTo(index int) {
	if index != c.index {
		c.retries = 0
	}
	c.index = index
}
