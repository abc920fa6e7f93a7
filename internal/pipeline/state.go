package pipeline

import "errors"

var (
	ErrNoImages     = errors.New("chapter has no images")
	ErrImagesFailed = errors.New("chapter has failed images")
)

type State int

const (
	Pending State = iota
	Resolving
	Dispatching
	Retrying
	Complete
	Partial
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolving:
		return "resolving"
	case Dispatching:
		return "dispatching"
	case Retrying:
		return "retrying"
	case Complete:
		return "complete"
	case Partial:
		return "partial"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further attempt follows s.
func (s State) Terminal() bool {
	return s == Complete || s == Partial || s == Failed
}

// Outcome is what one resolve+dispatch attempt produced.
type Outcome struct {
	Err    error
	Images int
	Failed int
}

// Error is the failure that decides the retry, if any. In strict mode failed
// images count as one.
func (o Outcome) Error(strict bool) error {
	if o.Err != nil {
		return o.Err
	}
	if strict && o.Failed > 0 {
		return ErrImagesFailed
	}
	return nil
}

// Next is the state after the attempt with zero-based index attempt.
func Next(attempt, maxAttempts int, o Outcome, strict bool) State {
	if o.Error(strict) == nil {
		if o.Failed > 0 {
			return Partial
		}
		return Complete
	}
	if attempt+1 >= maxAttempts {
		return Failed
	}
	return Retrying
}
