package consensus

import "fmt"

type ErrorCode string

const (
	WORK_ERR_WINDOW_UNDERFLOW ErrorCode = "WORK_ERR_WINDOW_UNDERFLOW"
	WORK_ERR_ANCESTOR_MISSING ErrorCode = "WORK_ERR_ANCESTOR_MISSING"

	HEADER_ERR_PARSE ErrorCode = "HEADER_ERR_PARSE"
)

// WorkError reports an invariant violation in the difficulty schedule: the
// caller handed the scheduler a chain view that cannot exist on a valid chain.
// It is distinct from a failed proof-of-work check, which is an ordinary
// validation outcome and not an error.
type WorkError struct {
	Code ErrorCode
	Msg  string
}

func (e *WorkError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func workerr(code ErrorCode, msg string) error {
	return &WorkError{Code: code, Msg: msg}
}
