package csvparse

import (
	"errors"
	"fmt"
)

// Sentinel errors for the csvparse package.
// Use errors.Is to check: errors.Is(err, csvparse.ErrMalformedInput)
var (
	ErrMalformedInput   = errors.New("csvparse: input needs a header row and at least one data row")
	ErrEmptyQuestion    = errors.New("csvparse: question text is empty")
	ErrTooFewOptions    = errors.New("csvparse: at least 2 options are required")
	ErrAnswerOutOfRange = errors.New("csvparse: correct answer is out of range")
	ErrInvalidAnswer    = errors.New("csvparse: correct answer is not a number")
)

// RowError reports a validation failure on a specific data row. Row is
// 1-based, counting data rows in input order (the header is not a row).
// A single RowError aborts the whole batch; no quizzes are produced.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
