package schedule

import (
	"fmt"
	"strings"
)

// ErrorCode tags a scheduling failure with its constraint class.
type ErrorCode string

const (
	ErrCircularDependency  ErrorCode = "CIRCULAR_DEPENDENCY"
	ErrDependencyViolation ErrorCode = "DEPENDENCY_VIOLATION"
	ErrWorkCenterConflict  ErrorCode = "WORK_CENTER_CONFLICT"
	ErrShiftViolation      ErrorCode = "SHIFT_VIOLATION"
	ErrMaintenanceConflict ErrorCode = "MAINTENANCE_CONFLICT"
	ErrDanglingDependency  ErrorCode = "DANGLING_DEPENDENCY"
	ErrSafetyCap           ErrorCode = "SAFETY_CAP"
)

// Error is a structured scheduling failure carrying the constraint class
// and the involved work order ids.
type Error struct {
	Code         ErrorCode `json:"code"`
	Message      string    `json:"message"`
	WorkOrderIDs []string  `json:"workOrderIds,omitempty"`
}

func (e *Error) Error() string {
	if len(e.WorkOrderIDs) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s [%s]", e.Code, e.Message, strings.Join(e.WorkOrderIDs, ", "))
}

// NewError builds a structured scheduling error.
func NewError(code ErrorCode, msg string, woIDs ...string) *Error {
	return &Error{Code: code, Message: msg, WorkOrderIDs: woIDs}
}

// Errorf builds a structured scheduling error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Errors aggregates every violation found in one validation pass so a
// failed reflow reports all of them at once.
type Errors []*Error

func (es Errors) Error() string {
	if len(es) == 0 {
		return "no schedule errors"
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d schedule error(s): %s", len(es), strings.Join(msgs, "; "))
}

// HasCode reports whether any collected error carries the given code.
func (es Errors) HasCode(code ErrorCode) bool {
	for _, e := range es {
		if e.Code == code {
			return true
		}
	}
	return false
}
