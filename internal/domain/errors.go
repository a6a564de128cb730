package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrHoldNotFound     = errors.New("hold not found")
	ErrHoldExpired      = errors.New("hold has expired")
	ErrHoldOwnership    = errors.New("hold does not belong to the current session")
	ErrActiveHoldExists = errors.New("an active hold already exists for this session")
)

// SeatConflictError reports exactly which seats could not be acquired, so
// clients can re-select instead of retrying blindly.
type SeatConflictError struct {
	SeatIDs []int
}

func (e *SeatConflictError) Error() string {
	ids := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}

	return fmt.Sprintf("seat(s) not available: %s", strings.Join(ids, ", "))
}
