package movement

import (
	"errors"
	"fmt"
)

var (
	ErrOwnerNotFound  = errors.New("owner not found")
	ErrOwnerInactive  = errors.New("owner account inactive")
	ErrRecordNotFound = errors.New("movement not found")
)

// ValidationError carries every violated field, not just the first one, so
// the client can fix a submission in one round trip.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("submission failed validation on %d field(s)", len(e.Fields))
}

// QuotaError reports the daily ceiling along with the current count.
type QuotaError struct {
	Count int
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("daily submission limit reached (%d/%d)", e.Count, e.Limit)
}
