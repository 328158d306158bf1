package attendance

import "errors"

var (
	ErrInvalidUser        = errors.New("attendance: invalid user")
	ErrInvalidDate        = errors.New("attendance: invalid date")
	ErrInvalidDateRange   = errors.New("attendance: invalid date range")
	ErrInvalidMonth       = errors.New("attendance: invalid month")
	ErrAlreadyPunchedIn   = errors.New("attendance: already punched in today")
	ErrAlreadyPunchedOut  = errors.New("attendance: already punched out today")
	ErrNoPunchInFound     = errors.New("attendance: no punch in found for today")
	ErrPunchInMissing     = errors.New("attendance: record is missing punch in")
	ErrRecordNotFound     = errors.New("attendance: record not found")
	ErrPersistenceFailure = errors.New("attendance: persistence failure")
)
