package contracts

import "errors"

// Construction-time validation errors. These are fatal: bad static input
// corrupts every downstream calculation, so ingestion must reject it loudly.
// Data gaps (missing period, unknown code) are NOT errors anywhere in the core.
var (
	ErrInvalidRecord   = errors.New("invalid financial record")
	ErrInvalidInterval = errors.New("invalid listing interval")
	ErrInvalidAction   = errors.New("invalid corporate action")
)
